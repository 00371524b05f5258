// internal/api/handler.go
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"github-test-metrics/internal/analysis"
	"github-test-metrics/internal/database"
	custom_errors "github-test-metrics/internal/errors"
)

// Handler is the container for API dependencies.
type Handler struct {
	db     database.Querier
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:     db,
		logger: logger,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/summaries", h.listSummaries)
		r.Get("/summaries/{owner}/{name}", h.getSummary)
		r.Get("/correlation", h.getCorrelation)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listSummaries returns the stored dataset in collection order.
// GET /v1/summaries
func (h *Handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListProjectSummaries(r.Context())
	if err != nil {
		h.logger.Error("Failed to list summaries", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, database.ToDataset(rows))
}

// getSummary returns the stored row of one project.
// GET /v1/summaries/{owner}/{name}
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	name := chi.URLParam(r, "name")

	row, err := h.db.GetProjectSummary(r.Context(), database.GetProjectSummaryParams{
		Owner: owner,
		Name:  name,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Project not found")
			return
		}
		h.logger.Error("Failed to get summary", "owner", owner, "repo", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, database.ToSummary(row))
}

type correlationResponse struct {
	Rho float64 `json:"rho"`
	// P is null when it is undefined, which happens for exactly two samples.
	P *float64 `json:"p_value"`
	N int      `json:"n"`
}

// getCorrelation computes the correlation over the stored dataset.
// GET /v1/correlation
func (h *Handler) getCorrelation(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.ListProjectSummaries(r.Context())
	if err != nil {
		h.logger.Error("Failed to list summaries", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	c, err := analysis.Analyze(database.ToDataset(rows))
	var ierr *custom_errors.InsufficientDataError
	switch {
	case errors.As(err, &ierr), errors.Is(err, custom_errors.ErrConstantInput):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		h.logger.Error("Failed to compute correlation", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp := correlationResponse{Rho: c.Rho, N: c.N}
	if !math.IsNaN(c.P) {
		resp.P = &c.P
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
