// internal/api/handler_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-test-metrics/internal/database"
)

// MockQuerier is a mock of the database.Querier interface.
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) UpsertProjectSummary(ctx context.Context, arg database.UpsertProjectSummaryParams) (database.ProjectSummary, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.ProjectSummary), args.Error(1)
}
func (m *MockQuerier) ListProjectSummaries(ctx context.Context) ([]database.ProjectSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]database.ProjectSummary), args.Error(1)
}
func (m *MockQuerier) GetProjectSummary(ctx context.Context, arg database.GetProjectSummaryParams) (database.ProjectSummary, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.ProjectSummary), args.Error(1)
}

func row(owner, name string, ratio, median float64) database.ProjectSummary {
	return database.ProjectSummary{
		Owner:                   owner,
		Name:                    name,
		UnitPresence:            ratio > 0,
		UnitRatio:               pgtype.Float8{Float64: ratio, Valid: true},
		MedianBugResolutionDays: pgtype.Float8{Float64: median, Valid: true},
		BugCount:                3,
	}
}

func serve(t *testing.T, q database.Querier, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	NewRouter(q, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := serve(t, new(MockQuerier), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestListSummaries(t *testing.T) {
	t.Run("returns the stored dataset", func(t *testing.T) {
		mockQ := new(MockQuerier)
		missing := database.ProjectSummary{Owner: "keptn", Name: "keptn"}
		mockQ.On("ListProjectSummaries", mock.Anything).Return([]database.ProjectSummary{row("dapr", "dapr", 0.5, 12), missing}, nil).Once()

		rec, _ := serve(t, mockQ, "/v1/summaries")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "dapr/dapr", got[0]["project"])
		assert.Equal(t, 0.5, got[0]["unit_ratio"])
		assert.Equal(t, 12.0, got[0]["median_bug_resolution_days"])
		assert.Nil(t, got[1]["unit_ratio"])
		assert.Nil(t, got[1]["median_bug_resolution_days"])
		mockQ.AssertExpectations(t)
	})

	t.Run("database failure is a 500", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("ListProjectSummaries", mock.Anything).Return([]database.ProjectSummary(nil), errors.New("down")).Once()

		rec, body := serve(t, mockQ, "/v1/summaries")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", body["error"])
	})
}

func TestGetSummary(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockQ := new(MockQuerier)
		params := database.GetProjectSummaryParams{Owner: "camunda", Name: "zeebe"}
		mockQ.On("GetProjectSummary", mock.Anything, params).Return(row("camunda", "zeebe", 0.25, 4), nil).Once()

		rec, body := serve(t, mockQ, "/v1/summaries/camunda/zeebe")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "camunda/zeebe", body["project"])
		assert.Equal(t, 3.0, body["bug_count"])
		mockQ.AssertExpectations(t)
	})

	t.Run("unknown project is a 404", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("GetProjectSummary", mock.Anything, mock.Anything).Return(database.ProjectSummary{}, pgx.ErrNoRows).Once()

		rec, body := serve(t, mockQ, "/v1/summaries/nobody/nothing")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Project not found", body["error"])
	})
}

func TestGetCorrelation(t *testing.T) {
	t.Run("computes rho over complete records", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("ListProjectSummaries", mock.Anything).Return([]database.ProjectSummary{
			row("a", "one", 0.1, 30),
			row("a", "two", 0.2, 20),
			row("a", "three", 0.3, 10),
			{Owner: "a", Name: "incomplete"},
		}, nil).Once()

		rec, body := serve(t, mockQ, "/v1/correlation")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, -1.0, body["rho"])
		assert.Equal(t, 0.0, body["p_value"])
		assert.Equal(t, 3.0, body["n"])
	})

	t.Run("two samples have a null p-value", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("ListProjectSummaries", mock.Anything).Return([]database.ProjectSummary{
			row("a", "one", 0.1, 30),
			row("a", "two", 0.2, 20),
		}, nil).Once()

		rec, body := serve(t, mockQ, "/v1/correlation")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, body, "p_value")
		assert.Nil(t, body["p_value"])
	})

	t.Run("insufficient data is a 422", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("ListProjectSummaries", mock.Anything).Return([]database.ProjectSummary{row("a", "one", 0.1, 30)}, nil).Once()

		rec, body := serve(t, mockQ, "/v1/correlation")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, body["error"], "insufficient data")
	})

	t.Run("constant input is a 422", func(t *testing.T) {
		mockQ := new(MockQuerier)
		mockQ.On("ListProjectSummaries", mock.Anything).Return([]database.ProjectSummary{
			row("a", "one", 0.5, 30),
			row("a", "two", 0.5, 20),
		}, nil).Once()

		rec, _ := serve(t, mockQ, "/v1/correlation")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
