// Package resolution computes how long closed bug issues stayed open.
package resolution

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	custom_errors "github-test-metrics/internal/errors"
	"github-test-metrics/internal/model"
)

// NegativePolicy decides what happens to issues closed before they were created.
type NegativePolicy string

const (
	// PolicyKeep leaves negative durations in the statistic.
	PolicyKeep NegativePolicy = "keep"
	// PolicyDrop skips negative durations and logs a warning.
	PolicyDrop NegativePolicy = "drop"
	// PolicyReject fails the project with a NegativeDurationError.
	PolicyReject NegativePolicy = "reject"
)

// ParsePolicy validates a policy name. The empty string maps to PolicyKeep.
func ParsePolicy(s string) (NegativePolicy, error) {
	switch p := NegativePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyKeep, nil
	case PolicyKeep, PolicyDrop, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown negative duration policy %q (use keep, drop or reject)", s)
	}
}

var layouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp after stripping a trailing "Z".
// Values without an offset are treated as naive wall-clock times.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSuffix(strings.TrimSpace(s), "Z")
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Days returns the whole number of days between two instants, rounded toward
// negative infinity.
func Days(created, closed time.Time) int {
	return int(math.Floor(closed.Sub(created).Hours() / 24))
}

// Collector turns closed issues into per-issue resolution times.
type Collector struct {
	Policy NegativePolicy
	Logger *slog.Logger
}

// NewCollector creates a Collector with the given policy.
func NewCollector(policy NegativePolicy, logger *slog.Logger) *Collector {
	if policy == "" {
		policy = PolicyKeep
	}
	return &Collector{Policy: policy, Logger: logger}
}

// Times returns the resolution time in days for every issue that is not a pull
// request. A missing or malformed timestamp aborts the whole list.
func (c *Collector) Times(issues []model.IssueRecord) ([]int, error) {
	times := make([]int, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}

		created, err := ParseTimestamp(issue.CreatedAt)
		if err != nil {
			return nil, &custom_errors.ParseError{Issue: issue.Number, Field: "created_at", Value: issue.CreatedAt, Err: err}
		}
		if issue.ClosedAt == nil {
			return nil, &custom_errors.ParseError{Issue: issue.Number, Field: "closed_at", Err: custom_errors.ErrMissingClosedAt}
		}
		closed, err := ParseTimestamp(*issue.ClosedAt)
		if err != nil {
			return nil, &custom_errors.ParseError{Issue: issue.Number, Field: "closed_at", Value: *issue.ClosedAt, Err: err}
		}

		days := Days(created, closed)
		if days < 0 {
			switch c.Policy {
			case PolicyReject:
				return nil, &custom_errors.NegativeDurationError{Issue: issue.Number, Days: days}
			case PolicyDrop:
				c.logger().Warn("Dropping issue with negative resolution time", "issue", issue.Number, "days", days)
				continue
			}
		}
		times = append(times, days)
	}
	return times, nil
}

func (c *Collector) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Median returns the median of times, or an undefined value for an empty list.
func Median(times []int) model.OptionalFloat {
	if len(times) == 0 {
		return model.OptionalFloat{}
	}
	data := make(stats.Float64Data, len(times))
	for i, d := range times {
		data[i] = float64(d)
	}
	m, err := stats.Median(data)
	if err != nil {
		return model.OptionalFloat{}
	}
	return model.Some(m)
}
