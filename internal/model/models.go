// internal/model/models.go
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ProjectID identifies a GitHub repository by owner and name.
type ProjectID struct {
	Owner string
	Name  string
}

func (p ProjectID) String() string {
	return p.Owner + "/" + p.Name
}

// IssueRecord is the subset of a GitHub issue payload the resolution
// collector needs. Timestamps are kept as raw strings so malformed values
// surface as parse errors instead of being rejected by the JSON decoder.
type IssueRecord struct {
	Number      int             `json:"number"`
	CreatedAt   string          `json:"created_at"`
	ClosedAt    *string         `json:"closed_at"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

// IsPullRequest reports whether the pull_request key was present in the payload.
func (i IssueRecord) IsPullRequest() bool {
	return len(i.PullRequest) > 0
}

// OptionalFloat is a float64 that may be undefined.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a defined OptionalFloat.
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// MarshalCSV writes missing values as an empty cell. Whole numbers keep a
// trailing ".0" so the column reads as floating point.
func (o OptionalFloat) MarshalCSV() (string, error) {
	if !o.Valid {
		return "", nil
	}
	s := strconv.FormatFloat(o.Value, 'f', -1, 64)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s, nil
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Summary is the per-project row of the dataset.
type Summary struct {
	Project                 ProjectID     `json:"-"`
	Position                int           `json:"-"`
	UnitPresence            bool          `json:"unit_presence"`
	UnitRatio               OptionalFloat `json:"unit_ratio"`
	MedianBugResolutionDays OptionalFloat `json:"median_bug_resolution_days"`
	BugCount                int           `json:"bug_count"`
	UnitTestFiles           int           `json:"unit_test_files"`
	TestFiles               int           `json:"test_files"`
}

// MarshalJSON flattens the project identifier into a "project" field.
func (s Summary) MarshalJSON() ([]byte, error) {
	type alias Summary
	return json.Marshal(struct {
		Project string `json:"project"`
		alias
	}{
		Project: s.Project.String(),
		alias:   alias(s),
	})
}

// Dataset holds one summary per successfully processed project, in
// configuration order.
type Dataset []Summary

// ProjectFailure records why a project is missing from the dataset.
type ProjectFailure struct {
	Project ProjectID
	Stage   string
	Err     error
}

func (f ProjectFailure) Error() string {
	return f.Project.String() + ": " + f.Stage + ": " + f.Err.Error()
}

func (f ProjectFailure) Unwrap() error {
	return f.Err
}
