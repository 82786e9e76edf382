package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrichOutcome is the isolated result of enriching one record
type EnrichOutcome struct {
	Record   *CaseRecord `json:"record"`
	Err      error       `json:"-"`
	Attempts int         `json:"attempts"`
}

// OK reports whether the record was enriched without a navigation failure
func (o EnrichOutcome) OK() bool {
	return o.Err == nil
}

// RunResult represents one pipeline run for a single town
type RunResult struct {
	RunID      uuid.UUID                   `json:"run_id"`
	Town       string                      `json:"town"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	Records    []*CaseRecord               `json:"records"`
	Outcomes   []EnrichOutcome             `json:"outcomes,omitempty"`
	Candidates map[string][]PhoneCandidate `json:"candidates,omitempty"` // Keyed by docket
}

// NewRunResult starts a run for the given town
func NewRunResult(town string) *RunResult {
	return &RunResult{
		RunID:      uuid.New(),
		Town:       town,
		StartedAt:  time.Now().UTC(),
		Candidates: make(map[string][]PhoneCandidate),
	}
}

// Failed returns the outcomes whose enrichment did not succeed
func (r *RunResult) Failed() []EnrichOutcome {
	var failed []EnrichOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Duration returns how long the run took
func (r *RunResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
