package models

import (
	"fmt"
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeNothingToDo Outcome = "nothing_to_do"
	OutcomeSuccess     Outcome = "success"
	OutcomePartial     Outcome = "partial"
	OutcomeFailure     Outcome = "failure"
)

const (
	FailureSource    = "source"
	FailureBatch     = "batch"
	FailureRecipient = "recipient"
	FailurePersist   = "watermarks"
)

type Failure struct {
	Kind    string   `json:"kind"`
	Targets []string `json:"targets"`
	Error   string   `json:"error"`
}

type CycleSummary struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Outcome         Outcome   `json:"outcome"`
	Due             int       `json:"due"`
	Batches         int       `json:"batches"`
	FailedBatches   int       `json:"failed_batches"`
	NewRecords      int       `json:"new_records"`
	UpdatedRecords  int       `json:"updated_records"`
	Digests         int       `json:"digests"`
	Delivered       int       `json:"delivered"`
	AdvancedSources []string  `json:"advanced_sources"`
	Failures        []Failure `json:"failures,omitempty"`
}

func (s *CycleSummary) AddFailure(kind string, targets []string, err error) {
	s.Failures = append(s.Failures, Failure{Kind: kind, Targets: targets, Error: err.Error()})
}

// Decide sets the outcome from the counters gathered during the cycle.
func (s *CycleSummary) Decide() Outcome {
	switch {
	case s.Due == 0 && len(s.Failures) == 0:
		s.Outcome = OutcomeNothingToDo
	case len(s.Failures) == 0:
		s.Outcome = OutcomeSuccess
	case s.Due == 0,
		s.Batches > 0 && s.FailedBatches == s.Batches,
		s.Digests > 0 && s.Delivered == 0:
		s.Outcome = OutcomeFailure
	default:
		s.Outcome = OutcomePartial
	}
	return s.Outcome
}

func (s *CycleSummary) String() string {
	switch s.Outcome {
	case OutcomeNothingToDo:
		return "nothing to do"
	case OutcomeSuccess:
		return fmt.Sprintf("fully successful: %d batches, %d digests delivered", s.Batches, s.Delivered)
	}
	targets := make([]string, 0, len(s.Failures))
	for _, f := range s.Failures {
		targets = append(targets, f.Kind+" "+strings.Join(f.Targets, ", "))
	}
	if s.Outcome == OutcomeFailure {
		return fmt.Sprintf("total failure: %s", strings.Join(targets, "; "))
	}
	return fmt.Sprintf("partial success with %d failures: %s", len(s.Failures), strings.Join(targets, "; "))
}
