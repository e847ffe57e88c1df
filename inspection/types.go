package inspection

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrBadInput classifies failures caused by the submitted payload, as
// opposed to failures of the pipeline itself. The transport layer maps it
// to a client fault.
var ErrBadInput = errors.New("bad input")

func badInput(err error) error {
	return fmt.Errorf("%w: %w", ErrBadInput, err)
}

// Status is the cleanliness verdict for a facility.
type Status string

const (
	StatusClean Status = "Clean"
	StatusDirty Status = "Dirty"
)

// Valid reports whether s is one of the two allowed verdicts.
func (s Status) Valid() bool {
	return s == StatusClean || s == StatusDirty
}

// Result is the structured verdict produced by a model provider. Its JSON
// shape is a strict contract: a response that does not conform is rejected
// at parse time, never coerced.
type Result struct {
	Status         Status   `json:"status"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	IssuesDetected []string `json:"issues_detected"`
}

// Validate checks the invariants of an already-parsed result.
func (r *Result) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	if r.IssuesDetected == nil {
		return errors.New("issues_detected is missing")
	}
	return nil
}

// ParseResult parses a raw model response into a Result, enforcing that
// every field is actually present. json.Unmarshal alone would silently
// zero-fill missing status and confidence.
func ParseResult(raw string) (*Result, error) {
	var shadow struct {
		Status         *Status   `json:"status"`
		Confidence     *float64  `json:"confidence"`
		Reasoning      *string   `json:"reasoning"`
		IssuesDetected *[]string `json:"issues_detected"`
	}

	if err := json.Unmarshal([]byte(raw), &shadow); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if shadow.Status == nil || shadow.Confidence == nil {
		return nil, errors.New("response is missing status or confidence")
	}
	if shadow.Reasoning == nil {
		return nil, errors.New("response is missing reasoning")
	}
	if shadow.IssuesDetected == nil {
		return nil, errors.New("response is missing issues_detected")
	}

	result := &Result{
		Status:         *shadow.Status,
		Confidence:     *shadow.Confidence,
		Reasoning:      *shadow.Reasoning,
		IssuesDetected: *shadow.IssuesDetected,
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}
