package entity

import (
	"context"
	"errors"
	"fmt"
	"net"
)

type ParseReason string

const (
	ParseMissing   ParseReason = "missing"
	ParseAmbiguous ParseReason = "ambiguous"
	ParseInvalid   ParseReason = "invalid"
)

// ParseError reports that a solver response could not be mapped to a valid
// Answer for its question kind.
type ParseError struct {
	Reason ParseReason
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("answer parse failed (%s): %s", e.Reason, e.Detail)
}

// SolveError wraps an unrecovered parse failure or exhausted transport
// retries for one question. It always carries the question text verbatim.
type SolveError struct {
	Question  string
	Attempted string
	Err       error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve failed for question %q: %v", e.Question, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

// AffordanceNotFound reports that the page-operating agent could not locate
// an expected control after its own attempts.
type AffordanceNotFound struct {
	Affordance string
	Detail     string
}

func (e *AffordanceNotFound) Error() string {
	return fmt.Sprintf("affordance %q not found: %s", e.Affordance, e.Detail)
}

// BudgetExceeded reports that the global iteration cap was reached. Always
// fatal.
type BudgetExceeded struct {
	Max int
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("iteration budget exceeded (max %d)", e.Max)
}

// TransportError marks a transient failure talking to a collaborator.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransient reports whether err may be recovered by a bounded retry.
// Context cancellation is never transient: the run is being torn down.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}
