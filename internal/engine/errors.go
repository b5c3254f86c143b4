package engine

import (
	"errors"
	"fmt"
	"strings"

	"skillbridge/exchange-service/internal/lifecycle"
)

// ─── Tagged errors ───────────────────────────────────────────────────────────
//
// Every engine failure is a returned value, local to one operation, and
// leaves prior state untouched. The caller (Gateway/UI) decides what to
// retry, toast or redirect.

// ErrNotFound is returned when a referenced opportunity or response id does
// not exist in the store.
var ErrNotFound = errors.New("record not found")

// ErrForbidden is returned when an access predicate denies the operation.
// It carries no detail on purpose: the denial must not reveal whether the
// record exists or who owns it.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateResponse is returned when the respondent already has a
// response against the opportunity. The existing response is untouched.
var ErrDuplicateResponse = errors.New("you have already responded to this opportunity")

// InvalidStatusError reports a requested status outside the enum for the
// response's opportunity kind (e.g. "accepted" on a job application).
type InvalidStatusError struct {
	Status string
	Kind   lifecycle.Kind
}

func (e *InvalidStatusError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("invalid status %q", e.Status)
	}
	return fmt.Sprintf("status %q is not valid for %s responses", e.Status, e.Kind)
}

// ValidationError carries the full ordered list of completeness problems
// with a draft; callers display all of them, not just the first.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}
