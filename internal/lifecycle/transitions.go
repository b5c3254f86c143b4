// Package lifecycle defines the status state machines for opportunities and
// the responses submitted against them.
//
// Response status graph (marketplace leads; job applications never enter
// ACCEPTED):
//
//	pending ◄──► shortlisted ◄──► on_hold
//	   ▲              │              │
//	   └──────────────┴──────────────┴──► accepted / rejected
//
// Every status in a set may move to every other status in the same set,
// including back to pending. This is an owner-driven manual override model,
// not a forward pipeline: accepted and rejected are terminal in normal UI
// flow only ("soft-terminal"), and stay reachable and exitable so owners can
// correct mistakes.
package lifecycle

import "fmt"

// Kind distinguishes the two opportunity flavours served by the exchange.
type Kind string

const (
	KindJob  Kind = "job"  // job posting, answered by applications
	KindNeed Kind = "need" // needs/leads barter-or-paid exchange
)

// ParseKind converts a raw string to a Kind, returning an error for unknown
// values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	switch k {
	case KindJob, KindNeed:
		return k, nil
	}
	return "", fmt.Errorf("unknown opportunity kind %q", s)
}

// ResponseStatus values mirror the status badges shown on response cards.
type ResponseStatus string

const (
	StatusPending     ResponseStatus = "pending"
	StatusShortlisted ResponseStatus = "shortlisted"
	StatusOnHold      ResponseStatus = "on_hold"
	StatusAccepted    ResponseStatus = "accepted"
	StatusRejected    ResponseStatus = "rejected"
)

// StatusSet is one instantiation of the generic response state machine.
// Job applications and marketplace leads share the machine but not the
// member list, so the two are kept as distinct sets rather than one enum.
type StatusSet struct {
	kind    Kind
	members []ResponseStatus
}

var (
	// JobApplicationStatuses is the set used by job applications.
	// Applications are never accepted through the engine — hiring happens
	// outside the board, so the set stops at shortlisted/on_hold/rejected.
	JobApplicationStatuses = StatusSet{
		kind:    KindJob,
		members: []ResponseStatus{StatusPending, StatusShortlisted, StatusOnHold, StatusRejected},
	}

	// LeadStatuses is the full set used by marketplace leads.
	LeadStatuses = StatusSet{
		kind: KindNeed,
		members: []ResponseStatus{
			StatusPending, StatusShortlisted, StatusOnHold, StatusAccepted, StatusRejected,
		},
	}
)

// StatusesFor returns the status set matching an opportunity kind.
func StatusesFor(kind Kind) StatusSet {
	if kind == KindJob {
		return JobApplicationStatuses
	}
	return LeadStatuses
}

// Kind returns the opportunity kind this set belongs to.
func (s StatusSet) Kind() Kind { return s.kind }

// Members returns the statuses in this set, in display order.
func (s StatusSet) Members() []ResponseStatus {
	out := make([]ResponseStatus, len(s.members))
	copy(out, s.members)
	return out
}

// Contains reports whether st is a member of this set.
func (s StatusSet) Contains(st ResponseStatus) bool {
	for _, m := range s.members {
		if m == st {
			return true
		}
	}
	return false
}

// Parse converts a raw string to a ResponseStatus, returning an error when
// the value is outside this set (e.g. "accepted" on a job application).
func (s StatusSet) Parse(raw string) (ResponseStatus, error) {
	st := ResponseStatus(raw)
	if s.Contains(st) {
		return st, nil
	}
	return "", fmt.Errorf("unknown response status %q for %s responses", raw, s.kind)
}

// CanTransition reports whether moving from → to is permitted.
// Any member may move to any member, including itself: a same-status
// transition is a legal no-op that still restamps statusUpdatedAt.
func (s StatusSet) CanTransition(from, to ResponseStatus) bool {
	return s.Contains(from) && s.Contains(to)
}

// IsSoftTerminal reports whether st ends the flow in normal UI usage.
// Soft-terminal statuses remain valid transition sources in the engine.
func IsSoftTerminal(st ResponseStatus) bool {
	return st == StatusAccepted || st == StatusRejected
}
