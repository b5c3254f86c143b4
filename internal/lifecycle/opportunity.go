package lifecycle

import (
	"fmt"
	"time"
)

// OpportunityStatus values mirror the poster-facing lifecycle of a posting.
type OpportunityStatus string

const (
	OpportunityActive OpportunityStatus = "active"
	OpportunityPaused OpportunityStatus = "paused"
	OpportunityClosed OpportunityStatus = "closed"

	// OpportunityExpired is derived from the deadline at read time and is
	// never stored or requested as a transition target.
	OpportunityExpired OpportunityStatus = "expired"
)

// opportunityTransitions lists every allowed owner-driven (from → to) pair.
// Expired never appears: it is computed, not set.
var opportunityTransitions = map[OpportunityStatus][]OpportunityStatus{
	OpportunityActive: {OpportunityPaused, OpportunityClosed},
	OpportunityPaused: {OpportunityActive, OpportunityClosed},
	// closed is terminal — no outgoing transitions
}

// ParseOpportunityStatus converts a raw string to an OpportunityStatus,
// returning an error for unknown values. Expired parses successfully so it
// can appear in filter criteria, but CanTransitionOpportunity rejects it as
// a target.
func ParseOpportunityStatus(s string) (OpportunityStatus, error) {
	st := OpportunityStatus(s)
	switch st {
	case OpportunityActive, OpportunityPaused, OpportunityClosed, OpportunityExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown opportunity status %q", s)
}

// CanTransitionOpportunity reports whether an owner may move a posting
// from → to.
func CanTransitionOpportunity(from, to OpportunityStatus) bool {
	for _, s := range opportunityTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsExpired reports whether a deadline has passed at the given instant.
// A nil deadline never expires. The result is a function of (deadline, now),
// so two reads at different instants may legitimately disagree.
func IsExpired(deadline *time.Time, now time.Time) bool {
	return deadline != nil && deadline.Before(now)
}

// EffectiveStatus resolves the status an opportunity presents to readers and
// to the access predicates: a passed deadline overrides the stored status
// unless the posting is already closed.
func EffectiveStatus(stored OpportunityStatus, deadline *time.Time, now time.Time) OpportunityStatus {
	if stored != OpportunityClosed && IsExpired(deadline, now) {
		return OpportunityExpired
	}
	return stored
}
