// Package filter implements the list-narrowing predicates behind the search
// box and filter dropdowns.
//
// Criteria fields are independently optional; absent fields (or the "all"
// sentinel) are no-ops and present fields are ANDed together. There is no
// OR/NOT composition. Matching is recomputed on every call with no index:
// target collections are tens to low hundreds of records, and that linear
// scan is the intended scale of this engine.
package filter

import (
	"strings"
	"time"

	"skillbridge/exchange-service/internal/lifecycle"
	"skillbridge/exchange-service/internal/model"
)

// All is the sentinel dropdown value meaning "do not filter on this field".
const All = "all"

// Criteria carries one value per filter control. Zero values are no-ops.
type Criteria struct {
	// FreeText is matched case-insensitively as a plain substring against
	// title, description and poster name — not a tokenised search.
	FreeText string

	Category string // exact match
	Exchange string // "paid" | "barter"
	Urgency  string // "low" | "medium" | "high"

	// Location matches the location-type enum exactly when it names one
	// ("remote", "onsite", "hybrid"), otherwise as a case-insensitive
	// substring of the free-text location.
	Location string

	Status string // effective status for opportunities, stored for responses
}

// Opportunities returns the subsequence of in matching every present
// criterion, preserving the input's relative order. Status criteria compare
// against the deadline-derived effective status at the supplied instant.
func Opportunities(in []model.Opportunity, c Criteria, now time.Time) []model.Opportunity {
	out := make([]model.Opportunity, 0, len(in))
	for _, o := range in {
		if !matchOpportunity(&o, c, now) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Responses returns the subsequence of in matching every present criterion,
// preserving the input's relative order. Only FreeText and Status apply to
// responses; the remaining criteria describe opportunity fields.
func Responses(in []model.Response, c Criteria) []model.Response {
	out := make([]model.Response, 0, len(in))
	for _, r := range in {
		if !matchResponse(&r, c) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchOpportunity(o *model.Opportunity, c Criteria, now time.Time) bool {
	if set(c.FreeText) &&
		!containsFold(o.Title, c.FreeText) &&
		!containsFold(o.Description, c.FreeText) &&
		!containsFold(o.PosterName, c.FreeText) {
		return false
	}
	if set(c.Category) && o.Category != c.Category {
		return false
	}
	if set(c.Exchange) && string(o.Compensation.Exchange) != c.Exchange {
		return false
	}
	if set(c.Urgency) && string(o.Urgency) != c.Urgency {
		return false
	}
	if set(c.Location) && !matchLocation(o, c.Location) {
		return false
	}
	if set(c.Status) {
		effective := lifecycle.EffectiveStatus(o.Status, o.Deadline, now)
		if string(effective) != c.Status {
			return false
		}
	}
	return true
}

func matchResponse(r *model.Response, c Criteria) bool {
	if set(c.FreeText) &&
		!containsFold(r.CoverMessage, c.FreeText) &&
		!containsFold(r.Approach, c.FreeText) &&
		!containsFold(r.Experience, c.FreeText) {
		return false
	}
	if set(c.Status) && string(r.Status) != c.Status {
		return false
	}
	return true
}

func matchLocation(o *model.Opportunity, want string) bool {
	switch model.LocationType(want) {
	case model.LocationRemote, model.LocationOnsite, model.LocationHybrid:
		return string(o.LocationType) == want
	}
	return containsFold(o.Location, want)
}

// set reports whether a criterion is present: empty string and the "all"
// sentinel both mean "no filter".
func set(v string) bool {
	return v != "" && v != All
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
