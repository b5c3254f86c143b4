// Package validate checks opportunity and response drafts for completeness
// before they may leave draft state.
//
// Validators are pure and side-effect free. They return a flat ordered list
// of human-readable messages — empty on success — so callers can surface
// every problem at once instead of failing on the first. Ordinary invalid
// input never produces an error value or a panic; only a nil draft, a
// programmer error, fails loudly.
package validate

import (
	"strings"

	"skillbridge/exchange-service/internal/model"
)

// ValidateOpportunity returns every completeness problem with a draft
// posting, in field order.
func ValidateOpportunity(draft *model.Opportunity) []string {
	if draft == nil {
		panic("validate: nil opportunity draft")
	}

	var msgs []string
	if strings.TrimSpace(draft.Title) == "" {
		msgs = append(msgs, "title is required")
	}
	if strings.TrimSpace(draft.Description) == "" {
		msgs = append(msgs, "description is required")
	}
	if strings.TrimSpace(draft.Category) == "" {
		msgs = append(msgs, "category is required")
	}
	if draft.Compensation.Exchange == model.ExchangePaid &&
		draft.Compensation.AmountKind != model.AmountNegotiable &&
		strings.TrimSpace(draft.Compensation.Amount) == "" {
		msgs = append(msgs, "amount is required for paid opportunities")
	}
	return msgs
}

// OpportunityWarnings returns non-blocking advisories for a draft posting.
// These are surfaced by the UI next to the form but never reject the draft.
func OpportunityWarnings(draft *model.Opportunity) []string {
	if draft == nil {
		panic("validate: nil opportunity draft")
	}

	var msgs []string
	if len(nonEmpty(draft.RequiredSkills)) == 0 {
		msgs = append(msgs, "adding at least one required skill helps responders find this posting")
	}
	return msgs
}

// ValidateResponse returns every completeness problem with a draft response.
//
// The exchange type comes from the parent opportunity at validation time,
// never from a value cached on the response: which field is mandatory
// (proposed rate vs offered skills) depends on what the opportunity asks for.
func ValidateResponse(draft *model.Response, exchange model.ExchangeType) []string {
	if draft == nil {
		panic("validate: nil response draft")
	}

	var msgs []string
	if strings.TrimSpace(draft.CoverMessage) == "" {
		msgs = append(msgs, "cover message is required")
	}
	switch exchange {
	case model.ExchangePaid:
		if strings.TrimSpace(draft.ProposedRate) == "" {
			msgs = append(msgs, "proposed rate is required for paid opportunities")
		}
	case model.ExchangeBarter:
		if len(nonEmpty(draft.OfferedSkills)) == 0 {
			msgs = append(msgs, "at least one offered skill is required for barter opportunities")
		}
	}
	return msgs
}

func nonEmpty(skills []string) []string {
	out := skills[:0:0]
	for _, s := range skills {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
