// Package engine contains the opportunity/response lifecycle logic of the
// exchange service. It is transport-agnostic: used by the HTTP handler in
// this package, and usable by any other transport layer.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"skillbridge/exchange-service/internal/access"
	"skillbridge/exchange-service/internal/aggregate"
	"skillbridge/exchange-service/internal/filter"
	"skillbridge/exchange-service/internal/lifecycle"
	"skillbridge/exchange-service/internal/metrics"
	"skillbridge/exchange-service/internal/model"
	"skillbridge/exchange-service/internal/store"
	"skillbridge/exchange-service/internal/validate"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates all opportunity/response business logic. Access
// predicates run before every mutation, so a denial never needs a rollback.
type Service struct {
	store  store.Store
	rdb    *redis.Client // nil in demo mode: events are skipped
	policy access.Policy
	now    func() time.Time
}

// NewService returns a configured Service.
func NewService(st store.Store, rdb *redis.Client, policy access.Policy) *Service {
	return &Service{store: st, rdb: rdb, policy: policy, now: time.Now}
}

// WithClock replaces the time source. Tests inject a fixed or stepping
// clock so deadline expiry and statusUpdatedAt stamps are deterministic.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ─── Opportunities ───────────────────────────────────────────────────────────

// CreateOpportunity validates and stores a new posting owned by actor.
// The draft's identity, status, counters and timestamps are assigned here;
// whatever the caller put in those fields is discarded.
func (s *Service) CreateOpportunity(ctx context.Context, draft *model.Opportunity, actor model.Actor) (*model.Opportunity, error) {
	if !s.policy.CanCreateOpportunity(draft.Kind, actor) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}
	if msgs := validate.ValidateOpportunity(draft); len(msgs) > 0 {
		metrics.ValidationFailures.Inc()
		return nil, &ValidationError{Messages: msgs}
	}

	now := s.now()
	o := draft.Clone()
	o.ID = uuid.NewString()
	o.OwnerID = actor.ID
	o.Status = lifecycle.OpportunityActive
	o.ResponseCount = 0
	o.ViewCount = 0
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := s.store.CreateOpportunity(ctx, o); err != nil {
		return nil, err
	}

	metrics.OpportunitiesCreated.Inc()
	s.publish(ctx, "EVENT_OPPORTUNITY_CREATED", map[string]string{
		"type":          "EVENT_OPPORTUNITY_CREATED",
		"opportunityId": o.ID,
		"ownerId":       o.OwnerID,
		"kind":          string(o.Kind),
	})
	return o, nil
}

// GetOpportunity returns one posting by id.
func (s *Service) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	o, err := s.store.GetOpportunity(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return o, nil
}

// ListOpportunities returns the filtered view of all postings, preserving
// store order.
func (s *Service) ListOpportunities(ctx context.Context, c filter.Criteria) ([]model.Opportunity, error) {
	all, err := s.store.ListOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Opportunities(all, c, s.now()), nil
}

// TransitionOpportunityStatus applies an owner-driven posting transition
// (active↔paused, active/paused→closed). Expired is derived from the
// deadline and can never be requested.
func (s *Service) TransitionOpportunityStatus(ctx context.Context, opportunityID, newStatusRaw string, actor model.Actor) (*model.Opportunity, error) {
	newStatus, err := lifecycle.ParseOpportunityStatus(newStatusRaw)
	if err != nil {
		return nil, &InvalidStatusError{Status: newStatusRaw}
	}

	o, err := s.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !access.CanManage(o, actor) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}

	now := s.now()
	updated, err := s.store.UpdateOpportunity(ctx, opportunityID, func(o *model.Opportunity) error {
		if !lifecycle.CanTransitionOpportunity(o.Status, newStatus) {
			return &InvalidStatusError{Status: newStatusRaw}
		}
		o.Status = newStatus
		o.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.publish(ctx, "EVENT_OPPORTUNITY_STATUS_CHANGED", map[string]string{
		"type":          "EVENT_OPPORTUNITY_STATUS_CHANGED",
		"opportunityId": opportunityID,
		"to":            string(newStatus),
	})
	return updated, nil
}

// IncrementViewCount bumps the monotonic view counter. Every call counts:
// de-duplicating repeat views within a session is the caller's concern.
func (s *Service) IncrementViewCount(ctx context.Context, opportunityID string) error {
	now := s.now()
	_, err := s.store.UpdateOpportunity(ctx, opportunityID, func(o *model.Opportunity) error {
		o.ViewCount++
		o.UpdatedAt = now
		return nil
	})
	return mapStoreErr(err)
}

// ─── Responses ───────────────────────────────────────────────────────────────

// CreateResponse validates and stores a new response by actor against the
// given opportunity. Which fields are mandatory depends on the parent
// opportunity's exchange type, looked up here at submission time. A second
// submission by the same respondent is rejected, never overwritten.
func (s *Service) CreateResponse(ctx context.Context, draft *model.Response, opportunityID string, actor model.Actor) (*model.Response, error) {
	opp, err := s.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !s.policy.CanRespond(opp, actor, s.now()) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}
	if msgs := validate.ValidateResponse(draft, opp.Compensation.Exchange); len(msgs) > 0 {
		metrics.ValidationFailures.Inc()
		return nil, &ValidationError{Messages: msgs}
	}

	now := s.now()
	r := draft.Clone()
	r.ID = uuid.NewString()
	r.OpportunityID = opportunityID
	r.RespondentID = actor.ID
	r.Status = lifecycle.StatusPending
	r.Notes = ""
	r.AppliedAt = now
	r.StatusUpdatedAt = now

	if err := s.store.CreateResponse(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateResponse
		}
		return nil, err
	}

	// Cached counter. Non-fatal: the reconcile sweep will catch up if this
	// write loses a race with anything.
	if _, err := s.store.UpdateOpportunity(ctx, opportunityID, func(o *model.Opportunity) error {
		o.ResponseCount++
		return nil
	}); err != nil {
		slog.Warn("response count increment failed", "opportunityId", opportunityID, "err", err)
	}

	metrics.ResponsesCreated.Inc()
	s.publish(ctx, "EVENT_RESPONSE_CREATED", map[string]string{
		"type":          "EVENT_RESPONSE_CREATED",
		"opportunityId": opportunityID,
		"responseId":    r.ID,
		"respondentId":  r.RespondentID,
	})
	return r, nil
}

// TransitionResponseStatus moves a response to a new status on behalf of the
// opportunity owner, optionally replacing the owner notes in the same write.
// Same-status transitions succeed and still restamp statusUpdatedAt.
func (s *Service) TransitionResponseStatus(ctx context.Context, responseID, newStatusRaw string, notes *string, actor model.Actor) (*model.Response, error) {
	r, err := s.store.GetResponse(ctx, responseID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	opp, err := s.store.GetOpportunity(ctx, r.OpportunityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !access.CanManage(opp, actor) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}

	set := lifecycle.StatusesFor(opp.Kind)
	newStatus, err := set.Parse(newStatusRaw)
	if err != nil {
		return nil, &InvalidStatusError{Status: newStatusRaw, Kind: opp.Kind}
	}

	var from lifecycle.ResponseStatus
	now := s.now()
	updated, err := s.store.UpdateResponse(ctx, responseID, func(r *model.Response) error {
		if !set.CanTransition(r.Status, newStatus) {
			return &InvalidStatusError{Status: newStatusRaw, Kind: opp.Kind}
		}
		from = r.Status
		r.Status = newStatus
		if notes != nil {
			r.Notes = *notes
		}
		r.StatusUpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	metrics.StatusTransitions.Inc()
	s.publish(ctx, "EVENT_RESPONSE_STATUS_CHANGED", map[string]string{
		"type":          "EVENT_RESPONSE_STATUS_CHANGED",
		"opportunityId": opp.ID,
		"responseId":    responseID,
		"ownerId":       opp.OwnerID,
		"from":          string(from),
		"to":            string(newStatus),
	})
	return updated, nil
}

// UpdateResponseNotes replaces the owner notes without changing status.
// A notes-only update still stamps statusUpdatedAt.
func (s *Service) UpdateResponseNotes(ctx context.Context, responseID, notes string, actor model.Actor) (*model.Response, error) {
	r, err := s.store.GetResponse(ctx, responseID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	opp, err := s.store.GetOpportunity(ctx, r.OpportunityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !access.CanManage(opp, actor) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}

	now := s.now()
	updated, err := s.store.UpdateResponse(ctx, responseID, func(r *model.Response) error {
		r.Notes = notes
		r.StatusUpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return updated, nil
}

// ListResponses returns the owner's filtered view of the responses against
// one opportunity, preserving store order (oldest first).
func (s *Service) ListResponses(ctx context.Context, opportunityID string, c filter.Criteria, actor model.Actor) ([]model.Response, error) {
	opp, err := s.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !access.CanManage(opp, actor) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}
	all, err := s.store.ListResponsesByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	return filter.Responses(all, c), nil
}

// ListMyResponses returns every response the actor has submitted.
func (s *Service) ListMyResponses(ctx context.Context, actor model.Actor) ([]model.Response, error) {
	return s.store.ListResponsesByRespondent(ctx, actor.ID)
}

// ResponseCounts returns the per-status counts for one opportunity's filter
// chips, including the synthetic "all" total. Owner-only.
func (s *Service) ResponseCounts(ctx context.Context, opportunityID string, actor model.Actor) (map[string]int, error) {
	opp, err := s.store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !access.CanManage(opp, actor) {
		metrics.ForbiddenOperations.Inc()
		return nil, ErrForbidden
	}
	responses, err := s.store.ListResponsesByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	return aggregate.CountByStatus(responses, lifecycle.StatusesFor(opp.Kind)), nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// publish sends a Gateway SSE event. Non-fatal: a missing or failing broker
// never fails the operation that triggered the event.
func (s *Service) publish(ctx context.Context, channel string, payload map[string]string) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(payload)
	if err := s.rdb.Publish(ctx, channel, event).Err(); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
