package store

import (
	"context"
	"sync"

	"skillbridge/exchange-service/internal/model"
)

// Memory is the in-memory Store adapter. A single mutex guards the maps,
// which trivially satisfies per-record atomicity at this scale. Records are
// deep-copied on the way in and out so callers can never mutate stored
// state behind the lock's back.
//
// Insertion order is preserved for listings: the filter engine is a stable
// subsequence filter, so the store must hand it a deterministic order.
type Memory struct {
	mu sync.Mutex

	opportunities map[string]*model.Opportunity
	responses     map[string]*model.Response

	oppOrder  []string
	respOrder []string

	// byPair indexes responses by (respondent, opportunity) for the
	// duplicate-submission check.
	byPair map[pairKey]string
}

type pairKey struct {
	respondentID  string
	opportunityID string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		opportunities: make(map[string]*model.Opportunity),
		responses:     make(map[string]*model.Response),
		byPair:        make(map[pairKey]string),
	}
}

func (m *Memory) CreateOpportunity(_ context.Context, o *model.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opportunities[o.ID] = o.Clone()
	m.oppOrder = append(m.oppOrder, o.ID)
	return nil
}

func (m *Memory) GetOpportunity(_ context.Context, id string) (*model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.opportunities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (m *Memory) ListOpportunities(_ context.Context) ([]model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Opportunity, 0, len(m.oppOrder))
	for _, id := range m.oppOrder {
		out = append(out, *m.opportunities[id].Clone())
	}
	return out, nil
}

func (m *Memory) UpdateOpportunity(_ context.Context, id string, mutate func(*model.Opportunity) error) (*model.Opportunity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.opportunities[id]
	if !ok {
		return nil, ErrNotFound
	}
	draft := o.Clone()
	if err := mutate(draft); err != nil {
		return nil, err // nothing written
	}
	m.opportunities[id] = draft
	return draft.Clone(), nil
}

func (m *Memory) CreateResponse(_ context.Context, r *model.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey{respondentID: r.RespondentID, opportunityID: r.OpportunityID}
	if _, exists := m.byPair[key]; exists {
		return ErrDuplicate
	}
	m.responses[r.ID] = r.Clone()
	m.respOrder = append(m.respOrder, r.ID)
	m.byPair[key] = r.ID
	return nil
}

func (m *Memory) GetResponse(_ context.Context, id string) (*model.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.responses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) ListResponsesByOpportunity(_ context.Context, opportunityID string) ([]model.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Response, 0)
	for _, id := range m.respOrder {
		if r := m.responses[id]; r.OpportunityID == opportunityID {
			out = append(out, *r.Clone())
		}
	}
	return out, nil
}

func (m *Memory) ListResponsesByRespondent(_ context.Context, respondentID string) ([]model.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Response, 0)
	for _, id := range m.respOrder {
		if r := m.responses[id]; r.RespondentID == respondentID {
			out = append(out, *r.Clone())
		}
	}
	return out, nil
}

func (m *Memory) UpdateResponse(_ context.Context, id string, mutate func(*model.Response) error) (*model.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.responses[id]
	if !ok {
		return nil, ErrNotFound
	}
	draft := r.Clone()
	if err := mutate(draft); err != nil {
		return nil, err // nothing written
	}
	m.responses[id] = draft
	return draft.Clone(), nil
}
