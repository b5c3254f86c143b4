// Package store defines the persistence port of the exchange engine and its
// two adapters: an in-memory fixture store for demo mode and tests, and a
// PostgreSQL store for live deployments. The adapter is chosen once at
// construction — business logic never branches on which one it got.
package store

import (
	"context"
	"errors"

	"skillbridge/exchange-service/internal/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned by CreateResponse when the respondent already has
// a response against the same opportunity. The existing record is left
// untouched — duplicates are rejected, never overwritten.
var ErrDuplicate = errors.New("response already exists for this respondent and opportunity")

// Store is the engine's persistence boundary.
//
// Update methods apply the mutate closure inside a per-record
// read-validate-write critical section, so two concurrent updates of the
// same record cannot interleave. No cross-record transactions: counters and
// response statuses may be momentarily inconsistent with each other, which
// is acceptable for display aggregates. A mutate closure returning an error
// aborts the update with nothing written.
type Store interface {
	CreateOpportunity(ctx context.Context, o *model.Opportunity) error
	GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error)
	ListOpportunities(ctx context.Context) ([]model.Opportunity, error)
	UpdateOpportunity(ctx context.Context, id string, mutate func(*model.Opportunity) error) (*model.Opportunity, error)

	CreateResponse(ctx context.Context, r *model.Response) error
	GetResponse(ctx context.Context, id string) (*model.Response, error)
	ListResponsesByOpportunity(ctx context.Context, opportunityID string) ([]model.Response, error)
	ListResponsesByRespondent(ctx context.Context, respondentID string) ([]model.Response, error)
	UpdateResponse(ctx context.Context, id string, mutate func(*model.Response) error) (*model.Response, error)
}
