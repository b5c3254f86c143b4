package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillbridge/exchange-service/internal/model"
)

// Postgres is the live Store adapter backed by pgx. Per-record atomicity
// for the update closures comes from SELECT ... FOR UPDATE inside a single
// transaction: the row stays locked from read through write.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Store backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const opportunityColumns = `
	id, owner_id, poster_name, kind, title, description, category,
	required_skills, exchange_type, amount_kind, amount, skills_offered,
	urgency, location_type, location, status, deadline,
	response_count, view_count, created_at, updated_at`

const responseColumns = `
	id, opportunity_id, respondent_id, cover_message, approach, experience,
	availability, portfolio_url, proposed_rate, offered_skills,
	status, notes, applied_at, status_updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOpportunity(row rowScanner) (*model.Opportunity, error) {
	var o model.Opportunity
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.PosterName, &o.Kind, &o.Title, &o.Description, &o.Category,
		&o.RequiredSkills, &o.Compensation.Exchange, &o.Compensation.AmountKind,
		&o.Compensation.Amount, &o.Compensation.SkillsOffered,
		&o.Urgency, &o.LocationType, &o.Location, &o.Status, &o.Deadline,
		&o.ResponseCount, &o.ViewCount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanResponse(row rowScanner) (*model.Response, error) {
	var r model.Response
	err := row.Scan(
		&r.ID, &r.OpportunityID, &r.RespondentID, &r.CoverMessage, &r.Approach, &r.Experience,
		&r.Availability, &r.PortfolioURL, &r.ProposedRate, &r.OfferedSkills,
		&r.Status, &r.Notes, &r.AppliedAt, &r.StatusUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) CreateOpportunity(ctx context.Context, o *model.Opportunity) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO opportunities (
		   id, owner_id, poster_name, kind, title, description, category,
		   required_skills, exchange_type, amount_kind, amount, skills_offered,
		   urgency, location_type, location, status, deadline,
		   response_count, view_count, created_at, updated_at
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		o.ID, o.OwnerID, o.PosterName, o.Kind, o.Title, o.Description, o.Category,
		o.RequiredSkills, o.Compensation.Exchange, o.Compensation.AmountKind,
		o.Compensation.Amount, o.Compensation.SkillsOffered,
		o.Urgency, o.LocationType, o.Location, o.Status, o.Deadline,
		o.ResponseCount, o.ViewCount, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

func (p *Postgres) GetOpportunity(ctx context.Context, id string) (*model.Opportunity, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	o, err := scanOpportunity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return o, nil
}

func (p *Postgres) ListOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	out := make([]model.Opportunity, 0)
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateOpportunity(ctx context.Context, id string, mutate func(*model.Opportunity) error) (*model.Opportunity, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1 FOR UPDATE`, id)
	o, err := scanOpportunity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock opportunity: %w", err)
	}

	if err := mutate(o); err != nil {
		return nil, err // rollback, nothing written
	}

	_, err = tx.Exec(ctx,
		`UPDATE opportunities SET
		   title = $2, description = $3, category = $4, required_skills = $5,
		   exchange_type = $6, amount_kind = $7, amount = $8, skills_offered = $9,
		   urgency = $10, location_type = $11, location = $12, status = $13,
		   deadline = $14, response_count = $15, view_count = $16, updated_at = $17
		 WHERE id = $1`,
		o.ID, o.Title, o.Description, o.Category, o.RequiredSkills,
		o.Compensation.Exchange, o.Compensation.AmountKind, o.Compensation.Amount,
		o.Compensation.SkillsOffered, o.Urgency, o.LocationType, o.Location,
		o.Status, o.Deadline, o.ResponseCount, o.ViewCount, o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update opportunity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

// CreateResponse inserts a response unless the (respondent, opportunity)
// pair already exists. The guard runs in SQL so concurrent submissions
// cannot both pass the duplicate check.
func (p *Postgres) CreateResponse(ctx context.Context, r *model.Response) error {
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO responses (
		   id, opportunity_id, respondent_id, cover_message, approach, experience,
		   availability, portfolio_url, proposed_rate, offered_skills,
		   status, notes, applied_at, status_updated_at
		 )
		 SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
		 WHERE NOT EXISTS (
		   SELECT 1 FROM responses WHERE opportunity_id = $2 AND respondent_id = $3
		 )`,
		r.ID, r.OpportunityID, r.RespondentID, r.CoverMessage, r.Approach, r.Experience,
		r.Availability, r.PortfolioURL, r.ProposedRate, r.OfferedSkills,
		r.Status, r.Notes, r.AppliedAt, r.StatusUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

func (p *Postgres) GetResponse(ctx context.Context, id string) (*model.Response, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE id = $1`, id)
	r, err := scanResponse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	return r, nil
}

func (p *Postgres) ListResponsesByOpportunity(ctx context.Context, opportunityID string) ([]model.Response, error) {
	return p.listResponses(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE opportunity_id = $1 ORDER BY applied_at, id`,
		opportunityID)
}

func (p *Postgres) ListResponsesByRespondent(ctx context.Context, respondentID string) ([]model.Response, error) {
	return p.listResponses(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE respondent_id = $1 ORDER BY applied_at, id`,
		respondentID)
}

func (p *Postgres) listResponses(ctx context.Context, query, arg string) ([]model.Response, error) {
	rows, err := p.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := make([]model.Response, 0)
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateResponse(ctx context.Context, id string, mutate func(*model.Response) error) (*model.Response, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE id = $1 FOR UPDATE`, id)
	r, err := scanResponse(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock response: %w", err)
	}

	if err := mutate(r); err != nil {
		return nil, err // rollback, nothing written
	}

	_, err = tx.Exec(ctx,
		`UPDATE responses SET
		   cover_message = $2, approach = $3, experience = $4, availability = $5,
		   portfolio_url = $6, proposed_rate = $7, offered_skills = $8,
		   status = $9, notes = $10, status_updated_at = $11
		 WHERE id = $1`,
		r.ID, r.CoverMessage, r.Approach, r.Experience, r.Availability,
		r.PortfolioURL, r.ProposedRate, r.OfferedSkills,
		r.Status, r.Notes, r.StatusUpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update response: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return r, nil
}
