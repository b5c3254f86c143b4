// Package model defines the shared records of the exchange engine.
// JSON shapes match what the Gateway serves to the web and mobile clients.
package model

import (
	"time"

	"skillbridge/exchange-service/internal/lifecycle"
)

// Role is the marketplace role forwarded by the Gateway with each request.
type Role string

const (
	RoleFounder         Role = "founder"
	RoleStudent         Role = "student"
	RoleJobSeeker       Role = "job_seeker"
	RoleServiceProvider Role = "service_provider"
	RoleMentor          Role = "mentor"
)

// Actor is the signed-in identity acting on a record. Authentication and
// session handling live in the Gateway; the engine only ever sees id + role.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// ExchangeType says how an opportunity is compensated.
type ExchangeType string

const (
	ExchangePaid   ExchangeType = "paid"
	ExchangeBarter ExchangeType = "barter"
)

// AmountKind qualifies a paid opportunity's compensation.
type AmountKind string

const (
	AmountFixed      AmountKind = "fixed"
	AmountRange      AmountKind = "range"
	AmountNegotiable AmountKind = "negotiable"
)

// LocationType is the work-location enum used by the filter dropdowns.
type LocationType string

const (
	LocationRemote LocationType = "remote"
	LocationOnsite LocationType = "onsite"
	LocationHybrid LocationType = "hybrid"
)

// Urgency is the poster-declared priority badge.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Compensation is the structured pay/barter block of an opportunity.
// Exchange discriminates: paid postings carry AmountKind (+ Amount unless
// negotiable), barter postings carry SkillsOffered.
type Compensation struct {
	Exchange      ExchangeType `json:"exchangeType"`
	AmountKind    AmountKind   `json:"amountKind,omitempty"`
	Amount        string       `json:"amount,omitempty"`
	SkillsOffered []string     `json:"skillsOffered,omitempty"`
}

// Opportunity generalises a job posting and a marketplace need.
type Opportunity struct {
	ID         string         `json:"id"`
	OwnerID    string         `json:"ownerId"`
	PosterName string         `json:"posterName"`
	Kind       lifecycle.Kind `json:"kind"`

	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	RequiredSkills []string     `json:"requiredSkills"`
	Compensation   Compensation `json:"compensation"`
	Urgency        Urgency      `json:"urgency,omitempty"`
	LocationType   LocationType `json:"locationType,omitempty"`
	Location       string       `json:"location,omitempty"`

	Status   lifecycle.OpportunityStatus `json:"status"`
	Deadline *time.Time                  `json:"applicationDeadline,omitempty"`

	// Counters are mutated only through engine increments, never by the
	// poster directly, and are display aggregates (eventually consistent).
	ResponseCount int `json:"responseCount"`
	ViewCount     int `json:"viewCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy, so store reads never alias caller-held slices.
func (o *Opportunity) Clone() *Opportunity {
	c := *o
	c.RequiredSkills = append([]string(nil), o.RequiredSkills...)
	c.Compensation.SkillsOffered = append([]string(nil), o.Compensation.SkillsOffered...)
	if o.Deadline != nil {
		d := *o.Deadline
		c.Deadline = &d
	}
	return &c
}

// Response generalises a job application and a marketplace lead.
//
// The record has two independently-authorised field groups: the respondent
// owns the submitted content, while Status and Notes belong exclusively to
// the opportunity's poster. The engine enforces the split; nothing in the
// struct itself is self-protecting.
type Response struct {
	ID            string `json:"id"`
	OpportunityID string `json:"opportunityId"`
	RespondentID  string `json:"respondentId"`

	CoverMessage  string   `json:"coverMessage"`
	Approach      string   `json:"approach,omitempty"`
	Experience    string   `json:"experience,omitempty"`
	Availability  string   `json:"availability,omitempty"`
	PortfolioURL  string   `json:"portfolioUrl,omitempty"`
	ProposedRate  string   `json:"proposedRate,omitempty"`
	OfferedSkills []string `json:"offeredSkills,omitempty"`

	Status lifecycle.ResponseStatus `json:"status"`
	Notes  string                   `json:"notes,omitempty"`

	AppliedAt       time.Time `json:"appliedAt"`
	StatusUpdatedAt time.Time `json:"statusUpdatedAt"`
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	c := *r
	c.OfferedSkills = append([]string(nil), r.OfferedSkills...)
	return &c
}
