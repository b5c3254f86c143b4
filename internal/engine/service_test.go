package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"skillbridge/exchange-service/internal/access"
	"skillbridge/exchange-service/internal/engine"
	"skillbridge/exchange-service/internal/filter"
	"skillbridge/exchange-service/internal/lifecycle"
	"skillbridge/exchange-service/internal/model"
	"skillbridge/exchange-service/internal/store"
)

// fakeClock steps time manually so statusUpdatedAt stamps and deadline
// expiry are deterministic.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var (
	founder  = model.Actor{ID: "founder-1", Role: model.RoleFounder}
	student  = model.Actor{ID: "student-1", Role: model.RoleStudent}
	student2 = model.Actor{ID: "student-2", Role: model.RoleStudent}
	seeker   = model.Actor{ID: "seeker-1", Role: model.RoleJobSeeker}
)

func newTestService(t *testing.T) (*engine.Service, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	svc := engine.NewService(store.NewMemory(), nil, access.DefaultPolicy()).WithClock(clock.Now)
	return svc, clock
}

func paidJobDraft() *model.Opportunity {
	return &model.Opportunity{
		Kind:        lifecycle.KindJob,
		Title:       "Junior Go developer",
		Description: "Backend work on the booking API",
		Category:    "engineering",
		Compensation: model.Compensation{
			Exchange:   model.ExchangePaid,
			AmountKind: model.AmountRange,
			Amount:     "$45k-55k",
		},
	}
}

func barterNeedDraft() *model.Opportunity {
	return &model.Opportunity{
		Kind:        lifecycle.KindNeed,
		Title:       "Landing page copy",
		Description: "Trade copywriting for design help",
		Category:    "content",
		Compensation: model.Compensation{
			Exchange:      model.ExchangeBarter,
			SkillsOffered: []string{"Figma"},
		},
	}
}

func paidResponseDraft() *model.Response {
	return &model.Response{
		CoverMessage: "I have two years of Go experience",
		ProposedRate: "$30/h",
	}
}

// ── CreateOpportunity ──────────────────────────────────────────────────────

func TestCreateOpportunity_AssignsIdentityAndLifecycle(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	draft := paidJobDraft()
	draft.ID = "caller-chosen" // discarded
	draft.ResponseCount = 99   // discarded

	created, err := svc.CreateOpportunity(ctx, draft, founder)
	if err != nil {
		t.Fatalf("CreateOpportunity: %v", err)
	}
	if created.ID == "" || created.ID == "caller-chosen" {
		t.Errorf("engine must assign the id, got %q", created.ID)
	}
	if created.OwnerID != founder.ID {
		t.Errorf("OwnerID = %q, want %q", created.OwnerID, founder.ID)
	}
	if created.Status != lifecycle.OpportunityActive {
		t.Errorf("Status = %s, want active", created.Status)
	}
	if created.ResponseCount != 0 || created.ViewCount != 0 {
		t.Errorf("counters must start at zero, got %d/%d", created.ResponseCount, created.ViewCount)
	}
	if !created.CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, clock.Now())
	}
}

func TestCreateOpportunity_RoleOutsidePostingSet(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateOpportunity(context.Background(), paidJobDraft(), seeker)
	if !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden", err)
	}
}

func TestCreateOpportunity_ValidationMessagesSurfaced(t *testing.T) {
	svc, _ := newTestService(t)
	draft := paidJobDraft()
	draft.Title = ""
	draft.Compensation.Amount = ""

	_, err := svc.CreateOpportunity(context.Background(), draft, founder)
	var vErr *engine.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(vErr.Messages) != 2 {
		t.Errorf("got %d messages %v, want 2 (all problems at once)", len(vErr.Messages), vErr.Messages)
	}
}

// ── CreateResponse ─────────────────────────────────────────────────────────

func TestCreateResponse_HappyPath(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)

	r, err := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)
	if err != nil {
		t.Fatalf("CreateResponse: %v", err)
	}
	if r.Status != lifecycle.StatusPending {
		t.Errorf("initial status = %s, want pending", r.Status)
	}
	if r.RespondentID != student.ID {
		t.Errorf("RespondentID = %q, want %q", r.RespondentID, student.ID)
	}
	if !r.StatusUpdatedAt.Equal(r.AppliedAt) {
		t.Errorf("statusUpdatedAt %v should equal appliedAt %v on creation", r.StatusUpdatedAt, r.AppliedAt)
	}
	if !r.AppliedAt.Equal(clock.Now()) {
		t.Errorf("AppliedAt = %v, want %v", r.AppliedAt, clock.Now())
	}

	after, _ := svc.GetOpportunity(ctx, opp.ID)
	if after.ResponseCount != 1 {
		t.Errorf("ResponseCount = %d, want 1", after.ResponseCount)
	}
}

func TestCreateResponse_DuplicateRejectedCollectionUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)

	if _, err := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student); err != nil {
		t.Fatalf("first response: %v", err)
	}
	_, err := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)
	if !errors.Is(err, engine.ErrDuplicateResponse) {
		t.Fatalf("got %v, want ErrDuplicateResponse", err)
	}

	got, err := svc.ListResponses(ctx, opp.ID, filter.Criteria{}, founder)
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("collection length = %d, want 1 (unchanged by duplicate)", len(got))
	}
}

func TestCreateResponse_BarterWithoutOfferedSkills(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, barterNeedDraft(), founder)

	draft := &model.Response{CoverMessage: "happy to trade"}
	_, err := svc.CreateResponse(ctx, draft, opp.ID, student)

	var vErr *engine.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(vErr.Messages) == 0 {
		t.Fatal("message list must be non-empty")
	}
	if vErr.Messages[0] != "at least one offered skill is required for barter opportunities" {
		t.Errorf("got %q", vErr.Messages[0])
	}

	got, _ := svc.ListResponses(ctx, opp.ID, filter.Criteria{}, founder)
	if len(got) != 0 {
		t.Errorf("rejected draft must not be stored, got %d responses", len(got))
	}
}

func TestCreateResponse_SelfResponseForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	studentNeed := barterNeedDraft()
	opp, err := svc.CreateOpportunity(ctx, studentNeed, student)
	if err != nil {
		t.Fatalf("student posting a need should be allowed: %v", err)
	}

	draft := &model.Response{CoverMessage: "me again", OfferedSkills: []string{"Go"}}
	if _, err := svc.CreateResponse(ctx, draft, opp.ID, student); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("got %v, want ErrForbidden (self-response)", err)
	}
}

func TestCreateResponse_ClosedAndExpiredOpportunities(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	closed, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	if _, err := svc.TransitionOpportunityStatus(ctx, closed.ID, "closed", founder); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := svc.CreateResponse(ctx, paidResponseDraft(), closed.ID, student); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("closed: got %v, want ErrForbidden", err)
	}

	withDeadline := paidJobDraft()
	d := clock.Now().Add(time.Hour)
	withDeadline.Deadline = &d
	opp, _ := svc.CreateOpportunity(ctx, withDeadline, founder)

	clock.Advance(2 * time.Hour) // deadline passes, stored status still active
	if _, err := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("expired: got %v, want ErrForbidden", err)
	}
}

func TestCreateResponse_OpportunityNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateResponse(context.Background(), paidResponseDraft(), "missing", student)
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

// ── TransitionResponseStatus ───────────────────────────────────────────────

func TestTransitionResponseStatus_NonOwnerForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	r, _ := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)

	for _, actor := range []model.Actor{student, student2} {
		if _, err := svc.TransitionResponseStatus(ctx, r.ID, "shortlisted", nil, actor); !errors.Is(err, engine.ErrForbidden) {
			t.Errorf("actor %s: got %v, want ErrForbidden", actor.ID, err)
		}
	}
}

func TestTransitionResponseStatus_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.TransitionResponseStatus(context.Background(), "missing", "shortlisted", nil, founder)
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestTransitionResponseStatus_AcceptedInvalidForJobs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	r, _ := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)

	_, err := svc.TransitionResponseStatus(ctx, r.ID, "accepted", nil, founder)
	var sErr *engine.InvalidStatusError
	if !errors.As(err, &sErr) {
		t.Fatalf("got %v, want InvalidStatusError", err)
	}

	// The response is untouched.
	got, _ := svc.ListResponses(ctx, opp.ID, filter.Criteria{}, founder)
	if got[0].Status != lifecycle.StatusPending {
		t.Errorf("status = %s, want pending after rejected transition", got[0].Status)
	}
}

func TestTransitionResponseStatus_AcceptedValidForLeads(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, barterNeedDraft(), founder)
	draft := &model.Response{CoverMessage: "trade?", OfferedSkills: []string{"SEO"}}
	r, _ := svc.CreateResponse(ctx, draft, opp.ID, student)

	got, err := svc.TransitionResponseStatus(ctx, r.ID, "accepted", nil, founder)
	if err != nil {
		t.Fatalf("accepted on a lead should be legal: %v", err)
	}
	if got.Status != lifecycle.StatusAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
}

// Owner walks shortlisted → pending → accepted; after each step the stamp
// strictly increases and the status reflects the latest call.
func TestTransitionResponseStatus_SequenceStamps(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, barterNeedDraft(), founder)
	draft := &model.Response{CoverMessage: "trade?", OfferedSkills: []string{"SEO"}}
	r, _ := svc.CreateResponse(ctx, draft, opp.ID, student)

	prev := r.StatusUpdatedAt
	for _, step := range []string{"shortlisted", "pending", "accepted"} {
		clock.Advance(time.Minute)
		got, err := svc.TransitionResponseStatus(ctx, r.ID, step, nil, founder)
		if err != nil {
			t.Fatalf("transition to %s: %v", step, err)
		}
		if string(got.Status) != step {
			t.Errorf("status = %s, want %s", got.Status, step)
		}
		if !got.StatusUpdatedAt.After(prev) {
			t.Errorf("statusUpdatedAt %v must strictly increase past %v", got.StatusUpdatedAt, prev)
		}
		if got.StatusUpdatedAt.Before(got.AppliedAt) {
			t.Errorf("statusUpdatedAt %v must never precede appliedAt %v", got.StatusUpdatedAt, got.AppliedAt)
		}
		prev = got.StatusUpdatedAt
	}
}

func TestTransitionResponseStatus_SameStatusStillStamps(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	r, _ := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)

	clock.Advance(time.Minute)
	got, err := svc.TransitionResponseStatus(ctx, r.ID, "pending", nil, founder)
	if err != nil {
		t.Fatalf("same-status transition must succeed: %v", err)
	}
	if !got.StatusUpdatedAt.After(r.StatusUpdatedAt) {
		t.Error("same-status transition must still restamp statusUpdatedAt")
	}
}

func TestTransitionResponseStatus_NotesWrittenWithTransition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	r, _ := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)

	notes := "strong portfolio, call next week"
	got, err := svc.TransitionResponseStatus(ctx, r.ID, "shortlisted", &notes, founder)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got.Notes != notes {
		t.Errorf("notes = %q, want %q", got.Notes, notes)
	}
}

// ── UpdateResponseNotes ────────────────────────────────────────────────────

func TestUpdateResponseNotes_OwnerOnlyAndStamps(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	r, _ := svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)

	// The respondent owns the content fields, never the notes.
	if _, err := svc.UpdateResponseNotes(ctx, r.ID, "sneaky self-note", student); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("respondent notes edit: got %v, want ErrForbidden", err)
	}

	clock.Advance(time.Minute)
	got, err := svc.UpdateResponseNotes(ctx, r.ID, "good fit", founder)
	if err != nil {
		t.Fatalf("owner notes edit: %v", err)
	}
	if got.Notes != "good fit" {
		t.Errorf("notes = %q", got.Notes)
	}
	if got.Status != lifecycle.StatusPending {
		t.Errorf("notes-only update must not change status, got %s", got.Status)
	}
	if !got.StatusUpdatedAt.After(r.StatusUpdatedAt) {
		t.Error("notes-only update must stamp statusUpdatedAt")
	}
}

// ── Listings, counts, view counter ─────────────────────────────────────────

func TestListResponses_OwnerOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)

	if _, err := svc.ListResponses(ctx, opp.ID, filter.Criteria{}, student); !errors.Is(err, engine.ErrForbidden) {
		t.Errorf("non-owner listing: got %v, want ErrForbidden", err)
	}
}

func TestResponseCounts_TwoPending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)
	svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student)
	svc.CreateResponse(ctx, paidResponseDraft(), opp.ID, student2)

	counts, err := svc.ResponseCounts(ctx, opp.ID, founder)
	if err != nil {
		t.Fatalf("ResponseCounts: %v", err)
	}
	if counts["pending"] != 2 || counts["all"] != 2 || counts["shortlisted"] != 0 {
		t.Errorf("counts = %v, want pending:2 all:2 shortlisted:0", counts)
	}
	if _, ok := counts["accepted"]; ok {
		t.Error("job applications must not expose an accepted chip")
	}
}

func TestIncrementViewCount_EveryCallCounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)

	for i := 0; i < 3; i++ {
		if err := svc.IncrementViewCount(ctx, opp.ID); err != nil {
			t.Fatalf("increment %d: %v", i, err)
		}
	}
	got, _ := svc.GetOpportunity(ctx, opp.ID)
	if got.ViewCount != 3 {
		t.Errorf("ViewCount = %d, want 3", got.ViewCount)
	}
}

// ── Opportunity transitions ────────────────────────────────────────────────

func TestTransitionOpportunityStatus_PauseResumeClose(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)

	for _, step := range []string{"paused", "active", "closed"} {
		got, err := svc.TransitionOpportunityStatus(ctx, opp.ID, step, founder)
		if err != nil {
			t.Fatalf("transition to %s: %v", step, err)
		}
		if string(got.Status) != step {
			t.Errorf("status = %s, want %s", got.Status, step)
		}
	}

	// closed is terminal for owner transitions
	if _, err := svc.TransitionOpportunityStatus(ctx, opp.ID, "active", founder); err == nil {
		t.Error("reopening a closed opportunity should fail")
	}
}

func TestTransitionOpportunityStatus_ExpiredNeverRequestable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	opp, _ := svc.CreateOpportunity(ctx, paidJobDraft(), founder)

	_, err := svc.TransitionOpportunityStatus(ctx, opp.ID, "expired", founder)
	var sErr *engine.InvalidStatusError
	if !errors.As(err, &sErr) {
		t.Errorf("got %v, want InvalidStatusError (expired is derived)", err)
	}
}
