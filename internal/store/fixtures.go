package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"skillbridge/exchange-service/internal/lifecycle"
	"skillbridge/exchange-service/internal/model"
)

// Predefined pools keep the generated marketplace coherent across runs.
var (
	fixtureCategories = []string{
		"design", "engineering", "marketing", "operations",
		"data", "content", "legal", "finance",
	}

	fixtureSkills = []string{
		"Go", "React", "Figma", "SQL", "Copywriting", "SEO",
		"Data Analysis", "Branding", "iOS", "DevOps", "Illustration",
		"Video Editing", "Public Speaking", "Bookkeeping",
	}

	fixtureUrgencies = []model.Urgency{
		model.UrgencyLow, model.UrgencyMedium, model.UrgencyHigh,
	}

	fixtureLocations = []model.LocationType{
		model.LocationRemote, model.LocationOnsite, model.LocationHybrid,
	}
)

// SeedDemo fills an empty Memory store with a coherent demo marketplace:
// a handful of posters, a mixed page of jobs and needs, and a few pending
// responses against each. Seeded with a fixed value so the demo data is the
// same on every boot.
func SeedDemo(ctx context.Context, m *Memory, now time.Time) error {
	existing, err := m.ListOpportunities(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Println("[store] demo data already present, skipping seed")
		return nil
	}

	faker := gofakeit.New(11)

	type poster struct {
		id   string
		name string
		role model.Role
	}
	posters := []poster{
		{id: "demo-founder-1", name: faker.Company(), role: model.RoleFounder},
		{id: "demo-founder-2", name: faker.Company(), role: model.RoleFounder},
		{id: "demo-provider-1", name: faker.Name(), role: model.RoleServiceProvider},
		{id: "demo-student-1", name: faker.Name(), role: model.RoleStudent},
	}

	respondents := []string{"demo-seeker-1", "demo-seeker-2", "demo-student-2"}

	for i := 0; i < 12; i++ {
		p := posters[i%len(posters)]
		kind := lifecycle.KindJob
		if i%3 != 0 || p.role == model.RoleStudent {
			kind = lifecycle.KindNeed
		}

		comp := model.Compensation{Exchange: model.ExchangePaid}
		switch i % 3 {
		case 0:
			comp.AmountKind = model.AmountFixed
			comp.Amount = fmt.Sprintf("$%d", faker.Number(500, 5000))
		case 1:
			comp.AmountKind = model.AmountNegotiable
		case 2:
			comp.Exchange = model.ExchangeBarter
			comp.SkillsOffered = pickSkills(faker, 2)
		}

		var deadline *time.Time
		if i%4 == 0 {
			d := now.AddDate(0, 0, faker.Number(3, 30))
			deadline = &d
		}

		opp := &model.Opportunity{
			ID:             uuid.NewString(),
			OwnerID:        p.id,
			PosterName:     p.name,
			Kind:           kind,
			Title:          faker.JobTitle(),
			Description:    faker.Paragraph(1, 3, 12, " "),
			Category:       fixtureCategories[faker.Number(0, len(fixtureCategories)-1)],
			RequiredSkills: pickSkills(faker, 3),
			Compensation:   comp,
			Urgency:        fixtureUrgencies[faker.Number(0, len(fixtureUrgencies)-1)],
			LocationType:   fixtureLocations[faker.Number(0, len(fixtureLocations)-1)],
			Location:       faker.City(),
			Status:         lifecycle.OpportunityActive,
			Deadline:       deadline,
			CreatedAt:      now.Add(-time.Duration(faker.Number(1, 240)) * time.Hour),
			UpdatedAt:      now,
		}
		if err := m.CreateOpportunity(ctx, opp); err != nil {
			return err
		}

		for j := 0; j < i%3; j++ {
			resp := &model.Response{
				ID:            uuid.NewString(),
				OpportunityID: opp.ID,
				RespondentID:  respondents[j%len(respondents)],
				CoverMessage:  faker.Sentence(14),
				Experience:    faker.Sentence(10),
				Availability:  "weekdays",
				Status:        lifecycle.StatusPending,
				AppliedAt:     now.Add(-time.Duration(faker.Number(1, 48)) * time.Hour),
			}
			resp.StatusUpdatedAt = resp.AppliedAt
			if comp.Exchange == model.ExchangeBarter {
				resp.OfferedSkills = pickSkills(faker, 2)
			} else {
				resp.ProposedRate = fmt.Sprintf("$%d/h", faker.Number(20, 120))
			}
			if err := m.CreateResponse(ctx, resp); err != nil {
				return err
			}
			if _, err := m.UpdateOpportunity(ctx, opp.ID, func(o *model.Opportunity) error {
				o.ResponseCount++
				return nil
			}); err != nil {
				return err
			}
		}
	}

	log.Println("[store] demo marketplace seeded")
	return nil
}

func pickSkills(faker *gofakeit.Faker, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(out) < n {
		s := fixtureSkills[faker.Number(0, len(fixtureSkills)-1)]
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
