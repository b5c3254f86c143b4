// Package reconcile wires up the cron job that periodically re-derives the
// cached response counters from the response collection.
//
// The cached responseCount on an opportunity is written optimistically at
// submission time and is only a display aggregate, so it may drift behind
// the truth. The sweep raises any counter that fell behind; it never lowers
// one, because the counter is monotonically non-decreasing.
package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"skillbridge/exchange-service/internal/model"
	"skillbridge/exchange-service/internal/store"
)

// Sweeper wraps robfig/cron and manages the reconcile loop.
type Sweeper struct {
	cron  *cron.Cron
	store store.Store
	spec  string // cron spec, e.g. "@every 15m"
}

// New creates a Sweeper that fires every intervalMinutes minutes.
func New(st store.Store, intervalMinutes int) *Sweeper {
	return &Sweeper{
		cron:  cron.New(cron.WithLogger(cron.DefaultLogger)),
		store: st,
		spec:  fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so counters are correct without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[reconcile] Cron started with spec %s", s.spec)

	go s.Sweep(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	log.Println("[reconcile] Cron stopped")
}

// Sweep recomputes the response counter for every opportunity once.
func (s *Sweeper) Sweep(ctx context.Context) {
	opportunities, err := s.store.ListOpportunities(ctx)
	if err != nil {
		log.Printf("[reconcile] ListOpportunities error: %v", err)
		return
	}

	var fixed int
	for _, opp := range opportunities {
		responses, err := s.store.ListResponsesByOpportunity(ctx, opp.ID)
		if err != nil {
			log.Printf("[reconcile] responses for %s: %v", opp.ID, err)
			continue
		}
		actual := len(responses)
		if actual <= opp.ResponseCount {
			continue
		}

		if _, err := s.store.UpdateOpportunity(ctx, opp.ID, func(o *model.Opportunity) error {
			if actual > o.ResponseCount {
				o.ResponseCount = actual
			}
			return nil
		}); err != nil {
			log.Printf("[reconcile] update %s: %v", opp.ID, err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("[reconcile] Sweep complete — corrected %d counter(s)", fixed)
	}
}
