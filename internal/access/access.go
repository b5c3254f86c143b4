// Package access consolidates every role and ownership check the engine
// performs into one declarative capability table.
//
// The predicates are pure: they look only at the opportunity, the actor and
// (for expiry) the supplied instant. They are evaluated before every
// mutating operation, so a denial never has partial writes to roll back.
package access

import (
	"time"

	"skillbridge/exchange-service/internal/lifecycle"
	"skillbridge/exchange-service/internal/model"
)

// Policy maps opportunity kinds to the role sets allowed to post and to
// respond. The allowed sets differ per kind — students may post needs but
// not jobs — so the table is configuration, not hard-coded per call site.
type Policy struct {
	Posting    map[lifecycle.Kind][]model.Role
	Responding map[lifecycle.Kind][]model.Role
}

// DefaultPolicy returns the capability table shipped with the marketplace.
func DefaultPolicy() Policy {
	return Policy{
		Posting: map[lifecycle.Kind][]model.Role{
			lifecycle.KindJob:  {model.RoleFounder, model.RoleServiceProvider},
			lifecycle.KindNeed: {model.RoleFounder, model.RoleStudent, model.RoleServiceProvider},
		},
		Responding: map[lifecycle.Kind][]model.Role{
			lifecycle.KindJob:  {model.RoleStudent, model.RoleJobSeeker},
			lifecycle.KindNeed: {model.RoleStudent, model.RoleServiceProvider, model.RoleMentor},
		},
	}
}

// CanCreateOpportunity reports whether the actor's role may post the given
// opportunity kind.
func (p Policy) CanCreateOpportunity(kind lifecycle.Kind, actor model.Actor) bool {
	return roleIn(actor.Role, p.Posting[kind])
}

// CanRespond reports whether the actor may submit a response against opp at
// the given instant: the role must be in the responding set, the posting
// must be effectively active (not paused, closed or past its deadline), and
// self-response is forbidden.
func (p Policy) CanRespond(opp *model.Opportunity, actor model.Actor, now time.Time) bool {
	if !roleIn(actor.Role, p.Responding[opp.Kind]) {
		return false
	}
	if lifecycle.EffectiveStatus(opp.Status, opp.Deadline, now) != lifecycle.OpportunityActive {
		return false
	}
	return actor.ID != opp.OwnerID
}

// CanManage reports whether the actor owns opp. Ownership is strict
// identity: there is no admin override at this layer.
func CanManage(opp *model.Opportunity, actor model.Actor) bool {
	return actor.ID == opp.OwnerID
}

func roleIn(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
