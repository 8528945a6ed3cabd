package sim

import (
	"fmt"
	mathrand "math/rand"

	"boardroom/internal/catalog"
)

// Resolver decides which one risky decision is destined to go wrong this
// game. The slot is drawn once at game creation and never re-rolled; every
// other risky decision always resolves positively. Resolved verdicts are
// cached per (team, decision) so round settlement and later reporting see
// the same answer.
type Resolver struct {
	order       []string
	activeIndex int
	verdicts    map[string]bool
}

// NewResolver draws the adverse slot uniformly over the risky decisions.
// The rand source is injected so rehearsal games can be replayed.
func NewResolver(rng *mathrand.Rand, risky []catalog.Decision) *Resolver {
	order := make([]string, len(risky))
	for i, d := range risky {
		order[i] = d.ID
	}
	idx := 0
	if len(order) > 0 {
		idx = rng.Intn(len(order))
	}
	return &Resolver{
		order:       order,
		activeIndex: idx,
		verdicts:    make(map[string]bool),
	}
}

// ActiveIndex reports which slot among the risky decisions fires.
func (r *Resolver) ActiveIndex() int { return r.activeIndex }

// Resolve returns whether the adverse outcome fires for this (team,
// decision) pair. Repeated calls return the cached verdict.
func (r *Resolver) Resolve(teamID int, decisionID string) bool {
	key := fmt.Sprintf("%d:%s", teamID, decisionID)
	if v, ok := r.verdicts[key]; ok {
		return v
	}
	triggered := len(r.order) > 0 && r.order[r.activeIndex] == decisionID
	r.verdicts[key] = triggered
	return triggered
}

// Verdicts returns a copy of every resolved (team, decision) verdict,
// keyed "teamID:decisionID".
func (r *Resolver) Verdicts() map[string]bool {
	out := make(map[string]bool, len(r.verdicts))
	for k, v := range r.verdicts {
		out[k] = v
	}
	return out
}
