package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// MaxRounds is the number of playable rounds in a game. Decision
// availability windows must fall inside 1..MaxRounds.
const MaxRounds = 5

type Category string

const (
	CategoryGrow     Category = "grow"
	CategoryOptimize Category = "optimize"
	CategorySustain  Category = "sustain"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGrow, CategoryOptimize, CategorySustain:
		return true
	}
	return false
}

// Decision is an immutable catalog entry. Impact coefficients are
// fractional multipliers applied to the matching income-statement line;
// RecurringBenefit is an absolute currency delta per year.
type Decision struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         Category `json:"category"`
	Cost             float64  `json:"cost"`
	AvailableRounds  []int    `json:"available_rounds"`
	RevenueImpact    float64  `json:"revenue_impact"`
	COGSImpact       float64  `json:"cogs_impact"`
	SGAImpact        float64  `json:"sga_impact"`
	RecurringBenefit float64  `json:"recurring_benefit"`
	OneTimeBenefit   bool     `json:"one_time_benefit"`
	IsRisky          bool     `json:"is_risky"`
	DurationYears    int      `json:"duration_years"`
	RampUpYears      int      `json:"ramp_up_years"`
	ImpactMagnitude  int      `json:"impact_magnitude"`
	GuidingPrinciple string   `json:"guiding_principle"`
}

func (d Decision) AvailableIn(round int) bool {
	for _, r := range d.AvailableRounds {
		if r == round {
			return true
		}
	}
	return false
}

// ValidationError describes one defect found while loading the catalog.
// The loader accumulates these instead of failing on the first problem so
// the host process can log every defect and decide whether to start.
type ValidationError struct {
	DecisionID string
	Field      string
	Reason     string
}

func (e ValidationError) Error() string {
	if e.DecisionID == "" {
		return fmt.Sprintf("catalog: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("catalog: decision %s: %s: %s", e.DecisionID, e.Field, e.Reason)
}

// Catalog is a read-only lookup over the decision table. Loaded once at
// process start, never mutated afterwards.
type Catalog struct {
	decisions []Decision
	byID      map[string]Decision
}

// New validates and indexes the given decisions. The returned error list
// is empty for a well-formed table; a non-empty list means the catalog is
// degraded and the caller decides whether to proceed.
func New(decisions []Decision) (*Catalog, []ValidationError) {
	var errs []ValidationError
	byID := make(map[string]Decision, len(decisions))
	ordered := make([]Decision, 0, len(decisions))
	for _, d := range decisions {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			errs = append(errs, ValidationError{Field: "id", Reason: "empty decision id"})
			continue
		}
		if _, dup := byID[id]; dup {
			errs = append(errs, ValidationError{DecisionID: id, Field: "id", Reason: "duplicate decision id"})
			continue
		}
		if !d.Category.Valid() {
			errs = append(errs, ValidationError{DecisionID: id, Field: "category", Reason: fmt.Sprintf("unknown category %q", d.Category)})
		}
		if d.Cost <= 0 {
			errs = append(errs, ValidationError{DecisionID: id, Field: "cost", Reason: "cost must be > 0"})
		}
		if len(d.AvailableRounds) == 0 {
			errs = append(errs, ValidationError{DecisionID: id, Field: "available_rounds", Reason: "must not be empty"})
		}
		for _, r := range d.AvailableRounds {
			if r < 1 || r > MaxRounds {
				errs = append(errs, ValidationError{DecisionID: id, Field: "available_rounds", Reason: fmt.Sprintf("round %d outside 1..%d", r, MaxRounds)})
			}
		}
		if d.ImpactMagnitude < 1 || d.ImpactMagnitude > 5 {
			errs = append(errs, ValidationError{DecisionID: id, Field: "impact_magnitude", Reason: "must be in 1..5"})
		}
		if d.DurationYears < 1 {
			errs = append(errs, ValidationError{DecisionID: id, Field: "duration_years", Reason: "must be >= 1"})
		}
		if d.RampUpYears < 1 {
			errs = append(errs, ValidationError{DecisionID: id, Field: "ramp_up_years", Reason: "must be >= 1"})
		}
		byID[id] = d
		ordered = append(ordered, d)
	}
	return &Catalog{decisions: ordered, byID: byID}, errs
}

// Load builds the catalog from the built-in decision table.
func Load() (*Catalog, []ValidationError) {
	return New(builtinDecisions)
}

// ForRound returns the decisions available in the given round, in table
// order. The slice is a copy; callers may hold it across rounds.
func (c *Catalog) ForRound(round int) []Decision {
	out := make([]Decision, 0, len(c.decisions))
	for _, d := range c.decisions {
		if d.AvailableIn(round) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) ByID(id string) (Decision, bool) {
	d, ok := c.byID[strings.TrimSpace(id)]
	return d, ok
}

// Risky returns every risky decision in order of first appearance in the
// table. This enumeration order anchors which slot the pre-seeded adverse
// outcome lands on, so it must be stable.
func (c *Catalog) Risky() []Decision {
	out := make([]Decision, 0, 5)
	for _, d := range c.decisions {
		if d.IsRisky {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) Len() int { return len(c.decisions) }

// All returns every decision in table order.
func (c *Catalog) All() []Decision {
	out := make([]Decision, len(c.decisions))
	copy(out, c.decisions)
	return out
}

// Categories returns the distinct categories present, sorted.
func (c *Catalog) Categories() []Category {
	seen := map[Category]bool{}
	for _, d := range c.decisions {
		seen[d.Category] = true
	}
	out := make([]Category, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
