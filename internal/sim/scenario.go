package sim

import "boardroom/internal/catalog"

type ScenarioType string

const (
	ScenarioBusinessAsUsual ScenarioType = "business_as_usual"
	ScenarioCostPressure    ScenarioType = "cost_pressure"
	ScenarioRecession       ScenarioType = "recession"
	ScenarioRecovery        ScenarioType = "recovery"
)

// Scenario is the environment for one round. Multipliers scale the impact
// coefficients of decisions in the matching category, uniformly across
// teams. Event fields are facilitator-injected flavor.
type Scenario struct {
	Round              int          `json:"round"`
	Type               ScenarioType `json:"type"`
	Narrative          string       `json:"narrative"`
	GrowMultiplier     float64      `json:"grow_multiplier"`
	OptimizeMultiplier float64      `json:"optimize_multiplier"`
	SustainMultiplier  float64      `json:"sustain_multiplier"`
	EventTriggered     bool         `json:"event_triggered"`
	EventDescription   string       `json:"event_description,omitempty"`
}

func (s Scenario) MultiplierFor(cat catalog.Category) float64 {
	switch cat {
	case catalog.CategoryGrow:
		return s.GrowMultiplier
	case catalog.CategoryOptimize:
		return s.OptimizeMultiplier
	case catalog.CategorySustain:
		return s.SustainMultiplier
	}
	return 1
}

var scenarioSchedule = map[int]Scenario{
	1: {
		Type:      ScenarioBusinessAsUsual,
		Narrative: "Stable demand. Markets reward disciplined execution.",
		GrowMultiplier: 1.0, OptimizeMultiplier: 1.0, SustainMultiplier: 1.0,
	},
	2: {
		Type:      ScenarioRecession,
		Narrative: "Demand contracts sharply. Expansion bets underdeliver while efficiency pays off.",
		GrowMultiplier: 0.85, OptimizeMultiplier: 1.15, SustainMultiplier: 1.05,
	},
	3: {
		Type:      ScenarioCostPressure,
		Narrative: "Input costs spike. Growth returns are squeezed; cost programs overdeliver.",
		GrowMultiplier: 0.7, OptimizeMultiplier: 1.25, SustainMultiplier: 1.0,
	},
	4: {
		Type:      ScenarioRecovery,
		Narrative: "The cycle turns. Growth investments compound ahead of plan.",
		GrowMultiplier: 1.2, OptimizeMultiplier: 0.9, SustainMultiplier: 1.0,
	},
	5: {
		Type:      ScenarioBusinessAsUsual,
		Narrative: "A normal year to close out the plan. Fundamentals decide the ranking.",
		GrowMultiplier: 1.0, OptimizeMultiplier: 1.0, SustainMultiplier: 1.0,
	},
}

// ScenarioForRound returns a fresh copy of the round's scenario. Rounds
// outside the schedule (forward-projection years) get a neutral scenario.
func ScenarioForRound(round int) Scenario {
	s, ok := scenarioSchedule[round]
	if !ok {
		s = Scenario{
			Type:      ScenarioBusinessAsUsual,
			Narrative: "Projection year: no new decisions, existing programs run out.",
			GrowMultiplier: 1.0, OptimizeMultiplier: 1.0, SustainMultiplier: 1.0,
		}
	}
	s.Round = round
	return s
}
