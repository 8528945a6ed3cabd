package sim

// ProjectForward simulates additional unplayed years after the last round:
// no new decisions, neutral scenario, existing ramps compounding until
// their durations run out. Returns one Metrics per projected year.
func ProjectForward(last Metrics, lastRound int, active []ActiveDecision, risk RiskVerdicts, years int) []Metrics {
	out := make([]Metrics, 0, years)
	current := last
	for i := 1; i <= years; i++ {
		round := lastRound + i
		current = ApplyRound(current, round, current.EndingCash, active, ScenarioForRound(round), risk)
		out = append(out, current)
	}
	return out
}
