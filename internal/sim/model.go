package sim

import "boardroom/internal/catalog"

// ActiveDecision is a catalog decision a team has committed to, with the
// round it was taken in. Impact phases in over RampUpYears and stops after
// DurationYears.
type ActiveDecision struct {
	Decision   catalog.Decision `json:"decision"`
	RoundTaken int              `json:"round_taken"`
}

// RiskVerdicts maps decision id to whether the pre-seeded adverse outcome
// fired for this team. Only risky decisions appear here.
type RiskVerdicts map[string]bool

// riskWritedownFraction of a triggered decision's cost is charged to cash
// in the round it was taken, on top of losing the upside.
const riskWritedownFraction = 0.5

// magnitudeScale converts the ordinal 1..5 impact magnitude into a
// coefficient multiplier, with 3 as neutral.
func magnitudeScale(magnitude int) float64 {
	return float64(magnitude) / 3.0
}

// ApplyRound advances a team's statement by one period. Pure: no fields of
// prior are mutated, the same inputs always produce the same output.
//
// beginningCash is the team's cash after this round's decision spend was
// reserved; settlement passes the live balance, projections pass the prior
// period's ending cash.
func ApplyRound(prior Metrics, round int, beginningCash float64, active []ActiveDecision, scn Scenario, risk RiskVerdicts) Metrics {
	// Organic drift first; decision impacts layer on top of it.
	revenue := prior.Revenue * (1 + baselineRevenueDrift)
	cogs := prior.COGS * (1 + baselineCostDrift)
	sga := prior.SGA * (1 + baselineCostDrift)

	var sumRev, sumCOGS, sumSGA float64
	var recurring, oneTimeCash, writedowns, spendThisRound float64

	for _, ad := range active {
		d := ad.Decision
		age := round - ad.RoundTaken + 1
		if age < 1 || age > d.DurationYears {
			continue
		}
		if ad.RoundTaken == round {
			spendThisRound += d.Cost
		}

		revImpact := d.RevenueImpact
		cogsImpact := d.COGSImpact
		sgaImpact := d.SGAImpact
		benefit := d.RecurringBenefit

		if d.IsRisky && risk[d.ID] {
			// Adverse outcome: the upside is gone, the downside stays,
			// and the round it was taken half the cost is written off.
			if revImpact > 0 {
				revImpact = 0
			}
			if cogsImpact < 0 {
				cogsImpact = 0
			}
			if sgaImpact < 0 {
				sgaImpact = 0
			}
			benefit = 0
			if age == 1 {
				writedowns += d.Cost * riskWritedownFraction
			}
		}

		ramp := float64(age) / float64(d.RampUpYears)
		if ramp > 1 {
			ramp = 1
		}
		scale := ramp * magnitudeScale(d.ImpactMagnitude) * scn.MultiplierFor(d.Category)

		sumRev += revImpact * scale
		sumCOGS += cogsImpact * scale
		sumSGA += sgaImpact * scale

		switch {
		case benefit == 0:
		case d.OneTimeBenefit:
			if age == 1 {
				oneTimeCash += benefit
			}
		default:
			recurring += benefit * ramp
		}
	}

	next := prior
	next.Revenue = revenue * (1 + sumRev)
	next.COGS = cogs * (1 + sumCOGS)
	next.SGA = sga * (1 + sumSGA)
	next.EBITDA = next.Revenue + next.COGS + next.SGA + recurring
	next.EBIT = next.EBITDA + next.Depreciation + next.Amortization
	next.CashTaxes = cashTaxes(next.EBIT)
	next.OperatingFCF = operatingFCF(next.EBIT, next.Depreciation, next.Amortization, next.Capex)

	next.BeginningCash = beginningCash
	next.EndingCash = beginningCash + next.OperatingFCF + oneTimeCash - writedowns

	next.InvestedCapital = prior.InvestedCapital + spendThisRound
	next.NPV = npv(next.OperatingFCF)
	next.EquityValue = next.NPV - netDebt - minorityInterest
	next.SharePrice = next.EquityValue / next.SharesOutstanding
	next.recalcRatios()
	return next
}
