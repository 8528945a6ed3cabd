package catalog

// builtinDecisions is the shipped decision table. Costs and coefficients
// are balance tuning, not contracts; availability windows and risk flags
// are load-bearing for the round flow.
var builtinDecisions = []Decision{
	{
		ID: "grow_new_market", Name: "Enter Adjacent Market", Category: CategoryGrow,
		Cost: 500, AvailableRounds: []int{1, 2, 3},
		RevenueImpact: 0.060, COGSImpact: 0.030,
		DurationYears: 5, RampUpYears: 2, ImpactMagnitude: 4,
		GuidingPrinciple: "expand_the_core",
	},
	{
		ID: "grow_product_line", Name: "Launch Premium Product Line", Category: CategoryGrow,
		Cost: 350, AvailableRounds: []int{1, 2, 3, 4},
		RevenueImpact: 0.040, COGSImpact: 0.020,
		DurationYears: 4, RampUpYears: 1, ImpactMagnitude: 3,
		GuidingPrinciple: "expand_the_core",
	},
	{
		ID: "grow_acquisition", Name: "Acquire Regional Competitor", Category: CategoryGrow,
		Cost: 900, AvailableRounds: []int{2, 3, 4},
		RevenueImpact: 0.090, COGSImpact: 0.050, SGAImpact: 0.020,
		IsRisky: true, DurationYears: 5, RampUpYears: 2, ImpactMagnitude: 5,
		GuidingPrinciple: "bold_moves",
	},
	{
		ID: "grow_sales_force", Name: "Expand Direct Sales Force", Category: CategoryGrow,
		Cost: 250, AvailableRounds: []int{1, 2, 3, 4, 5},
		RevenueImpact: 0.025, SGAImpact: 0.015,
		DurationYears: 3, RampUpYears: 1, ImpactMagnitude: 2,
		GuidingPrinciple: "expand_the_core",
	},
	{
		ID: "grow_moonshot", Name: "Venture-Scale R&D Bet", Category: CategoryGrow,
		Cost: 700, AvailableRounds: []int{1, 2},
		RevenueImpact: 0.080,
		IsRisky: true, DurationYears: 5, RampUpYears: 3, ImpactMagnitude: 5,
		GuidingPrinciple: "bold_moves",
	},
	{
		ID: "grow_partnership", Name: "Strategic Channel Partnership", Category: CategoryGrow,
		Cost: 300, AvailableRounds: []int{3, 4, 5},
		RevenueImpact: 0.030, RecurringBenefit: 15,
		DurationYears: 3, RampUpYears: 1, ImpactMagnitude: 3,
		GuidingPrinciple: "expand_the_core",
	},
	{
		ID: "opt_automation", Name: "Automate Production Lines", Category: CategoryOptimize,
		Cost: 450, AvailableRounds: []int{1, 2, 3},
		COGSImpact: -0.040,
		DurationYears: 5, RampUpYears: 2, ImpactMagnitude: 4,
		GuidingPrinciple: "efficiency_first",
	},
	{
		ID: "opt_procurement", Name: "Renegotiate Supplier Contracts", Category: CategoryOptimize,
		Cost: 150, AvailableRounds: []int{1, 2, 3, 4, 5},
		COGSImpact: -0.020,
		DurationYears: 2, RampUpYears: 1, ImpactMagnitude: 2,
		GuidingPrinciple: "efficiency_first",
	},
	{
		ID: "opt_shared_services", Name: "Consolidate Back Office", Category: CategoryOptimize,
		Cost: 300, AvailableRounds: []int{2, 3, 4},
		SGAImpact: -0.030,
		DurationYears: 4, RampUpYears: 2, ImpactMagnitude: 3,
		GuidingPrinciple: "efficiency_first",
	},
	{
		ID: "opt_offshore", Name: "Offshore Manufacturing", Category: CategoryOptimize,
		Cost: 600, AvailableRounds: []int{2, 3},
		COGSImpact: -0.060, RevenueImpact: -0.010,
		IsRisky: true, DurationYears: 5, RampUpYears: 2, ImpactMagnitude: 4,
		GuidingPrinciple: "bold_moves",
	},
	{
		ID: "opt_asset_sale", Name: "Divest Legacy Plant", Category: CategoryOptimize,
		Cost: 100, AvailableRounds: []int{3, 4, 5},
		RecurringBenefit: 180, OneTimeBenefit: true, RevenueImpact: -0.015,
		DurationYears: 1, RampUpYears: 1, ImpactMagnitude: 2,
		GuidingPrinciple: "efficiency_first",
	},
	{
		ID: "sus_brand", Name: "Brand Trust Campaign", Category: CategorySustain,
		Cost: 200, AvailableRounds: []int{1, 2, 3, 4, 5},
		RevenueImpact: 0.015, SGAImpact: 0.010,
		DurationYears: 3, RampUpYears: 1, ImpactMagnitude: 2,
		GuidingPrinciple: "protect_the_franchise",
	},
	{
		ID: "sus_talent", Name: "Retention & Talent Program", Category: CategorySustain,
		Cost: 180, AvailableRounds: []int{1, 2, 3, 4, 5},
		SGAImpact: 0.008, RecurringBenefit: 12,
		DurationYears: 4, RampUpYears: 1, ImpactMagnitude: 2,
		GuidingPrinciple: "protect_the_franchise",
	},
	{
		ID: "sus_compliance", Name: "Regulatory Compliance Overhaul", Category: CategorySustain,
		Cost: 260, AvailableRounds: []int{1, 2},
		SGAImpact: 0.012, RecurringBenefit: 20,
		IsRisky: true, DurationYears: 5, RampUpYears: 1, ImpactMagnitude: 3,
		GuidingPrinciple: "protect_the_franchise",
	},
	{
		ID: "sus_green_retrofit", Name: "Green Energy Retrofit", Category: CategorySustain,
		Cost: 400, AvailableRounds: []int{2, 3, 4},
		COGSImpact: -0.015, RecurringBenefit: 25,
		IsRisky: true, DurationYears: 5, RampUpYears: 2, ImpactMagnitude: 3,
		GuidingPrinciple: "protect_the_franchise",
	},
}
