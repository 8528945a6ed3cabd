package sim

// Model constants. Tuning values, not contracts; the structural identities
// (EBITDA/EBIT composition, ratio derivations) are what tests pin down.
const (
	TaxRate        = 0.25
	WACC           = 0.09
	TerminalGrowth = 0.02

	// Organic drift applied every year before decision impacts.
	baselineRevenueDrift = 0.02
	baselineCostDrift    = 0.02

	StartingCash     = 1200.0
	startingRevenue  = 1000.0
	startingCOGS     = -400.0
	startingSGA      = -250.0
	startingDep      = -60.0
	startingAmort    = -15.0
	startingCapex    = -80.0
	startingInvested = 1500.0

	SharesOutstanding = 100.0
	netDebt           = 250.0
	minorityInterest  = 20.0
)

// Metrics is one team's financial statement for one period. Expense lines
// (COGS, SGA, D&A, capex) are stored negative. Ratio fields are derived
// from the other lines and recomputed on every change, never carried over.
type Metrics struct {
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	SGA          float64 `json:"sga"`
	EBITDA       float64 `json:"ebitda"`
	Depreciation float64 `json:"depreciation"`
	Amortization float64 `json:"amortization"`
	EBIT         float64 `json:"ebit"`

	CashTaxes     float64 `json:"cash_taxes"`
	Capex         float64 `json:"capex"`
	OperatingFCF  float64 `json:"operating_fcf"`
	BeginningCash float64 `json:"beginning_cash"`
	EndingCash    float64 `json:"ending_cash"`

	NPV               float64 `json:"npv"`
	EquityValue       float64 `json:"equity_value"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	SharePrice        float64 `json:"share_price"`
	InvestedCapital   float64 `json:"invested_capital"`

	EBITDAMargin   float64 `json:"ebitda_margin"`
	EBITMargin     float64 `json:"ebit_margin"`
	ROIC           float64 `json:"roic"`
	COGSToRevenue  float64 `json:"cogs_to_revenue"`
	SGAToRevenue   float64 `json:"sga_to_revenue"`
	CapexToRevenue float64 `json:"capex_to_revenue"`
}

// Baseline returns the starting statement every team begins from.
func Baseline() Metrics {
	m := Metrics{
		Revenue:           startingRevenue,
		COGS:              startingCOGS,
		SGA:               startingSGA,
		Depreciation:      startingDep,
		Amortization:      startingAmort,
		Capex:             startingCapex,
		BeginningCash:     StartingCash,
		EndingCash:        StartingCash,
		SharesOutstanding: SharesOutstanding,
		InvestedCapital:   startingInvested,
	}
	m.EBITDA = m.Revenue + m.COGS + m.SGA
	m.EBIT = m.EBITDA + m.Depreciation + m.Amortization
	m.CashTaxes = cashTaxes(m.EBIT)
	m.OperatingFCF = operatingFCF(m.EBIT, m.Depreciation, m.Amortization, m.Capex)
	m.NPV = npv(m.OperatingFCF)
	m.EquityValue = m.NPV - netDebt - minorityInterest
	m.SharePrice = m.EquityValue / m.SharesOutstanding
	m.recalcRatios()
	return m
}

func cashTaxes(ebit float64) float64 {
	if ebit <= 0 {
		return 0
	}
	return -TaxRate * ebit
}

func operatingFCF(ebit, dep, amort, capex float64) float64 {
	afterTax := ebit
	if ebit > 0 {
		afterTax = ebit * (1 - TaxRate)
	}
	return afterTax + abs(dep+amort) - abs(capex)
}

// npv values the business as a growing perpetuity of operating free cash
// flow. Negative cash flow yields negative value; no flooring.
func npv(fcf float64) float64 {
	return fcf * (1 + TerminalGrowth) / (WACC - TerminalGrowth)
}

// recalcRatios rederives every ratio from the statement lines. Call after
// any mutation; ratios are never trusted across recomputations.
func (m *Metrics) recalcRatios() {
	if m.Revenue != 0 {
		m.EBITDAMargin = m.EBITDA / m.Revenue
		m.EBITMargin = m.EBIT / m.Revenue
		m.COGSToRevenue = abs(m.COGS) / m.Revenue
		m.SGAToRevenue = abs(m.SGA) / m.Revenue
		m.CapexToRevenue = abs(m.Capex) / m.Revenue
	} else {
		m.EBITDAMargin, m.EBITMargin = 0, 0
		m.COGSToRevenue, m.SGAToRevenue, m.CapexToRevenue = 0, 0, 0
	}
	if m.InvestedCapital != 0 {
		nopat := m.EBIT
		if m.EBIT > 0 {
			nopat = m.EBIT * (1 - TaxRate)
		}
		m.ROIC = nopat / m.InvestedCapital
	} else {
		m.ROIC = 0
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
