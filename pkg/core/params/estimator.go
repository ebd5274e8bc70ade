// Package params derives the valuation parameters (discount rate, terminal
// growth, bankruptcy probability) for one company from a FinancialSnapshot and
// an injected benchmark provider. Estimation is deterministic: the same
// snapshot and benchmark version always produce the same parameters.
package params

import (
	"math"

	"intrinsic_valuation/pkg/core/benchmark"
	"intrinsic_valuation/pkg/models"
)

// Solvency band thresholds on the composite score scale.
const (
	scoreHealthy    = 2.99
	scoreDistressed = 1.81

	baseProbHealthy    = 0.02
	baseProbDistressed = 0.35

	probFloor = 0.01
	probCeil  = 0.95
)

// ValuationParameters is the deterministic output of the estimator. The
// intermediate components are retained so the final valuation can expose a
// full audit trace.
type ValuationParameters struct {
	DiscountRate          float64 `json:"discount_rate"` // WACC
	TerminalGrowth        float64 `json:"terminal_growth"`
	BankruptcyProbability float64 `json:"bankruptcy_probability"`

	// Trace
	CostOfEquity       float64 `json:"cost_of_equity"`
	CostOfDebtAfterTax float64 `json:"cost_of_debt_after_tax"`
	EquityWeight       float64 `json:"equity_weight"`
	DebtWeight         float64 `json:"debt_weight"`
	SizePremium        float64 `json:"size_premium"`
	SolvencyScore      float64 `json:"solvency_score"`
	BaseBankruptcyProb float64 `json:"base_bankruptcy_prob"`
	BenchmarkVersion   string  `json:"benchmark_version"`
}

// Estimate derives ValuationParameters from a snapshot and benchmarks.
// Missing required fields abort with a DataInsufficiencyError; nothing is
// silently defaulted.
func Estimate(snap *models.FinancialSnapshot, provider benchmark.Provider) (*ValuationParameters, error) {
	if err := validate(snap); err != nil {
		return nil, err
	}

	bm, err := provider.Lookup(snap.Industry)
	if err != nil {
		return nil, err
	}

	we, wd, err := capitalWeights(snap)
	if err != nil {
		return nil, err
	}

	score := CompositeSolvencyScore(snap)

	// Cost of equity: CAPM plus a company-specific size premium.
	sizePrem := sizePremium(snap.MarketCap)
	ke := bm.RiskFreeRate + snap.Beta*bm.IndustryRiskPremium + sizePrem

	// Cost of debt: risk-free plus a credit spread keyed off the solvency
	// band, after tax.
	kd := (bm.RiskFreeRate + creditSpread(score)) * (1 - snap.TaxRate)

	wacc := ke*we + kd*wd

	g := terminalGrowth(snap.MarketCap, bm)

	baseProb := baseBankruptcyProbability(score)
	prob := adjustBankruptcyProbability(baseProb, snap, bm)

	return &ValuationParameters{
		DiscountRate:          wacc,
		TerminalGrowth:        g,
		BankruptcyProbability: prob,
		CostOfEquity:          ke,
		CostOfDebtAfterTax:    kd,
		EquityWeight:          we,
		DebtWeight:            wd,
		SizePremium:           sizePrem,
		SolvencyScore:         score,
		BaseBankruptcyProb:    baseProb,
		BenchmarkVersion:      provider.Version(),
	}, nil
}

func validate(snap *models.FinancialSnapshot) error {
	if snap == nil {
		return models.NewDataInsufficiency("", "snapshot")
	}
	checks := []struct {
		ok    bool
		field string
	}{
		{snap.Ticker != "", "ticker"},
		{snap.Revenue > 0, "revenue"},
		{snap.TotalAssets > 0, "total_assets"},
		{snap.TotalLiabilities > 0, "total_liabilities"},
		{snap.MarketCap > 0, "market_cap"},
		{snap.Beta > 0, "beta"},
		{snap.TaxRate >= 0 && snap.TaxRate < 1, "tax_rate"},
	}
	for _, c := range checks {
		if !c.ok {
			return models.NewDataInsufficiency(snap.Ticker, c.field)
		}
	}
	return nil
}

// capitalWeights returns the equity and debt weights, deriving them from
// market capitalization and total debt when the snapshot does not carry
// explicit weights. Weights that do not sum to one are a data defect.
func capitalWeights(snap *models.FinancialSnapshot) (we, wd float64, err error) {
	we, wd = snap.EquityWeight, snap.DebtWeight
	if we == 0 && wd == 0 {
		total := snap.MarketCap + snap.TotalDebt
		if total <= 0 {
			return 0, 0, models.NewDataInsufficiency(snap.Ticker, "capital_structure_weights")
		}
		we = snap.MarketCap / total
		wd = snap.TotalDebt / total
		return we, wd, nil
	}
	if we < 0 || wd < 0 || math.Abs(we+wd-1) > 1e-6 {
		return 0, 0, models.NewDataInsufficiency(snap.Ticker, "capital_structure_weights")
	}
	return we, wd, nil
}

// sizePremium is the company-specific risk adjustment added to the CAPM cost
// of equity. Smaller companies carry a larger premium.
func sizePremium(marketCap float64) float64 {
	switch {
	case marketCap < 2e9:
		return 0.03
	case marketCap < 10e9:
		return 0.02
	case marketCap < 50e9:
		return 0.01
	default:
		return 0
	}
}

// companySizeFactor dampens terminal growth for very large companies, which
// cannot outgrow the economy indefinitely.
func companySizeFactor(marketCap float64) float64 {
	switch {
	case marketCap < 2e9:
		return 1.10
	case marketCap < 10e9:
		return 1.05
	case marketCap < 100e9:
		return 1.00
	case marketCap < 500e9:
		return 0.90
	default:
		return 0.85
	}
}

// terminalGrowth combines GDP growth with industry maturity and company size,
// capped at the GDP growth figure itself.
func terminalGrowth(marketCap float64, bm benchmark.Benchmarks) float64 {
	g := bm.LongRunGDPGrowth * bm.IndustryMaturity * companySizeFactor(marketCap)
	if g > bm.LongRunGDPGrowth {
		g = bm.LongRunGDPGrowth
	}
	return g
}

// creditSpread maps the solvency band to a pre-tax spread over the risk-free
// rate. Distressed borrowers pay up.
func creditSpread(score float64) float64 {
	switch {
	case score >= scoreHealthy:
		return 0.010
	case score < scoreDistressed:
		return 0.050
	default:
		return 0.025
	}
}

// CompositeSolvencyScore computes the Altman-style composite from five
// weighted balance-sheet ratios:
//
//	1.2 * WorkingCapital/TotalAssets
//	1.4 * RetainedEarnings/TotalAssets
//	3.3 * OperatingEarnings/TotalAssets
//	0.6 * MarketCap/TotalLiabilities
//	1.0 * Revenue/TotalAssets
func CompositeSolvencyScore(snap *models.FinancialSnapshot) float64 {
	ta := snap.TotalAssets
	tl := snap.TotalLiabilities
	if ta == 0 || tl == 0 {
		return 0
	}
	return 1.2*(snap.WorkingCapital/ta) +
		1.4*(snap.RetainedEarnings/ta) +
		3.3*(snap.OperatingEarnings/ta) +
		0.6*(snap.MarketCap/tl) +
		1.0*(snap.Revenue/ta)
}

// baseBankruptcyProbability maps the composite score to a base probability.
// Healthy and distressed bands are flat; the gray zone interpolates linearly
// between them so the mapping stays monotone in the score.
func baseBankruptcyProbability(score float64) float64 {
	switch {
	case score >= scoreHealthy:
		return baseProbHealthy
	case score < scoreDistressed:
		return baseProbDistressed
	default:
		frac := (scoreHealthy - score) / (scoreHealthy - scoreDistressed)
		return baseProbHealthy + frac*(baseProbDistressed-baseProbHealthy)
	}
}

// adjustBankruptcyProbability applies the multiplicative adjustments: cash
// cushion, debt-maturity risk and industry stability, then clamps to the
// allowed range.
func adjustBankruptcyProbability(base float64, snap *models.FinancialSnapshot, bm benchmark.Benchmarks) float64 {
	cushion := 0.0
	if snap.TotalAssets > 0 {
		cushion = snap.Cash / snap.TotalAssets
	}
	if cushion > 1 {
		cushion = 1
	}
	if cushion < 0 {
		cushion = 0
	}

	maturityRisk := 1.0
	if snap.TotalDebt > 0 {
		stShare := snap.ShortTermDebt / snap.TotalDebt
		if stShare > 1 {
			stShare = 1
		}
		if stShare < 0 {
			stShare = 0
		}
		maturityRisk = 1 + 0.5*stShare
	}

	prob := base * (1 - cushion) * maturityRisk * (2 - bm.IndustryStability)
	return clamp(prob, probFloor, probCeil)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
