// Package valuation turns estimated parameters and a cash-flow forecast into
// an intrinsic-value estimate via a two-stage DCF, plus the sensitivity
// analysis around it. Computation is pure: the same inputs always produce the
// same result, and every intermediate figure is retained for audit.
package valuation

import (
	"math"

	"intrinsic_valuation/pkg/core/forecast"
	"intrinsic_valuation/pkg/core/params"
	"intrinsic_valuation/pkg/models"
)

// Input encapsulates all inputs required for one DCF valuation.
type Input struct {
	Params            *params.ValuationParameters
	Forecast          *forecast.Series
	NetDebt           float64
	SharesOutstanding float64
	CurrentPrice      float64
}

// Result holds the valuation outputs together with the full trace used to
// produce them. No intermediate value is rounded before the final figures.
type Result struct {
	Ticker string `json:"ticker"`

	EnterpriseValue  float64 `json:"enterprise_value"`
	EquityValue      float64 `json:"equity_value"`
	PerShare         float64 `json:"per_share"`
	SurvivalAdjusted float64 `json:"survival_adjusted"` // PerShare * (1 - bankruptcy probability)
	CurrentPrice     float64 `json:"current_price"`
	Upside           float64 `json:"upside"` // (SurvivalAdjusted - CurrentPrice) / CurrentPrice

	// Trace
	PVExplicit      float64   `json:"pv_explicit"`
	PVTerminal      float64   `json:"pv_terminal"`
	TerminalValue   float64   `json:"terminal_value"`
	YearlyPV        []float64 `json:"yearly_pv"`
	DiscountFactors []float64 `json:"discount_factors"`

	Params   *params.ValuationParameters `json:"params"`
	Forecast *forecast.Series            `json:"forecast"`
}

// Compute performs the two-stage DCF. A discount rate at or below the
// terminal growth rate makes the perpetuity formula diverge; that aborts
// with a DivergentValuationError rather than clamping.
func Compute(in Input) (*Result, error) {
	r := in.Params.DiscountRate
	g := in.Params.TerminalGrowth

	if r <= g {
		return nil, &models.DivergentValuationError{DiscountRate: r, TerminalGrowth: g}
	}
	if in.SharesOutstanding <= 0 {
		return nil, models.NewDataInsufficiency(in.Forecast.Ticker, "shares_outstanding")
	}
	if in.CurrentPrice <= 0 {
		return nil, models.NewDataInsufficiency(in.Forecast.Ticker, "current_price")
	}
	if len(in.Forecast.Values) == 0 {
		return nil, models.NewDataInsufficiency(in.Forecast.Ticker, "forecast_values")
	}

	n := len(in.Forecast.Values)
	yearlyPV := make([]float64, n)
	factors := make([]float64, n)

	var pvExplicit float64
	for t, fcf := range in.Forecast.Values {
		factor := math.Pow(1+r, float64(t+1))
		factors[t] = factor
		yearlyPV[t] = fcf / factor
		pvExplicit += yearlyPV[t]
	}

	// Gordon growth on the terminal-period FCF, discounted back over the
	// explicit horizon.
	tv := in.Forecast.Terminal * (1 + g) / (r - g)
	pvTerminal := tv / factors[n-1]

	ev := pvExplicit + pvTerminal
	equity := ev - in.NetDebt
	perShare := equity / in.SharesOutstanding
	survival := perShare * (1 - in.Params.BankruptcyProbability)
	upside := (survival - in.CurrentPrice) / in.CurrentPrice

	return &Result{
		Ticker:           in.Forecast.Ticker,
		EnterpriseValue:  ev,
		EquityValue:      equity,
		PerShare:         perShare,
		SurvivalAdjusted: survival,
		CurrentPrice:     in.CurrentPrice,
		Upside:           upside,
		PVExplicit:       pvExplicit,
		PVTerminal:       pvTerminal,
		TerminalValue:    tv,
		YearlyPV:         yearlyPV,
		DiscountFactors:  factors,
		Params:           in.Params,
		Forecast:         in.Forecast,
	}, nil
}
