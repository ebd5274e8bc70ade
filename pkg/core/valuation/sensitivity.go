package valuation

import (
	"errors"

	"intrinsic_valuation/pkg/models"
)

// Parameter identifies which valuation parameter a perturbation shifts.
type Parameter string

const (
	ParamDiscountRate   Parameter = "discount_rate"
	ParamTerminalGrowth Parameter = "terminal_growth"
)

// Perturbation is one (parameter, delta) shift, in absolute rate terms
// (e.g. +0.01 = +1pp).
type Perturbation struct {
	Parameter Parameter
	Delta     float64
}

// DefaultPerturbations covers +/-1% and +/-2% on both rate parameters.
func DefaultPerturbations() []Perturbation {
	deltas := []float64{-0.02, -0.01, 0.01, 0.02}
	var out []Perturbation
	for _, p := range []Parameter{ParamDiscountRate, ParamTerminalGrowth} {
		for _, d := range deltas {
			out = append(out, Perturbation{Parameter: p, Delta: d})
		}
	}
	return out
}

// SensitivityCell is one row of the sensitivity table. Divergent indicates a
// perturbation that pushed the discount rate to or below the terminal growth
// rate, where no value exists.
type SensitivityCell struct {
	Parameter Parameter `json:"parameter"`
	Delta     float64   `json:"delta"`
	PerShare  float64   `json:"per_share"`
	PctChange float64   `json:"pct_change"` // vs base survival-adjusted per-share value
	Divergent bool      `json:"divergent"`
}

// Sensitivity re-runs the valuation once per perturbation with the single
// parameter shifted and everything else held constant. Each cell is an
// independent, stateless recomputation; the base input is never mutated.
func Sensitivity(base Input, perturbations []Perturbation) ([]SensitivityCell, error) {
	baseResult, err := Compute(base)
	if err != nil {
		return nil, err
	}

	cells := make([]SensitivityCell, 0, len(perturbations))
	for _, p := range perturbations {
		shifted := base
		shiftedParams := *base.Params
		switch p.Parameter {
		case ParamDiscountRate:
			shiftedParams.DiscountRate += p.Delta
		case ParamTerminalGrowth:
			shiftedParams.TerminalGrowth += p.Delta
		default:
			continue
		}
		shifted.Params = &shiftedParams

		res, err := Compute(shifted)
		if err != nil {
			var div *models.DivergentValuationError
			if errors.As(err, &div) {
				cells = append(cells, SensitivityCell{Parameter: p.Parameter, Delta: p.Delta, Divergent: true})
				continue
			}
			return nil, err
		}

		pct := 0.0
		if baseResult.SurvivalAdjusted != 0 {
			pct = (res.SurvivalAdjusted - baseResult.SurvivalAdjusted) / baseResult.SurvivalAdjusted
		}
		cells = append(cells, SensitivityCell{
			Parameter: p.Parameter,
			Delta:     p.Delta,
			PerShare:  res.SurvivalAdjusted,
			PctChange: pct,
		})
	}
	return cells, nil
}
