// Package forecast projects free cash flow over an explicit horizon by
// blending the historical growth trend with consensus estimates and the
// industry growth trend, with geometric deceleration toward maturity.
package forecast

import (
	"math"
	"time"

	"intrinsic_valuation/pkg/models"
)

// Config tunes the forecasting heuristics. The decay base models growth
// deceleration; it is an unvalidated heuristic and deliberately a parameter,
// not a constant.
type Config struct {
	HorizonYears    int     `json:"horizon_years"`
	ConsensusWeight float64 `json:"consensus_weight"` // Weight on consensus growth where covered
	DecayBase       float64 `json:"decay_base"`       // Geometric decay applied per forecast year
}

// DefaultConfig mirrors the recognized configuration surface defaults.
func DefaultConfig() Config {
	return Config{
		HorizonYears:    5,
		ConsensusWeight: 0.6,
		DecayBase:       0.95,
	}
}

// Input carries everything one projection needs.
type Input struct {
	Ticker string
	AsOf   time.Time

	// History is the ordered free-cash-flow series, oldest first. At least
	// one period is required.
	History []float64

	// ConsensusGrowth holds externally supplied growth estimates per
	// forecast year. It may be shorter than the horizon or empty; the
	// consensus weight only applies to covered years.
	ConsensusGrowth []float64

	// IndustryTrend scales the historical growth rate for years without
	// consensus coverage (1.0 = neutral). May be shorter than the horizon.
	IndustryTrend []float64
}

// Series is the projected free-cash-flow path: one value per explicit year
// plus the terminal-period value the terminal-value formula capitalizes.
type Series struct {
	Ticker  string    `json:"ticker"`
	AsOf    time.Time `json:"as_of"`
	Horizon int       `json:"horizon"`

	Values   []float64 `json:"values"`   // Year 1..N
	Growth   []float64 `json:"growth"`   // Decayed growth rate applied each year
	Terminal float64   `json:"terminal"` // FCF of the final explicit year

	HistoricalGrowth float64 `json:"historical_growth"` // Trend rate the blend started from
}

// Project builds the forecast series. An empty history aborts with a
// DataInsufficiencyError: the forecaster never projects from zero history.
func Project(in Input, cfg Config) (*Series, error) {
	if len(in.History) == 0 {
		return nil, models.NewDataInsufficiency(in.Ticker, "fcf_history")
	}
	if cfg.HorizonYears <= 0 {
		cfg.HorizonYears = DefaultConfig().HorizonYears
	}
	if cfg.DecayBase <= 0 {
		cfg.DecayBase = DefaultConfig().DecayBase
	}

	histGrowth := historicalGrowth(in.History, in.IndustryTrend)

	values := make([]float64, cfg.HorizonYears)
	growth := make([]float64, cfg.HorizonYears)
	prev := in.History[len(in.History)-1]

	for t := 0; t < cfg.HorizonYears; t++ {
		blended := blendedGrowth(histGrowth, in, cfg, t)
		decayed := blended * math.Pow(cfg.DecayBase, float64(t))
		prev = prev * (1 + decayed)
		values[t] = prev
		growth[t] = decayed
	}

	return &Series{
		Ticker:           in.Ticker,
		AsOf:             in.AsOf,
		Horizon:          cfg.HorizonYears,
		Values:           values,
		Growth:           growth,
		Terminal:         values[len(values)-1],
		HistoricalGrowth: histGrowth,
	}, nil
}

// blendedGrowth picks the growth rate for forecast year t (zero-based).
// Consensus-covered years blend consensus with the historical trend; the
// remaining years scale the historical trend by the industry trend.
func blendedGrowth(histGrowth float64, in Input, cfg Config, t int) float64 {
	if t < len(in.ConsensusGrowth) {
		w := cfg.ConsensusWeight
		return w*in.ConsensusGrowth[t] + (1-w)*histGrowth
	}
	trend := 1.0
	if t < len(in.IndustryTrend) {
		trend = in.IndustryTrend[t]
	}
	return histGrowth * trend
}

// historicalGrowth derives the trend rate from the history via CAGR. A
// single-period history has no internal trend, so the first industry trend
// value minus neutral stands in for it.
func historicalGrowth(history, industryTrend []float64) float64 {
	if len(history) < 2 {
		if len(industryTrend) > 0 {
			return industryTrend[0] - 1
		}
		return 0
	}
	first := history[0]
	last := history[len(history)-1]
	years := len(history) - 1
	if first <= 0 || last <= 0 {
		// CAGR is undefined across sign changes; fall back to the mean
		// period-over-period growth.
		return meanGrowth(history)
	}
	return math.Pow(last/first, 1.0/float64(years)) - 1
}

func meanGrowth(history []float64) float64 {
	var sum float64
	var n int
	for i := 1; i < len(history); i++ {
		prior := history[i-1]
		if prior == 0 {
			continue
		}
		sum += (history[i] - prior) / math.Abs(prior)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
