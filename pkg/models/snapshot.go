// Package models defines the shared financial data model consumed by the
// valuation and reasoning engines. Snapshots arrive from the data-ingestion
// collaborator and are immutable once captured; a newer snapshot supersedes
// an older one, it never mutates it.
package models

import (
	"time"
)

// FinancialSnapshot captures the fundamentals of one company at one point
// in time. All monetary values are in the reporting currency, unscaled.
type FinancialSnapshot struct {
	Ticker   string    `json:"ticker"`
	Industry string    `json:"industry"`
	AsOf     time.Time `json:"as_of"`

	// Income / cash flow
	Revenue           float64   `json:"revenue"`
	OperatingEarnings float64   `json:"operating_earnings"` // EBIT
	FCFHistory        []float64 `json:"fcf_history"`        // Ordered oldest -> newest

	// Balance sheet
	TotalAssets        float64 `json:"total_assets"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	WorkingCapital     float64 `json:"working_capital"`
	RetainedEarnings   float64 `json:"retained_earnings"`
	TotalDebt          float64 `json:"total_debt"`
	ShortTermDebt      float64 `json:"short_term_debt"` // Portion of TotalDebt due within a year
	Cash               float64 `json:"cash"`
	ShareholdersEquity float64 `json:"shareholders_equity"`

	// Market
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Beta              float64 `json:"beta"`

	// Capital structure
	TaxRate      float64 `json:"tax_rate"`
	EquityWeight float64 `json:"equity_weight"` // E / (D+E)
	DebtWeight   float64 `json:"debt_weight"`   // D / (D+E)
}

// NetDebt returns total debt net of cash. Negative values mean the company
// holds more cash than debt.
func (s *FinancialSnapshot) NetDebt() float64 {
	return s.TotalDebt - s.Cash
}

// LatestFCF returns the most recent historical free cash flow.
// The boolean is false when the history is empty.
func (s *FinancialSnapshot) LatestFCF() (float64, bool) {
	if len(s.FCFHistory) == 0 {
		return 0, false
	}
	return s.FCFHistory[len(s.FCFHistory)-1], true
}
