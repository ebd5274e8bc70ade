package models

import "fmt"

// DataInsufficiencyError reports a required snapshot field that is missing
// or unusable. The valuation for that ticker aborts; no default is guessed.
type DataInsufficiencyError struct {
	Ticker string
	Field  string
}

func (e *DataInsufficiencyError) Error() string {
	return fmt.Sprintf("insufficient data for %s: required field '%s' is missing", e.Ticker, e.Field)
}

// NewDataInsufficiency builds a DataInsufficiencyError for a named field.
func NewDataInsufficiency(ticker, field string) *DataInsufficiencyError {
	return &DataInsufficiencyError{Ticker: ticker, Field: field}
}

// DivergentValuationError reports a discount rate at or below the terminal
// growth rate. The perpetuity-growth formula is undefined there, so the
// valuation aborts instead of clamping.
type DivergentValuationError struct {
	DiscountRate   float64
	TerminalGrowth float64
}

func (e *DivergentValuationError) Error() string {
	return fmt.Sprintf("divergent valuation: discount rate %.4f <= terminal growth %.4f", e.DiscountRate, e.TerminalGrowth)
}
