package params

import (
	"errors"
	"math"
	"testing"

	"intrinsic_valuation/pkg/core/benchmark"
	"intrinsic_valuation/pkg/models"
)

func testProvider() benchmark.Provider {
	return benchmark.NewStaticProvider("test-1", benchmark.Benchmarks{
		RiskFreeRate:        0.04,
		IndustryRiskPremium: 0.05,
		LongRunGDPGrowth:    0.025,
		IndustryMaturity:    1.0,
		IndustryStability:   0.7,
		GrowthTrend:         []float64{1.0, 1.0, 1.0, 1.0, 1.0},
	}, nil)
}

func healthySnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Ticker:             "ACME",
		Industry:           "technology",
		Revenue:            1.0e9,
		OperatingEarnings:  2.0e8,
		FCFHistory:         []float64{1.5e8, 1.6e8, 1.7e8},
		TotalAssets:        2.0e9,
		TotalLiabilities:   8.0e8,
		WorkingCapital:     3.0e8,
		RetainedEarnings:   5.0e8,
		TotalDebt:          4.0e8,
		ShortTermDebt:      1.0e8,
		Cash:               2.5e8,
		ShareholdersEquity: 1.2e9,
		MarketCap:          5.0e9,
		SharesOutstanding:  1.0e8,
		Beta:               1.1,
		TaxRate:            0.21,
	}
}

func TestDiscountRateMonotonicInBeta(t *testing.T) {
	provider := testProvider()
	prev := -1.0
	for _, beta := range []float64{0.5, 0.8, 1.0, 1.3, 1.8, 2.5} {
		snap := healthySnapshot()
		snap.Beta = beta
		p, err := Estimate(snap, provider)
		if err != nil {
			t.Fatalf("unexpected error for beta %f: %v", beta, err)
		}
		if p.DiscountRate <= prev {
			t.Errorf("discount rate not increasing at beta %f: %f <= %f", beta, p.DiscountRate, prev)
		}
		prev = p.DiscountRate
	}
}

func TestTerminalGrowthNeverExceedsGDP(t *testing.T) {
	provider := testProvider()
	for _, mcap := range []float64{1e9, 5e9, 50e9, 200e9, 1e12} {
		snap := healthySnapshot()
		snap.MarketCap = mcap
		p, err := Estimate(snap, provider)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.TerminalGrowth > 0.025 {
			t.Errorf("terminal growth %f exceeds GDP growth for market cap %g", p.TerminalGrowth, mcap)
		}
	}
}

func TestBaseBankruptcyProbabilityBands(t *testing.T) {
	// Healthy band.
	if got := baseBankruptcyProbability(3.5); got != 0.02 {
		t.Errorf("expected base probability 0.02 at score 3.5, got %f", got)
	}
	// Distressed band.
	if got := baseBankruptcyProbability(1.5); got != 0.35 {
		t.Errorf("expected base probability 0.35 at score 1.5, got %f", got)
	}
	// Gray zone interpolates between the band endpoints.
	mid := baseBankruptcyProbability(2.4)
	if mid <= 0.02 || mid >= 0.35 {
		t.Errorf("gray-zone probability %f not between band endpoints", mid)
	}
}

func TestBankruptcyProbabilityMonotonicInScore(t *testing.T) {
	prev := 1.0
	for score := 0.5; score <= 4.5; score += 0.1 {
		p := baseBankruptcyProbability(score)
		if p > prev {
			t.Fatalf("base probability increased with score at %f: %f > %f", score, p, prev)
		}
		prev = p
	}
}

func TestFinalProbabilityWithinBounds(t *testing.T) {
	provider := testProvider()

	// Severely distressed: negative working capital and retained earnings.
	snap := healthySnapshot()
	snap.WorkingCapital = -8.0e8
	snap.RetainedEarnings = -1.5e9
	snap.OperatingEarnings = -3.0e8
	snap.MarketCap = 1.0e8
	snap.Cash = 0
	snap.ShortTermDebt = snap.TotalDebt
	p, err := Estimate(snap, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.BankruptcyProbability < 0.01 || p.BankruptcyProbability > 0.95 {
		t.Errorf("probability %f outside [0.01, 0.95]", p.BankruptcyProbability)
	}

	// Extremely healthy with a huge cash cushion still respects the floor.
	snap2 := healthySnapshot()
	snap2.Cash = snap2.TotalAssets
	p2, err := Estimate(snap2, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2.BankruptcyProbability < 0.01 {
		t.Errorf("probability %f below floor", p2.BankruptcyProbability)
	}
}

func TestCompositeSolvencyScore(t *testing.T) {
	snap := healthySnapshot()
	// 1.2*(0.15) + 1.4*(0.25) + 3.3*(0.10) + 0.6*(6.25) + 1.0*(0.50) = 5.11
	got := CompositeSolvencyScore(snap)
	if math.Abs(got-5.11) > 1e-9 {
		t.Errorf("expected composite score 5.11, got %f", got)
	}
}

func TestMissingFieldsFailExplicitly(t *testing.T) {
	provider := testProvider()
	cases := []struct {
		field  string
		mutate func(*models.FinancialSnapshot)
	}{
		{"revenue", func(s *models.FinancialSnapshot) { s.Revenue = 0 }},
		{"total_assets", func(s *models.FinancialSnapshot) { s.TotalAssets = 0 }},
		{"total_liabilities", func(s *models.FinancialSnapshot) { s.TotalLiabilities = 0 }},
		{"market_cap", func(s *models.FinancialSnapshot) { s.MarketCap = 0 }},
		{"beta", func(s *models.FinancialSnapshot) { s.Beta = 0 }},
		{"tax_rate", func(s *models.FinancialSnapshot) { s.TaxRate = 1.2 }},
	}
	for _, c := range cases {
		snap := healthySnapshot()
		c.mutate(snap)
		_, err := Estimate(snap, provider)
		var insufficient *models.DataInsufficiencyError
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected DataInsufficiencyError for %s, got %v", c.field, err)
		}
		if insufficient.Field != c.field {
			t.Errorf("expected missing field %q, got %q", c.field, insufficient.Field)
		}
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	provider := testProvider()
	a, err := Estimate(healthySnapshot(), provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Estimate(healthySnapshot(), provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *a != *b {
		t.Error("identical inputs produced different parameters")
	}
}
