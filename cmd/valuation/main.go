package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"intrinsic_valuation/pkg/core/benchmark"
	"intrinsic_valuation/pkg/core/config"
	"intrinsic_valuation/pkg/core/forecast"
	"intrinsic_valuation/pkg/core/logging"
	"intrinsic_valuation/pkg/core/params"
	"intrinsic_valuation/pkg/core/valuation"
	"intrinsic_valuation/pkg/models"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to a FinancialSnapshot JSON file")
	price := flag.Float64("price", 0, "current market price per share")
	configPath := flag.String("config", "config.hjson", "engine config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if *snapshotPath == "" {
		log.Fatal("Usage: valuation -snapshot <file.json> -price <current price>")
	}
	data, err := os.ReadFile(*snapshotPath)
	if err != nil {
		log.Fatalf("failed to read snapshot: %v", err)
	}
	var snap models.FinancialSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Fatalf("failed to parse snapshot: %v", err)
	}

	provider := benchmark.DefaultProvider()

	p, err := params.Estimate(&snap, provider)
	if err != nil {
		log.Fatalf("parameter estimation: %v", err)
	}
	logger.Info().
		Str("ticker", snap.Ticker).
		Float64("wacc", p.DiscountRate).
		Float64("terminal_growth", p.TerminalGrowth).
		Float64("bankruptcy_prob", p.BankruptcyProbability).
		Str("benchmarks", p.BenchmarkVersion).
		Msg("parameters estimated")

	bm, _ := provider.Lookup(snap.Industry)
	series, err := forecast.NewCache().Project(forecast.Input{
		Ticker:        snap.Ticker,
		AsOf:          snap.AsOf,
		History:       snap.FCFHistory,
		IndustryTrend: bm.GrowthTrend,
	}, forecast.Config{
		HorizonYears:    cfg.ForecastHorizonYears,
		ConsensusWeight: cfg.ConsensusWeight,
		DecayBase:       cfg.GrowthDecayBase,
	})
	if err != nil {
		log.Fatalf("forecast: %v", err)
	}

	input := valuation.Input{
		Params:            p,
		Forecast:          series,
		NetDebt:           snap.NetDebt(),
		SharesOutstanding: snap.SharesOutstanding,
		CurrentPrice:      *price,
	}
	result, err := valuation.Compute(input)
	if err != nil {
		log.Fatalf("valuation: %v", err)
	}

	fmt.Printf("\n=== %s Intrinsic Valuation ===\n", result.Ticker)
	fmt.Printf("Enterprise value:        %.1f\n", result.EnterpriseValue)
	fmt.Printf("Equity value:            %.1f\n", result.EquityValue)
	fmt.Printf("Per share:               %.2f\n", result.PerShare)
	fmt.Printf("Survival-adjusted:       %.2f\n", result.SurvivalAdjusted)
	fmt.Printf("Current price:           %.2f\n", result.CurrentPrice)
	fmt.Printf("Upside:                  %+.1f%%\n", result.Upside*100)

	cells, err := valuation.Sensitivity(input, valuation.DefaultPerturbations())
	if err != nil {
		log.Fatalf("sensitivity: %v", err)
	}
	fmt.Println("\n=== Sensitivity ===")
	for _, c := range cells {
		if c.Divergent {
			fmt.Printf("%-16s %+0.2f%%  -> divergent (r <= g)\n", c.Parameter, c.Delta*100)
			continue
		}
		fmt.Printf("%-16s %+0.2f%%  -> %.2f (%+.1f%%)\n", c.Parameter, c.Delta*100, c.PerShare, c.PctChange*100)
	}
}
