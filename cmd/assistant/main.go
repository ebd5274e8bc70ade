package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intrinsic_valuation/pkg/core/assess"
	"intrinsic_valuation/pkg/core/config"
	"intrinsic_valuation/pkg/core/embed"
	"intrinsic_valuation/pkg/core/index"
	"intrinsic_valuation/pkg/core/ingest"
	"intrinsic_valuation/pkg/core/llm"
	"intrinsic_valuation/pkg/core/logging"
	"intrinsic_valuation/pkg/core/reasoning"
	"intrinsic_valuation/pkg/core/retrieval"
)

func main() {
	docsDir := flag.String("docs", "", "directory of .txt filings to index")
	ticker := flag.String("ticker", "", "ticker scope for retrieval")
	question := flag.String("question", "", "analyst question to answer")
	configPath := flag.String("config", "config.hjson", "engine config file")
	routingPath := flag.String("routing", "", "optional LLM routing YAML")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}
	if *question == "" {
		log.Fatal("Usage: assistant -docs <dir> -ticker <T> -question <text>")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Embedder: live Gemini when a key is present, deterministic hash
	// embedder otherwise (simulation mode).
	var raw embed.Embedder
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey != "" {
		raw, err = embed.NewGeminiEmbedder(ctx, apiKey, cfg.EmbedModel)
		if err != nil {
			log.Fatalf("embedder: %v", err)
		}
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, using deterministic hash embedder")
		raw = embed.NewHashEmbedder(256)
	}
	embedder := embed.NewGuarded(raw, embed.DefaultGuardConfig())

	idx := index.NewVectorIndex()

	// Optional persistence: warm the index from Postgres, persist new chunks.
	var store *index.PgStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		store, err = index.NewPgStore(ctx, dbURL)
		if err != nil {
			log.Fatalf("chunk store: %v", err)
		}
		defer store.Close()
		if err := store.Init(ctx); err != nil {
			log.Fatalf("chunk store init: %v", err)
		}
		chunks, err := store.LoadAll(ctx)
		if err != nil {
			log.Fatalf("chunk store load: %v", err)
		}
		idx.Append(chunks)
		idx.Publish()
		logger.Info().Int("chunks", len(chunks)).Msg("index warmed from store")
	}

	if *docsDir != "" {
		chunker := index.NewChunker(index.ChunkerConfig{
			ChunkSize:    cfg.ChunkSize,
			ChunkOverlap: cfg.ChunkOverlap,
			MinLength:    cfg.MinChunkLen,
		})
		indexer := index.NewIndexer(chunker, embedder, idx, cfg.IndexWorkers, logger)
		docs, err := ingest.LoadDirectory(*docsDir, *ticker)
		if err != nil {
			log.Fatalf("loading documents: %v", err)
		}
		n, err := indexer.IndexBatch(ctx, docs)
		if err != nil {
			log.Fatalf("indexing: %v", err)
		}
		if store != nil {
			if err := store.AppendChunks(ctx, idx.Snapshot().Chunks[idx.Len()-n:]); err != nil {
				logger.Error().Err(err).Msg("failed to persist chunks")
			}
		}
	}

	// LLM provider: live Gemini or scripted mock in simulation mode.
	var provider llm.Provider
	if apiKey != "" {
		provider, err = llm.NewGeminiProvider(ctx, apiKey, cfg.LLMModel, time.Duration(cfg.RequestTimeoutMS)*time.Millisecond)
		if err != nil {
			log.Fatalf("llm provider: %v", err)
		}
	} else {
		provider = llm.NewMockProvider()
	}
	routing, err := llm.LoadRoutingConfig(*routingPath)
	if err != nil {
		log.Fatalf("routing config: %v", err)
	}
	providers := map[string]llm.Provider{"gemini": provider}
	if dsKey := os.Getenv("DEEPSEEK_API_KEY"); dsKey != "" {
		providers["deepseek"] = llm.NewOpenAICompatProvider("deepseek", "https://api.deepseek.com",
			dsKey, "deepseek-chat", time.Duration(cfg.RequestTimeoutMS)*time.Millisecond)
	}
	manager := llm.NewManager(routing, providers)

	retriever := retrieval.NewRetriever(idx, embedder, retrieval.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		TopK:                cfg.TopK,
	}, logger)

	retry := llm.RetryPolicy{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: time.Duration(cfg.RetryBackoffMS) * time.Millisecond,
		MaxBackoff:     8 * time.Second,
	}
	orchestrator := reasoning.NewOrchestrator(manager.ProviderFor("answer"), retriever, retry, logger)

	chain, err := orchestrator.Run(ctx, *ticker, *question)
	if err != nil {
		log.Fatalf("reasoning: %v", err)
	}

	assessment := assess.NewAssessor(assess.DefaultWeights()).Assess(chain, cfg.LowConfidenceThreshold)
	chain.Confidence = assessment.Confidence

	fmt.Printf("\n=== Answer (chain %s) ===\n%s\n", chain.ID, chain.FinalAnswer)
	fmt.Printf("\nConfidence: %.2f (evidence %.2f, consistency %.2f, recency %.2f, sources %.2f)\n",
		assessment.Confidence, assessment.EvidenceStrength, assessment.Consistency,
		assessment.Recency, assessment.SourceReliability)
	if assessment.Flagged {
		fmt.Println("WARNING: low-confidence answer, review the evidence before relying on it.")
	}
	if chain.Incomplete {
		fmt.Println("NOTE: reasoning was cancelled before completion; the chain is partial.")
	}
}
