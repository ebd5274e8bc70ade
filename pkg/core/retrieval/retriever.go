package retrieval

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"intrinsic_valuation/pkg/core/embed"
	"intrinsic_valuation/pkg/core/index"
)

// Scoring weights and the recency window. Similarity dominates; recency
// decays linearly to zero over one year.
const (
	similarityWeight = 0.70
	recencyWeight    = 0.30
	recencyWindow    = 365 * 24 * time.Hour
)

// Config tunes retrieval.
type Config struct {
	SimilarityThreshold float64 `json:"similarity_threshold"` // Hard filter, not a preference
	TopK                int     `json:"top_k"`
}

// DefaultConfig matches the recognized configuration defaults.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.75,
		TopK:                10,
	}
}

// Result is one ranked evidence chunk. Ephemeral, produced per query.
type Result struct {
	Chunk      *index.DocumentChunk `json:"chunk"`
	Similarity float64              `json:"similarity"`
	Recency    float64              `json:"recency"`
	FinalScore float64              `json:"final_score"`
}

// Response carries the ranked results plus the degradation flag. A down
// embedding service yields an empty, degraded response instead of an error:
// evidence shortfalls never abort the pipeline.
type Response struct {
	Results  []Result `json:"results"`
	Degraded bool     `json:"degraded"`
}

// Retriever executes expanded queries against the current index snapshot.
// Queries are read-only and may run with unbounded concurrency.
type Retriever struct {
	idx      *index.VectorIndex
	embedder embed.Embedder
	cfg      Config
	now      func() time.Time
	log      zerolog.Logger
}

// NewRetriever builds a retriever over an index.
func NewRetriever(idx *index.VectorIndex, embedder embed.Embedder, cfg Config, log zerolog.Logger) *Retriever {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultConfig().SimilarityThreshold
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	return &Retriever{
		idx:      idx,
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "retrieval.retriever").Logger(),
	}
}

// Search expands the query, embeds each sub-query and ranks the matching
// chunks. Chunks below the similarity threshold are discarded outright; a
// chunk reached by several sub-queries keeps its best similarity.
func (r *Retriever) Search(ctx context.Context, query, ticker string) Response {
	snap := r.idx.Snapshot()
	queries := Expand(query, ticker)
	now := r.now()

	best := make(map[string]Result)
	degraded := false

	for _, q := range queries {
		vec, err := r.embedder.EmbedText(ctx, q)
		if err != nil {
			r.log.Warn().Err(err).Str("query", q).Msg("embedding unavailable, retrieval degraded")
			degraded = true
			continue
		}
		for i := range snap.Chunks {
			chunk := &snap.Chunks[i]
			sim := cosineSimilarity(vec, chunk.Embedding)
			if sim < r.cfg.SimilarityThreshold {
				continue
			}
			key := chunk.Key()
			if prev, ok := best[key]; ok && prev.Similarity >= sim {
				continue
			}
			rec := recencyScore(now, chunk.PublishedAt)
			best[key] = Result{
				Chunk:      chunk,
				Similarity: sim,
				Recency:    rec,
				FinalScore: similarityWeight*sim + recencyWeight*rec,
			}
		}
	}

	if degraded && len(best) == 0 {
		return Response{Degraded: true}
	}

	results := make([]Result, 0, len(best))
	for _, res := range best {
		results = append(results, res)
	}
	sortResults(results)

	if len(results) > r.cfg.TopK {
		results = results[:r.cfg.TopK]
	}
	return Response{Results: results, Degraded: degraded}
}

// sortResults orders by final score, then similarity, then publication date,
// then document id and start offset. The trailing keys make ranking fully
// deterministic regardless of map iteration order.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if !a.Chunk.PublishedAt.Equal(b.Chunk.PublishedAt) {
			return a.Chunk.PublishedAt.After(b.Chunk.PublishedAt)
		}
		if a.Chunk.DocumentID != b.Chunk.DocumentID {
			return a.Chunk.DocumentID < b.Chunk.DocumentID
		}
		return a.Chunk.StartOffset < b.Chunk.StartOffset
	})
}

// recencyScore decays linearly from 1 (published now) to 0 (one year old or
// older).
func recencyScore(now, published time.Time) float64 {
	age := now.Sub(published)
	if age <= 0 {
		return 1
	}
	if age >= recencyWindow {
		return 0
	}
	return 1 - float64(age)/float64(recencyWindow)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
