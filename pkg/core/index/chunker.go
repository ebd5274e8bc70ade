package index

import (
	"strings"
)

// ChunkerConfig controls the span splitter and the relevance filter.
type ChunkerConfig struct {
	ChunkSize    int `json:"chunk_size"`    // Characters per span
	ChunkOverlap int `json:"chunk_overlap"` // Characters shared between adjacent spans
	MinLength    int `json:"min_length"`    // Spans shorter than this are discarded
}

// DefaultChunkerConfig matches the recognized configuration defaults.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		MinLength:    200,
	}
}

// relevanceKeywords bounds the index to valuation-relevant content: a span
// must mention at least one of these to be embedded.
var relevanceKeywords = []string{
	"revenue", "sales", "cash flow", "free cash", "operating income",
	"net income", "earnings", "margin", "guidance", "outlook", "forecast",
	"risk factor", "risks", "liquidity", "debt", "capital", "dividend",
	"buyback", "repurchase", "growth", "competition", "competitive",
	"segment", "impairment", "goodwill",
}

// Chunker splits raw documents into fixed-size overlapping spans and filters
// out spans without valuation-relevant content.
type Chunker struct {
	cfg ChunkerConfig
}

// NewChunker validates the configuration and builds a chunker. An overlap
// equal to or larger than the chunk size would never advance, so it is
// reduced to the default ratio.
func NewChunker(cfg ChunkerConfig) *Chunker {
	def := DefaultChunkerConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	return &Chunker{cfg: cfg}
}

// Split produces the retained chunks for a document, without embeddings.
// Offsets are byte positions into the original text, preserving chunk
// identity across re-indexing runs.
func (c *Chunker) Split(doc RawDocument) []DocumentChunk {
	var chunks []DocumentChunk
	step := c.cfg.ChunkSize - c.cfg.ChunkOverlap
	text := doc.Text

	for start := 0; start < len(text); start += step {
		end := start + c.cfg.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		span := text[start:end]
		if len(span) >= c.cfg.MinLength && isRelevant(span) {
			chunks = append(chunks, DocumentChunk{
				DocumentID:  doc.ID,
				Ticker:      doc.Ticker,
				Type:        doc.Type,
				PublishedAt: doc.PublishedAt,
				StartOffset: start,
				EndOffset:   end,
				Text:        span,
			})
		}
		if end == len(text) {
			break
		}
	}
	return chunks
}

func isRelevant(span string) bool {
	lower := strings.ToLower(span)
	for _, kw := range relevanceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
