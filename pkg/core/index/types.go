// Package index maintains the append-only vector index of filing chunks.
// Chunk identity is (document id, offset range); re-indexing a document adds
// a new version, it never mutates existing chunks. Readers always work
// against an immutable published snapshot.
package index

import (
	"fmt"
	"time"
)

// DocType classifies the source document.
type DocType string

const (
	DocAnnual    DocType = "ANNUAL"    // Annual filings (10-K and equivalents)
	DocQuarterly DocType = "QUARTERLY" // Quarterly filings (10-Q)
	DocEvent     DocType = "EVENT"     // Event filings (8-K, press releases)
	DocOther     DocType = "OTHER"
)

// RawDocument is the input handed over by the data-ingestion collaborator.
type RawDocument struct {
	ID          string
	Ticker      string
	Type        DocType
	PublishedAt time.Time
	Text        string
}

// DocumentChunk is one retained text span with its embedding. Append-only
// once indexed.
type DocumentChunk struct {
	DocumentID  string    `json:"document_id"`
	Version     string    `json:"version"` // Index-generation the chunk entered with
	Ticker      string    `json:"ticker"`
	Type        DocType   `json:"type"`
	PublishedAt time.Time `json:"published_at"`

	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Text        string `json:"text"`

	Embedding []float32 `json:"-"`
}

// Key returns the chunk's identity: document id plus offset range.
func (c *DocumentChunk) Key() string {
	return fmt.Sprintf("%s:%d-%d", c.DocumentID, c.StartOffset, c.EndOffset)
}
