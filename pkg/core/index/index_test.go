package index

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/core/embed"
)

// relevantFiller repeats a sentence containing index keywords so every span
// of the generated document passes the relevance filter.
func relevantFiller(n int) string {
	const sentence = "Revenue grew while free cash flow and operating income expanded the margin. "
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(sentence)
	}
	return b.String()[:n]
}

func testDoc(id string, text string) RawDocument {
	return RawDocument{
		ID:          id,
		Ticker:      "ACME",
		Type:        DocAnnual,
		PublishedAt: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Text:        text,
	}
}

func TestChunkerOverlappingSpans(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 1000, ChunkOverlap: 200, MinLength: 200})
	chunks := c.Split(testDoc("doc-1", relevantFiller(2500)))

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 1000, chunks[0].EndOffset)
	assert.Equal(t, 800, chunks[1].StartOffset)
	assert.Equal(t, 1800, chunks[1].EndOffset)
	assert.Equal(t, 1600, chunks[2].StartOffset)
	assert.Equal(t, 2500, chunks[2].EndOffset)
}

func TestChunkerDiscardsShortTail(t *testing.T) {
	c := NewChunker(ChunkerConfig{ChunkSize: 1000, ChunkOverlap: 200, MinLength: 200})
	// 1700 chars: the second span would be 900, the third only 100.
	chunks := c.Split(testDoc("doc-1", relevantFiller(1700)))
	require.Len(t, chunks, 2)
	assert.Equal(t, 1700, chunks[1].EndOffset)
}

func TestChunkerFiltersIrrelevantSpans(t *testing.T) {
	c := NewChunker(DefaultChunkerConfig())
	boilerplate := strings.Repeat("This page intentionally left blank. ", 100)
	chunks := c.Split(testDoc("doc-1", boilerplate))
	assert.Empty(t, chunks)
}

func TestChunkerStableOffsets(t *testing.T) {
	c := NewChunker(DefaultChunkerConfig())
	doc := testDoc("doc-1", relevantFiller(3000))
	first := c.Split(doc)
	second := c.Split(doc)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key(), second[i].Key())
	}
}

func TestIndexPublishMakesStagedVisible(t *testing.T) {
	idx := NewVectorIndex()
	before := idx.Snapshot()

	idx.Append([]DocumentChunk{{DocumentID: "doc-1", StartOffset: 0, EndOffset: 100}})
	assert.Equal(t, 0, idx.Len(), "staged chunks must be invisible before publish")

	gen := idx.Publish()
	assert.Equal(t, 1, idx.Len())
	assert.NotEqual(t, before.Generation, gen)
	assert.Equal(t, gen, idx.Snapshot().Chunks[0].Version)
}

func TestIndexSnapshotIsolation(t *testing.T) {
	idx := NewVectorIndex()
	idx.Append([]DocumentChunk{{DocumentID: "doc-1"}})
	idx.Publish()

	old := idx.Snapshot()
	idx.Append([]DocumentChunk{{DocumentID: "doc-2"}})
	idx.Publish()

	// The previously taken snapshot never changes.
	assert.Len(t, old.Chunks, 1)
	assert.Len(t, idx.Snapshot().Chunks, 2)
}

func TestIndexerEmbedsAndPublishes(t *testing.T) {
	idx := NewVectorIndex()
	ix := NewIndexer(NewChunker(DefaultChunkerConfig()), embed.NewHashEmbedder(64), idx, 2, zerolog.Nop())

	n, err := ix.IndexDocument(context.Background(), testDoc("doc-1", relevantFiller(3000)))
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.Equal(t, n, idx.Len())
	for _, c := range idx.Snapshot().Chunks {
		assert.Len(t, c.Embedding, 64)
	}
}

func TestIndexBatchSingleGeneration(t *testing.T) {
	idx := NewVectorIndex()
	ix := NewIndexer(NewChunker(DefaultChunkerConfig()), embed.NewHashEmbedder(64), idx, 2, zerolog.Nop())

	docs := []RawDocument{
		testDoc("doc-1", relevantFiller(2500)),
		testDoc("doc-2", relevantFiller(2500)),
	}
	n, err := ix.IndexBatch(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, n, idx.Len())

	snap := idx.Snapshot()
	for _, c := range snap.Chunks {
		assert.Equal(t, snap.Generation, c.Version, "one batch publishes one generation")
	}
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return nil, errors.New("embedding backend down")
}

func (failingEmbedder) Dimensions() int { return 64 }

func TestIndexerPropagatesEmbedFailure(t *testing.T) {
	idx := NewVectorIndex()
	ix := NewIndexer(NewChunker(DefaultChunkerConfig()), failingEmbedder{}, idx, 2, zerolog.Nop())

	_, err := ix.IndexDocument(context.Background(), testDoc("doc-1", relevantFiller(3000)))
	require.Error(t, err)
	assert.Equal(t, 0, idx.Len(), "failed documents must not be published")
}
