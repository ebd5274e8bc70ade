package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"intrinsic_valuation/pkg/core/embed"
)

// Indexer runs the document ingestion pipeline: split, filter, embed,
// append, publish. Chunk embedding is embarrassingly parallel; a bounded
// worker pool fans the embedding calls out with no shared mutable state
// between tasks.
type Indexer struct {
	chunker  *Chunker
	embedder embed.Embedder
	index    *VectorIndex
	workers  int
	log      zerolog.Logger
}

// NewIndexer wires the pipeline together.
func NewIndexer(chunker *Chunker, embedder embed.Embedder, idx *VectorIndex, workers int, log zerolog.Logger) *Indexer {
	if workers <= 0 {
		workers = 4
	}
	return &Indexer{
		chunker:  chunker,
		embedder: embedder,
		index:    idx,
		workers:  workers,
		log:      log.With().Str("component", "index.indexer").Logger(),
	}
}

// IndexDocument chunks and embeds one document, appends the chunks and
// publishes a new index generation. Unlike retrieval, indexing is a batch
// operation: embedding failures here are returned to the caller for retry
// rather than degraded around.
func (ix *Indexer) IndexDocument(ctx context.Context, doc RawDocument) (int, error) {
	chunks := ix.chunker.Split(doc)
	if len(chunks) == 0 {
		ix.log.Debug().Str("document", doc.ID).Msg("no relevant chunks retained")
		return 0, nil
	}

	if err := ix.embedChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("indexing %s: %w", doc.ID, err)
	}

	ix.index.Append(chunks)
	gen := ix.index.Publish()
	ix.log.Info().
		Str("document", doc.ID).
		Int("chunks", len(chunks)).
		Str("generation", gen).
		Msg("document indexed")
	return len(chunks), nil
}

// IndexBatch indexes several documents and publishes a single generation at
// the end, so readers observe the batch atomically.
func (ix *Indexer) IndexBatch(ctx context.Context, docs []RawDocument) (int, error) {
	total := 0
	for _, doc := range docs {
		chunks := ix.chunker.Split(doc)
		if len(chunks) == 0 {
			continue
		}
		if err := ix.embedChunks(ctx, chunks); err != nil {
			return total, fmt.Errorf("indexing %s: %w", doc.ID, err)
		}
		ix.index.Append(chunks)
		total += len(chunks)
	}
	gen := ix.index.Publish()
	ix.log.Info().Int("documents", len(docs)).Int("chunks", total).Str("generation", gen).Msg("batch indexed")
	return total, nil
}

func (ix *Indexer) embedChunks(ctx context.Context, chunks []DocumentChunk) error {
	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < ix.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := ix.embedder.EmbedText(ctx, chunks[i].Text)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				chunks[i].Embedding = vec
			}
		}()
	}

	for i := range chunks {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return firstErr
}
