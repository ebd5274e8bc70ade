package index

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Snapshot is one immutable published generation of the index. Retrieval
// reads run against a snapshot with no locking, at any concurrency.
type Snapshot struct {
	Generation string
	Chunks     []DocumentChunk
}

// VectorIndex is the append-only chunk index. Writers stage chunks and
// publish a new generation atomically; existing generations are never
// modified, so concurrent readers never block on writers.
type VectorIndex struct {
	mu      sync.Mutex // Guards staged + publish
	staged  []DocumentChunk
	current atomic.Pointer[Snapshot]
}

// NewVectorIndex creates an empty index with an initial empty generation.
func NewVectorIndex() *VectorIndex {
	idx := &VectorIndex{}
	idx.current.Store(&Snapshot{Generation: uuid.NewString()})
	return idx
}

// Append stages chunks for the next generation. Staged chunks are invisible
// to readers until Publish.
func (idx *VectorIndex) Append(chunks []DocumentChunk) {
	if len(chunks) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.staged = append(idx.staged, chunks...)
}

// Publish folds all staged chunks into a new generation and atomically makes
// it the current snapshot. Returns the new generation id.
func (idx *VectorIndex) Publish() string {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	prev := idx.current.Load()
	gen := uuid.NewString()

	merged := make([]DocumentChunk, 0, len(prev.Chunks)+len(idx.staged))
	merged = append(merged, prev.Chunks...)
	for _, c := range idx.staged {
		c.Version = gen
		merged = append(merged, c)
	}
	idx.staged = nil

	idx.current.Store(&Snapshot{Generation: gen, Chunks: merged})
	return gen
}

// Snapshot returns the current published generation.
func (idx *VectorIndex) Snapshot() *Snapshot {
	return idx.current.Load()
}

// Len reports the number of chunks in the current generation.
func (idx *VectorIndex) Len() int {
	return len(idx.current.Load().Chunks)
}
