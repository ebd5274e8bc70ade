// Package reasoning answers complex analyst questions by decomposing them
// into retrievable sub-questions, answering each against retrieved evidence
// (and structured valuation output where relevant), and synthesizing a final
// cited answer.
package reasoning

import (
	"time"

	"intrinsic_valuation/pkg/core/index"
	"intrinsic_valuation/pkg/core/retrieval"
)

// State is the orchestrator's position in the reasoning workflow.
type State string

const (
	StateDecompose  State = "DECOMPOSE"
	StateAnswerNext State = "ANSWER_NEXT"
	StateSynthesize State = "SYNTHESIZE"
	StateDone       State = "DONE"
)

// EvidenceRef points at one cited chunk, carrying enough metadata for the
// quality assessor to weigh it without re-reading the index.
type EvidenceRef struct {
	DocumentID  string        `json:"document_id"`
	StartOffset int           `json:"start_offset"`
	EndOffset   int           `json:"end_offset"`
	DocType     index.DocType `json:"doc_type"`
	PublishedAt time.Time     `json:"published_at"`
	Score       float64       `json:"score"`
}

// Step is one (sub-question, sub-answer, evidence) triple. Err is set when
// the generation service failed for this sub-question after retries; the
// answer is then empty, never fabricated.
type Step struct {
	SubQuestion string        `json:"sub_question"`
	SubAnswer   string        `json:"sub_answer"`
	Evidence    []EvidenceRef `json:"evidence"`
	Degraded    bool          `json:"degraded"` // Retrieval was unavailable for this step
	Err         string        `json:"error,omitempty"`
}

// Chain is the full reasoning record for one top-level question. Immutable
// after synthesis; Confidence is filled in by the quality assessor.
type Chain struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	Question    string    `json:"question"`
	Steps       []Step    `json:"steps"`
	FinalAnswer string    `json:"final_answer"`
	Confidence  float64   `json:"confidence"`
	Incomplete  bool      `json:"incomplete"` // Cancelled or synthesis failed
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// accumulatedContext is the explicit context object threaded through the
// sub-question loop. It is per-chain state, never shared between concurrent
// top-level questions.
type accumulatedContext struct {
	facts []string
}

func (c *accumulatedContext) add(subQuestion, subAnswer string) {
	if subAnswer == "" {
		return
	}
	c.facts = append(c.facts, subQuestion+" -> "+subAnswer)
}

func evidenceRefs(results []retrieval.Result) []EvidenceRef {
	refs := make([]EvidenceRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, EvidenceRef{
			DocumentID:  r.Chunk.DocumentID,
			StartOffset: r.Chunk.StartOffset,
			EndOffset:   r.Chunk.EndOffset,
			DocType:     r.Chunk.Type,
			PublishedAt: r.Chunk.PublishedAt,
			Score:       r.FinalScore,
		})
	}
	return refs
}
