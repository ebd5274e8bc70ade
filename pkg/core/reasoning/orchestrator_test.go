package reasoning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/core/index"
	"intrinsic_valuation/pkg/core/llm"
	"intrinsic_valuation/pkg/core/params"
	"intrinsic_valuation/pkg/core/retrieval"
	"intrinsic_valuation/pkg/core/valuation"
)

var fastRetry = llm.RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: time.Millisecond,
	MaxBackoff:     2 * time.Millisecond,
}

// stubRetriever returns a fixed response and optionally cancels the context
// mid-chain to simulate a caller giving up.
type stubRetriever struct {
	resp    retrieval.Response
	cancel  context.CancelFunc
	queries []string
}

func (s *stubRetriever) Search(_ context.Context, query, _ string) retrieval.Response {
	s.queries = append(s.queries, query)
	if s.cancel != nil {
		s.cancel()
	}
	return s.resp
}

func evidenceResponse() retrieval.Response {
	chunk := &index.DocumentChunk{
		DocumentID:  "10k-2025",
		Ticker:      "ACME",
		Type:        index.DocAnnual,
		PublishedAt: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		StartOffset: 0,
		EndOffset:   1000,
		Text:        "Revenue grew 12% on strong subscription demand.",
	}
	return retrieval.Response{
		Results: []retrieval.Result{{Chunk: chunk, Similarity: 0.9, Recency: 0.8, FinalScore: 0.87}},
	}
}

func TestRunCompletesFullChain(t *testing.T) {
	mock := llm.NewMockProvider(
		`{"sub_questions": ["How fast is revenue growing?", "What are the main risks?"]}`,
		"Revenue is growing 12% annually.",
		"Competition and customer concentration.",
		"ACME is growing steadily with manageable risks.",
	)
	ret := &stubRetriever{resp: evidenceResponse()}
	o := NewOrchestrator(mock, ret, fastRetry, zerolog.Nop())

	chain, err := o.Run(context.Background(), "ACME", "Is ACME a good investment?")
	require.NoError(t, err)
	require.NotNil(t, chain)

	assert.False(t, chain.Incomplete)
	assert.Equal(t, "ACME is growing steadily with manageable risks.", chain.FinalAnswer)
	require.Len(t, chain.Steps, 2)
	assert.Equal(t, "How fast is revenue growing?", chain.Steps[0].SubQuestion)
	assert.Equal(t, "Revenue is growing 12% annually.", chain.Steps[0].SubAnswer)
	require.Len(t, chain.Steps[0].Evidence, 1)
	assert.Equal(t, "10k-2025", chain.Steps[0].Evidence[0].DocumentID)
	assert.False(t, chain.FinishedAt.IsZero())

	// The second retrieval query carries the accumulated first answer.
	require.Len(t, ret.queries, 2)
	assert.Contains(t, ret.queries[1], "Revenue is growing 12% annually.")
}

func TestRunAtomicQuestionFallsBack(t *testing.T) {
	// Unparseable decomposition: the original question is answered as-is.
	mock := llm.NewMockProvider(
		"I could not decompose this.",
		"The answer.",
		"The final answer.",
	)
	o := NewOrchestrator(mock, &stubRetriever{resp: evidenceResponse()}, fastRetry, zerolog.Nop())

	chain, err := o.Run(context.Background(), "ACME", "What is the dividend?")
	require.NoError(t, err)
	require.Len(t, chain.Steps, 1)
	assert.Equal(t, "What is the dividend?", chain.Steps[0].SubQuestion)
}

func TestRunDecompositionFailureIsFatal(t *testing.T) {
	mock := llm.NewMockProvider().
		Fail(errors.New("invalid api key"))
	o := NewOrchestrator(mock, &stubRetriever{resp: evidenceResponse()}, fastRetry, zerolog.Nop())

	chain, err := o.Run(context.Background(), "ACME", "Is ACME a good investment?")
	require.Error(t, err)
	assert.Nil(t, chain, "nothing useful exists before decomposition")
}

func TestRunCancellationYieldsPartialChain(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := llm.NewMockProvider(
		`{"sub_questions": ["first?", "second?", "third?"]}`,
	)
	// The retriever cancels during the first search, so the loop stops before
	// the second sub-question.
	ret := &stubRetriever{resp: evidenceResponse(), cancel: cancel}
	o := NewOrchestrator(mock, ret, fastRetry, zerolog.Nop())

	chain, err := o.Run(ctx, "ACME", "Is ACME a good investment?")
	require.NoError(t, err, "cancellation is not an error, the partial chain is the result")
	require.NotNil(t, chain)
	assert.True(t, chain.Incomplete)
	assert.Less(t, len(chain.Steps), 3)
	assert.Empty(t, chain.FinalAnswer)
}

func TestRunRecordsPerStepFailure(t *testing.T) {
	mock := llm.NewMockProvider(`{"sub_questions": ["only one?"]}`).
		Fail(errors.New("request timeout")).
		Fail(errors.New("request timeout")).
		Fail(errors.New("request timeout")).
		Respond("Synthesis despite the gap.")
	o := NewOrchestrator(mock, &stubRetriever{resp: evidenceResponse()}, fastRetry, zerolog.Nop())

	chain, err := o.Run(context.Background(), "ACME", "Is ACME a good investment?")
	require.NoError(t, err)
	require.Len(t, chain.Steps, 1)
	assert.Empty(t, chain.Steps[0].SubAnswer, "failed steps never fabricate answers")
	assert.NotEmpty(t, chain.Steps[0].Err)
	assert.Equal(t, "Synthesis despite the gap.", chain.FinalAnswer)
	assert.False(t, chain.Incomplete)
}

func TestWantsValuation(t *testing.T) {
	assert.True(t, wantsValuation("What is the intrinsic value per share?"))
	assert.True(t, wantsValuation("Is the stock overvalued at current prices?"))
	assert.False(t, wantsValuation("Who is the CEO?"))
}

func TestFormatValuationEvidence(t *testing.T) {
	res := &valuation.Result{
		Ticker:           "ACME",
		EnterpriseValue:  1446.2,
		EquityValue:      1446.2,
		PerShare:         144.62,
		SurvivalAdjusted: 137.39,
		CurrentPrice:     100,
		Upside:           0.3739,
		Params: &params.ValuationParameters{
			DiscountRate:          0.10,
			TerminalGrowth:        0.02,
			BankruptcyProbability: 0.05,
		},
	}
	got := formatValuationEvidence(res)
	assert.Contains(t, got, "ACME")
	assert.Contains(t, got, "144.62")
	assert.Contains(t, got, "137.39")
}

func TestRunMarksDegradedSteps(t *testing.T) {
	mock := llm.NewMockProvider(
		`{"sub_questions": ["only one?"]}`,
		"Answer with no evidence.",
		"Final.",
	)
	ret := &stubRetriever{resp: retrieval.Response{Degraded: true}}
	o := NewOrchestrator(mock, ret, fastRetry, zerolog.Nop())

	chain, err := o.Run(context.Background(), "ACME", "Is ACME a good investment?")
	require.NoError(t, err)
	require.Len(t, chain.Steps, 1)
	assert.True(t, chain.Steps[0].Degraded)
	assert.Empty(t, chain.Steps[0].Evidence)
}
