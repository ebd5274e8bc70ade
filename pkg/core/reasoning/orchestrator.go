package reasoning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"intrinsic_valuation/pkg/core/llm"
	"intrinsic_valuation/pkg/core/retrieval"
	"intrinsic_valuation/pkg/core/utils"
	"intrinsic_valuation/pkg/core/valuation"
)

// Retriever is the evidence source the orchestrator consumes.
type Retriever interface {
	Search(ctx context.Context, query, ticker string) retrieval.Response
}

// Orchestrator runs the Decompose -> AnswerNext -> Synthesize state machine
// for one top-level question at a time. Independent questions run on
// independent orchestrator calls; all per-question state lives in the chain
// and its accumulated context, so concurrent calls cannot interfere.
type Orchestrator struct {
	provider  llm.Provider
	retriever Retriever
	retry     llm.RetryPolicy
	log       zerolog.Logger

	// Optional structured evidence: a completed valuation whose numbers
	// sub-answers may cite directly.
	valuation *valuation.Result

	maxSubQuestions int
}

// NewOrchestrator wires the reasoning engine.
func NewOrchestrator(provider llm.Provider, retriever Retriever, retry llm.RetryPolicy, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		provider:        provider,
		retriever:       retriever,
		retry:           retry,
		log:             log.With().Str("component", "reasoning.orchestrator").Logger(),
		maxSubQuestions: 6,
	}
}

// WithValuation attaches a valuation result as structured evidence for
// numeric sub-questions.
func (o *Orchestrator) WithValuation(res *valuation.Result) *Orchestrator {
	o.valuation = res
	return o
}

// Run executes the full workflow. Cancellation between sub-questions
// returns the partial chain marked incomplete with a nil error; failures of
// decomposition itself return an error because nothing useful exists yet.
func (o *Orchestrator) Run(ctx context.Context, ticker, question string) (*Chain, error) {
	chain := &Chain{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Question:  question,
		StartedAt: time.Now(),
	}

	state := StateDecompose
	var subQuestions []string
	acc := &accumulatedContext{}

	for state != StateDone {
		switch state {
		case StateDecompose:
			sqs, err := o.decompose(ctx, question)
			if err != nil {
				return nil, fmt.Errorf("decomposition failed: %w", err)
			}
			subQuestions = sqs
			o.log.Info().Str("chain", chain.ID).Int("sub_questions", len(sqs)).Msg("question decomposed")
			state = StateAnswerNext

		case StateAnswerNext:
			for _, sq := range subQuestions {
				select {
				case <-ctx.Done():
					chain.Incomplete = true
					chain.FinishedAt = time.Now()
					o.log.Warn().Str("chain", chain.ID).Msg("cancelled between sub-questions")
					return chain, nil
				default:
				}
				step := o.answerOne(ctx, ticker, sq, acc)
				chain.Steps = append(chain.Steps, step)
				acc.add(step.SubQuestion, step.SubAnswer)
			}
			state = StateSynthesize

		case StateSynthesize:
			answer, err := o.synthesize(ctx, chain)
			if err != nil {
				chain.Incomplete = true
				chain.FinishedAt = time.Now()
				return chain, fmt.Errorf("synthesis failed: %w", err)
			}
			chain.FinalAnswer = answer
			state = StateDone
		}
	}

	chain.FinishedAt = time.Now()
	return chain, nil
}

// decompose asks the model to split the question into independently
// retrievable sub-questions, parsed leniently. The original question stands
// alone when the model deems it atomic.
func (o *Orchestrator) decompose(ctx context.Context, question string) ([]string, error) {
	prompt := fmt.Sprintf(decomposePromptTemplate, o.maxSubQuestions, question)

	var raw string
	err := llm.WithRetry(ctx, o.retry, func(ctx context.Context) error {
		var genErr error
		raw, genErr = o.provider.GenerateResponse(ctx, prompt, decomposeSystemPrompt,
			map[string]interface{}{llm.OptionJSONOutput: true})
		return genErr
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		SubQuestions []string `json:"sub_questions"`
	}
	if parseErr := utils.ParseLenientJSON(raw, &payload); parseErr != nil {
		// Models occasionally emit a bare array.
		var arr []string
		if utils.ParseLenientJSON(raw, &arr) == nil {
			payload.SubQuestions = arr
		}
	}

	var out []string
	for _, sq := range payload.SubQuestions {
		sq = strings.TrimSpace(sq)
		if sq != "" {
			out = append(out, sq)
		}
		if len(out) == o.maxSubQuestions {
			break
		}
	}
	if len(out) == 0 {
		out = []string{question}
	}
	return out, nil
}

// answerOne retrieves evidence for a sub-question and generates its answer
// using the accumulated context from prior steps. Service failure after
// retries is recorded on the step, not papered over.
func (o *Orchestrator) answerOne(ctx context.Context, ticker, subQuestion string, acc *accumulatedContext) Step {
	step := Step{SubQuestion: subQuestion}

	// Prior facts widen the retrieval query.
	query := subQuestion
	if len(acc.facts) > 0 {
		query = subQuestion + "\nContext: " + strings.Join(acc.facts, "; ")
	}
	resp := o.retriever.Search(ctx, query, ticker)
	step.Degraded = resp.Degraded
	step.Evidence = evidenceRefs(resp.Results)

	var sb strings.Builder
	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "[%d] (%s, %s, published %s)\n%s\n\n",
			i+1, r.Chunk.DocumentID, r.Chunk.Type, r.Chunk.PublishedAt.Format("2006-01-02"), r.Chunk.Text)
	}
	if o.valuation != nil && wantsValuation(subQuestion) {
		sb.WriteString(formatValuationEvidence(o.valuation))
	}
	if sb.Len() == 0 {
		sb.WriteString("(no evidence available)")
	}

	prompt := fmt.Sprintf(answerPromptTemplate, subQuestion, strings.Join(acc.facts, "\n"), sb.String())

	var answer string
	err := llm.WithRetry(ctx, o.retry, func(ctx context.Context) error {
		var genErr error
		answer, genErr = o.provider.GenerateResponse(ctx, prompt, answerSystemPrompt, nil)
		return genErr
	})
	if err != nil {
		step.Err = err.Error()
		o.log.Error().Err(err).Str("sub_question", subQuestion).Msg("sub-answer generation failed")
		return step
	}
	step.SubAnswer = answer
	return step
}

// synthesize combines all sub-answers into the final cited answer.
func (o *Orchestrator) synthesize(ctx context.Context, chain *Chain) (string, error) {
	var sb strings.Builder
	for i, step := range chain.Steps {
		fmt.Fprintf(&sb, "Sub-question %d: %s\n", i+1, step.SubQuestion)
		if step.Err != "" {
			fmt.Fprintf(&sb, "Answer: UNAVAILABLE (%s)\n", step.Err)
		} else {
			fmt.Fprintf(&sb, "Answer: %s\n", step.SubAnswer)
		}
		for _, ev := range step.Evidence {
			fmt.Fprintf(&sb, "  Evidence: %s [%d-%d] (%s)\n", ev.DocumentID, ev.StartOffset, ev.EndOffset, ev.DocType)
		}
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(synthesizePromptTemplate, chain.Question, sb.String())

	var answer string
	err := llm.WithRetry(ctx, o.retry, func(ctx context.Context) error {
		var genErr error
		answer, genErr = o.provider.GenerateResponse(ctx, prompt, synthesizeSystemPrompt, nil)
		return genErr
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

var valuationTerms = []string{"intrinsic value", "fair value", "upside", "downside", "dcf", "valuation", "overvalued", "undervalued", "price target"}

func wantsValuation(subQuestion string) bool {
	lower := strings.ToLower(subQuestion)
	for _, term := range valuationTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func formatValuationEvidence(res *valuation.Result) string {
	return fmt.Sprintf(
		"[valuation] Computed DCF for %s: enterprise value %.1f, equity value %.1f, intrinsic value per share %.2f (survival-adjusted %.2f), current price %.2f, upside %.1f%%. Discount rate %.2f%%, terminal growth %.2f%%, bankruptcy probability %.1f%%.\n\n",
		res.Ticker, res.EnterpriseValue, res.EquityValue, res.PerShare, res.SurvivalAdjusted,
		res.CurrentPrice, res.Upside*100,
		res.Params.DiscountRate*100, res.Params.TerminalGrowth*100, res.Params.BankruptcyProbability*100)
}
