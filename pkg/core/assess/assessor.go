// Package assess scores a completed reasoning chain: how well grounded,
// consistent, recent and reliably sourced the answer is. The score guides
// caller judgment; a low score never blocks returning the chain.
package assess

import (
	"strings"
	"time"

	"intrinsic_valuation/pkg/core/index"
	"intrinsic_valuation/pkg/core/reasoning"
)

// Weights distributes the confidence score across its four components.
// These are configuration, not business logic scattered across call sites.
type Weights struct {
	EvidenceStrength  float64 `json:"evidence_strength"`
	Consistency       float64 `json:"consistency"`
	Recency           float64 `json:"recency"`
	SourceReliability float64 `json:"source_reliability"`
}

// DefaultWeights sum to one.
func DefaultWeights() Weights {
	return Weights{
		EvidenceStrength:  0.35,
		Consistency:       0.25,
		Recency:           0.20,
		SourceReliability: 0.20,
	}
}

// docTypeReliability weights primary filings above secondary material.
var docTypeReliability = map[index.DocType]float64{
	index.DocAnnual:    1.0,
	index.DocQuarterly: 0.9,
	index.DocEvent:     0.75,
	index.DocOther:     0.5,
}

// Assessment is the confidence score plus its breakdown.
type Assessment struct {
	Confidence float64 `json:"confidence"`

	EvidenceStrength  float64 `json:"evidence_strength"`
	Consistency       float64 `json:"consistency"`
	Recency           float64 `json:"recency"`
	SourceReliability float64 `json:"source_reliability"`

	// Flagged marks a chain whose confidence fell below the caller's
	// threshold. The chain is still usable; the flag is advisory.
	Flagged bool `json:"flagged"`
}

// Assessor scores chains with a fixed weight configuration.
type Assessor struct {
	weights Weights
	now     func() time.Time
}

// NewAssessor normalizes the weights so they sum to one.
func NewAssessor(w Weights) *Assessor {
	total := w.EvidenceStrength + w.Consistency + w.Recency + w.SourceReliability
	if total <= 0 {
		w = DefaultWeights()
		total = 1
	}
	w.EvidenceStrength /= total
	w.Consistency /= total
	w.Recency /= total
	w.SourceReliability /= total
	return &Assessor{weights: w, now: time.Now}
}

// Assess scores a completed chain against the lowConfidenceThreshold the
// caller considers acceptable.
func (a *Assessor) Assess(chain *reasoning.Chain, lowConfidenceThreshold float64) Assessment {
	strength := evidenceStrength(chain)
	consistency := consistencyScore(chain)
	recency := recencyScore(chain, a.now())
	reliability := reliabilityScore(chain)

	confidence := a.weights.EvidenceStrength*strength +
		a.weights.Consistency*consistency +
		a.weights.Recency*recency +
		a.weights.SourceReliability*reliability

	return Assessment{
		Confidence:        confidence,
		EvidenceStrength:  strength,
		Consistency:       consistency,
		Recency:           recency,
		SourceReliability: reliability,
		Flagged:           confidence < lowConfidenceThreshold,
	}
}

// evidenceStrength averages per-step grounding: three or more evidence refs
// count as fully grounded, failed steps count zero.
func evidenceStrength(chain *reasoning.Chain) float64 {
	if len(chain.Steps) == 0 {
		return 0
	}
	var sum float64
	for _, step := range chain.Steps {
		if step.Err != "" {
			continue
		}
		n := float64(len(step.Evidence))
		if n > 3 {
			n = 3
		}
		sum += n / 3
	}
	return sum / float64(len(chain.Steps))
}

// directionPairs are opposing claims the consistency check looks for across
// different sub-answers. Crude, but catches the blatant contradictions.
var directionPairs = [][2]string{
	{"increas", "decreas"},
	{"grow", "declin"},
	{"improv", "deteriorat"},
	{"profitab", "unprofitab"},
	{"strengthen", "weaken"},
}

// consistencyScore penalizes opposing directional claims appearing in
// different sub-answers, and incomplete chains.
func consistencyScore(chain *reasoning.Chain) float64 {
	score := 1.0
	if chain.Incomplete {
		score -= 0.3
	}
	for _, pair := range directionPairs {
		var hasA, hasB bool
		for _, step := range chain.Steps {
			lower := strings.ToLower(step.SubAnswer)
			if strings.Contains(lower, pair[0]) {
				hasA = true
			}
			if strings.Contains(lower, pair[1]) {
				hasB = true
			}
		}
		if hasA && hasB {
			score -= 0.2
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// recencyScore averages the age of all cited evidence with the same linear
// one-year decay retrieval uses.
func recencyScore(chain *reasoning.Chain, now time.Time) float64 {
	var sum float64
	var n int
	for _, step := range chain.Steps {
		for _, ev := range step.Evidence {
			age := now.Sub(ev.PublishedAt)
			r := 1 - float64(age)/float64(365*24*time.Hour)
			if r < 0 {
				r = 0
			}
			if r > 1 {
				r = 1
			}
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func reliabilityScore(chain *reasoning.Chain) float64 {
	var sum float64
	var n int
	for _, step := range chain.Steps {
		for _, ev := range step.Evidence {
			w, ok := docTypeReliability[ev.DocType]
			if !ok {
				w = docTypeReliability[index.DocOther]
			}
			sum += w
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
