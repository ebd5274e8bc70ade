// Package llm wraps the external language-model service used for question
// decomposition, sub-answer generation and synthesis. All calls are blocking
// I/O with explicit timeouts; transient failures are classified so the retry
// policy can distinguish them from hard errors.
package llm

import (
	"context"
)

// Provider is the interface to a text-generation backend.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Options keys recognized by providers.
const (
	OptionModel      = "model"
	OptionJSONOutput = "json_output"
)
