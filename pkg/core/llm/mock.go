package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider replays scripted responses in order, for simulation runs and
// tests. A nil error with an empty script falls through to a canned answer
// so chains can still complete.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
}

var _ Provider = (*MockProvider)(nil)

// NewMockProvider builds a provider that returns the given responses in
// sequence. Use Fail to interleave errors.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses, errs: make([]error, len(responses))}
}

// Fail appends a failing call to the script.
func (m *MockProvider) Fail(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, "")
	m.errs = append(m.errs, err)
	return m
}

// Respond appends a successful call to the script.
func (m *MockProvider) Respond(text string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, text)
	m.errs = append(m.errs, nil)
	return m
}

// Calls reports how many times GenerateResponse ran.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	if i >= len(m.responses) {
		return fmt.Sprintf("mock answer %d", i+1), nil
	}
	if m.errs[i] != nil {
		return "", m.errs[i]
	}
	return m.responses[i], nil
}
