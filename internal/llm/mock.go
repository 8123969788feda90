package llm

import "context"

// MockCompleter records prompts and returns a canned answer. Test helper.
type MockCompleter struct {
	Answer  string
	Err     error
	Prompts []string
}

// Complete records the prompt and returns the configured answer or error.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Answer, nil
}

// Name identifies the mock.
func (m *MockCompleter) Name() string {
	return "mock"
}
