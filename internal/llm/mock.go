package llm

import "context"

// MockClient is a test double for the LLM Client interface.
type MockClient struct {
	Response  *Response
	Responses []*Response // round-robin by call when set
	Err       error
	Calls     []string // records prompts sent
}

// Complete records the call and returns the mock response. When
// Responses is set, successive calls walk the slice, sticking on the
// last entry.
func (m *MockClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) > 0 {
		idx := len(m.Calls) - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		return m.Responses[idx], nil
	}
	return m.Response, nil
}
