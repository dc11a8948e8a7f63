package adapter

import "context"

// EchoAdapter is the deterministic last-resort backend: it returns canned
// responses when configured, otherwise the prompt itself (optionally
// prefixed). Used for local runs and tests.
type EchoAdapter struct {
	Prefix    string
	responses map[string]string
}

// NewEchoAdapter creates an echo adapter.
func NewEchoAdapter(prefix string) *EchoAdapter {
	return &EchoAdapter{Prefix: prefix}
}

// NewEchoAdapterWithResponses creates an echo adapter with predefined
// per-prompt responses.
func NewEchoAdapterWithResponses(responses map[string]string) *EchoAdapter {
	return &EchoAdapter{responses: responses}
}

// Name returns the adapter identifier.
func (a *EchoAdapter) Name() string {
	return "echo"
}

// Generate returns the canned response for the prompt, or echoes it back.
func (a *EchoAdapter) Generate(_ context.Context, prompt string) (string, error) {
	if response, ok := a.responses[prompt]; ok {
		return response, nil
	}
	return a.Prefix + prompt, nil
}
