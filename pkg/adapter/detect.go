package adapter

import "go.uber.org/zap"

// Settings selects and configures the oracle backend. Populated once from
// explicit configuration rather than ambient environment reads, so callers
// stay testable.
type Settings struct {
	Enabled bool

	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	GoogleAPIKey    string
	GoogleModel     string
	OllamaHost      string
	OllamaModel     string

	EchoPrefix string
}

// Detect returns the adapter for the configured backend, or nil when the
// oracle is disabled. Provider order: openai, anthropic, google, ollama.
// When enabled but no provider can be constructed, the deterministic echo
// adapter is the last resort.
func Detect(s Settings, log *zap.Logger) Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	if !s.Enabled {
		return nil
	}

	if s.OpenAIAPIKey != "" {
		if a, err := NewOpenAIAdapter(s.OpenAIAPIKey, s.OpenAIModel); err == nil {
			log.Info("oracle backend selected", zap.String("adapter", a.Name()))
			return a
		}
	}
	if s.AnthropicAPIKey != "" {
		if a, err := NewAnthropicAdapter(s.AnthropicAPIKey, s.AnthropicModel); err == nil {
			log.Info("oracle backend selected", zap.String("adapter", a.Name()))
			return a
		}
	}
	if s.GoogleAPIKey != "" {
		if a, err := NewGoogleAdapter(s.GoogleAPIKey, s.GoogleModel); err == nil {
			log.Info("oracle backend selected", zap.String("adapter", a.Name()))
			return a
		}
	}
	if s.OllamaHost != "" {
		if a, err := NewOllamaAdapter(s.OllamaHost, s.OllamaModel); err == nil {
			log.Info("oracle backend selected", zap.String("adapter", a.Name()))
			return a
		}
	}

	log.Info("oracle backend selected", zap.String("adapter", "echo"))
	return NewEchoAdapter(s.EchoPrefix)
}
