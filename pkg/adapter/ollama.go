package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaModel = "llama3.1:8b"

// OllamaAdapter implements the Adapter interface for a local Ollama server.
type OllamaAdapter struct {
	host       string
	model      string
	httpClient *http.Client
}

// ollamaRequest represents the /api/generate request format.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaResponse represents the non-streaming response format.
type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaAdapter creates a new Ollama adapter for the given host.
func NewOllamaAdapter(host, model string) (*OllamaAdapter, error) {
	if host == "" {
		return nil, fmt.Errorf("ollama host is required")
	}
	if model == "" {
		model = defaultOllamaModel
	}

	return &OllamaAdapter{
		host:       strings.TrimRight(host, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Name returns the adapter identifier.
func (a *OllamaAdapter) Name() string {
	return "ollama"
}

// Generate sends a prompt to the Ollama generate endpoint and returns the
// response text.
func (a *OllamaAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  a.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", generationError("ollama", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", generationError("ollama", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", generationError("ollama", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", generationError("ollama", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", generationError("ollama", err)
	}

	return strings.TrimSpace(parsed.Response), nil
}
