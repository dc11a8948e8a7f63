// Package adapter provides the generative backends consulted during expert
// selection. Availability is decided once from configuration; the selector
// receives either a usable handle or nil.
package adapter

import "context"

// Adapter is the minimal generative interface. Implementations must be safe
// for concurrent use.
type Adapter interface {
	// Generate sends a prompt to the backend and returns the raw response.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the adapter's identifier.
	Name() string
}
