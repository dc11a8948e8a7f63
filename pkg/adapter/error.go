package adapter

import (
	"errors"
	"fmt"
)

// ErrGenerationFailed wraps any transport, provider or response problem.
// Callers treat it as "oracle unavailable", never as fatal.
var ErrGenerationFailed = errors.New("generation failed")

func generationError(provider string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", provider, ErrGenerationFailed)
	}
	return fmt.Errorf("%s: %w: %v", provider, ErrGenerationFailed, cause)
}
