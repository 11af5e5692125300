// Package refine optionally post-processes final transcription results
// through an LLM before they are delivered to sinks.
package refine

import (
	"context"
	"fmt"
)

// Refiner cleans up one final transcription. Implementations must treat
// failures as recoverable: the caller falls back to the raw text.
type Refiner interface {
	Refine(ctx context.Context, text string) (string, error)
}

// Config holds refiner configuration.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	AddPunctuation    bool
	FixGrammar        bool
	RemoveFillerWords bool
	Keywords          []string
}

// NewRefiner creates a refiner for the configured provider.
func NewRefiner(cfg Config) (Refiner, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return newOpenAIRefiner(cfg), nil
	case "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Groq API key required")
		}
		return newGroqRefiner(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported refine provider: %s", cfg.Provider)
	}
}
