package driven

import "context"

// LLMService provides language model operations around retrieval.
// This is an optional service - when nil, query rewriting and answer
// generation are disabled and everything else works unchanged.
type LLMService interface {
	// RewriteQuery rewrites a free-text query for better recall and may
	// suggest a result count. A zero limit means no suggestion. Failure
	// must be treated as a no-op by callers, never as fatal.
	RewriteQuery(ctx context.Context, query string) (rewritten string, limit int, err error)

	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
