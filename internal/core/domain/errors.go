package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a point lookup missed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates a raw query failed the read-only
	// sanitizer or was empty. No execution has occurred.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates the document store or its index is
	// unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTimeout indicates the caller's deadline expired before the
	// store query completed.
	ErrTimeout = errors.New("query timed out")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Features requiring it (query rewriting, answer generation) are
	// disabled, never fatal.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
