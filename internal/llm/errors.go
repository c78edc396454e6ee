package llm

import "errors"

// Callers match these with errors.Is. Generate wraps transport failures into
// exactly one of them; parse helpers only ever return ErrInvalidOutput.
var (
	// ErrOllamaUnavailable means the server could not be reached at all.
	ErrOllamaUnavailable = errors.New("ollama server unavailable")

	// ErrTimeout means the per-task deadline expired on the last attempt.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput means the reply was empty, undecodable, or did not
	// match the JSON shape the caller asked for.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted wraps any other failure that survived every attempt,
	// such as repeated 5xx replies.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
