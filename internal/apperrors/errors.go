package apperrors

import "errors"

// Sentinel errors for the processing and storage layers. Callers branch with
// errors.Is; sites that fail wrap these with fmt.Errorf("%w: ...") to attach
// detail.
var (
	// ErrInput marks malformed input to the processing facade (empty or
	// whitespace-only text, empty candidate label list).
	ErrInput = errors.New("invalid input")

	// ErrValidation marks malformed input to the store layer (empty text,
	// unknown task value).
	ErrValidation = errors.New("validation failed")

	// ErrExternalCapability marks a failure of the delegated NLP capability.
	// Non-recoverable for the current call: no retry, no fallback.
	ErrExternalCapability = errors.New("external capability failed")

	// ErrStoreCorrupt marks a backing file that exists but cannot be parsed
	// into the expected structure. Fatal for the session.
	ErrStoreCorrupt = errors.New("store corrupt")
)
