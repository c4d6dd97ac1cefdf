package llmstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrInvalidModel indicates the requested model is not supported by the provider.
	ErrInvalidModel = errors.New("llmstream: invalid or unsupported model")

	// ErrInvalidAPIKey indicates the API key is missing, malformed, or unauthorized.
	ErrInvalidAPIKey = errors.New("llmstream: invalid API key")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("llmstream: rate limit exceeded")

	// ErrInvalidRequest indicates the request parameters are invalid.
	ErrInvalidRequest = errors.New("llmstream: invalid request")

	// ErrProviderUnavailable indicates the provider service is down or unreachable.
	ErrProviderUnavailable = errors.New("llmstream: provider unavailable")

	// ErrStreamTransport indicates the byte stream failed mid-read.
	// Surfaced as a terminal StreamEvent.Error wrapped in *StreamError.
	ErrStreamTransport = errors.New("llmstream: stream transport read failed")

	// ErrStreamDecode indicates the byte stream carried text that could not
	// be decoded. Surfaced as a terminal StreamEvent.Error wrapped in
	// *StreamError.
	ErrStreamDecode = errors.New("llmstream: stream decode failed")
)

// ProviderError represents an error from the underlying provider API,
// reported synchronously before any stream events are produced.
type ProviderError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code (if applicable)
	Message    string // Error message or response body text from the provider
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error (ErrRateLimited, ErrProviderUnavailable, etc.)
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider '%s' error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ModelError represents an error related to model validation or availability.
type ModelError struct {
	Model    string // The model that was requested
	Provider string // The provider name
	Reason   string // Human-readable explanation
	Err      error  // Wrapped error (usually ErrInvalidModel)
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model '%s' for provider '%s': %s (%v)", e.Model, e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("model '%s' for provider '%s': %s", e.Model, e.Provider, e.Reason)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// StreamError is a terminal mid-stream failure. Only transport reads and byte
// decoding abort a stream; malformed frames, orphan tool-call fragments and
// unparsable tool arguments are absorbed by the provider without surfacing.
type StreamError struct {
	Provider string // The provider name
	Err      error  // The underlying failure, wrapping ErrStreamTransport or ErrStreamDecode
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("provider '%s' stream aborted: %v", e.Provider, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a mid-stream read failure as a terminal StreamError.
func NewTransportError(provider string, cause error) *StreamError {
	return &StreamError{Provider: provider, Err: fmt.Errorf("%w: %v", ErrStreamTransport, cause)}
}

// NewDecodeError wraps an undecodable byte sequence as a terminal StreamError.
func NewDecodeError(provider string, detail string) *StreamError {
	return &StreamError{Provider: provider, Err: fmt.Errorf("%w: %s", ErrStreamDecode, detail)}
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits and temporary unavailability.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	if errors.Is(err, ErrProviderUnavailable) {
		return true
	}

	return false
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrInvalidAPIKey) {
		return true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		// HTTP 401/403 indicate auth issues
		return providerErr.StatusCode == 401 || providerErr.StatusCode == 403
	}

	return false
}
