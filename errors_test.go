package llmstream

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestProviderErrorUnwrap(t *testing.T) {
	err := &ProviderError{
		Provider:   "openai",
		StatusCode: 429,
		Message:    "slow down",
		Retryable:  true,
		Err:        ErrRateLimited,
	}

	if !errors.Is(err, ErrRateLimited) {
		t.Error("should unwrap to ErrRateLimited")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "slow down") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := &ModelError{
		Model:    "gpt-9",
		Provider: "openai",
		Reason:   "not found",
		Err:      ErrInvalidModel,
	}

	if !errors.Is(err, ErrInvalidModel) {
		t.Error("should unwrap to ErrInvalidModel")
	}

	var modelErr *ModelError
	if !errors.As(err, &modelErr) || modelErr.Model != "gpt-9" {
		t.Errorf("errors.As = %+v", modelErr)
	}
}

func TestStreamErrorConstructors(t *testing.T) {
	transport := NewTransportError("deepseek", fmt.Errorf("connection reset"))
	if !errors.Is(transport, ErrStreamTransport) {
		t.Error("transport error should wrap ErrStreamTransport")
	}
	if !strings.Contains(transport.Error(), "deepseek") {
		t.Errorf("message = %q", transport.Error())
	}

	decode := NewDecodeError("openai", "invalid UTF-8")
	if !errors.Is(decode, ErrStreamDecode) {
		t.Error("decode error should wrap ErrStreamDecode")
	}
	if errors.Is(decode, ErrStreamTransport) {
		t.Error("decode error should not match transport sentinel")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited sentinel", ErrRateLimited, true},
		{"unavailable sentinel", ErrProviderUnavailable, true},
		{"invalid request", ErrInvalidRequest, false},
		{"retryable provider error", &ProviderError{Retryable: true, Err: ErrProviderUnavailable}, true},
		{"non-retryable provider error", &ProviderError{StatusCode: 400, Err: ErrInvalidRequest}, false},
		{"wrapped rate limit", fmt.Errorf("call failed: %w", ErrRateLimited), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(ErrInvalidAPIKey) {
		t.Error("ErrInvalidAPIKey should be an auth error")
	}
	if !IsAuthError(&ProviderError{StatusCode: 401}) {
		t.Error("401 should be an auth error")
	}
	if !IsAuthError(&ProviderError{StatusCode: 403}) {
		t.Error("403 should be an auth error")
	}
	if IsAuthError(&ProviderError{StatusCode: 500}) {
		t.Error("500 should not be an auth error")
	}
	if IsAuthError(nil) {
		t.Error("nil should not be an auth error")
	}
}
