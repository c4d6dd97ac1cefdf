package llmstream

import (
	"context"
)

// Provider defines the interface that all LLM providers must implement.
// This abstraction allows supporting multiple providers (OpenAI-compatible
// endpoints, Anthropic, mocks) behind one consistent surface.
type Provider interface {
	// GenerateResponse generates a complete response (blocking).
	// Used for non-streaming scenarios or as a fallback.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// StreamResponse starts a streaming response. A non-success initial
	// response is reported synchronously via the returned error (typically
	// *ProviderError); once a channel is returned, all failures arrive as
	// stream events. The channel emits zero or more TextDelta/ToolCall
	// events and is closed after exactly one terminal event (Final on
	// success, Error otherwise). Cancelling ctx releases the underlying
	// transport promptly; a cancelled stream cannot be resumed.
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)

	// Name returns the provider identifier.
	Name() ProviderID

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}
