package llmstream

// GenerateResponse contains a provider's complete (non-streaming) response.
type GenerateResponse struct {
	// Content is the assistant's answer text.
	Content string

	// ToolCalls lists function invocations requested by the model, with
	// arguments already parsed.
	ToolCalls []ToolCall

	// Model is the model that was used (may differ from request if aliased).
	Model string

	// Usage is the provider's token accounting for this exchange.
	Usage Usage

	// StopReason indicates why generation stopped
	// (e.g. "end_turn", "max_tokens", "tool_use").
	StopReason string
}

// HasToolCalls returns true if the model requested at least one tool call.
func (r *GenerateResponse) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}
