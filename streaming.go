package llmstream

// Usage is the token accounting snapshot reported by a provider.
// Streaming responses report running totals; each snapshot fully supersedes
// the one before it, so the last snapshot seen is the final accounting.
// The zero value means the provider never reported usage.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ToolCall is a completed function invocation request from the model.
// Arguments have already been parsed from the provider's serialized JSON;
// a call whose arguments never parse is dropped by the provider, so a
// ToolCall delivered to the consumer is always executable as-is.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

// FinalResponse is the terminal event of a stream. It is emitted exactly
// once, after all text and tool-call events, and carries the last usage
// snapshot observed on the wire.
type FinalResponse struct {
	Usage Usage
}

// StreamEvent is a single event in a streaming response. Exactly one field
// is non-nil per event:
//
//   - TextDelta: incremental (or merged terminal) answer text
//   - ToolCall: a fully reassembled tool invocation, ready to execute
//   - Final: stream completed normally; no further events follow
//   - Error: stream aborted; no further events follow
//
// Events are delivered over a channel owned by the provider. The channel is
// closed after the Final or Error event, whichever comes first.
//
// Usage:
//
//	events, err := provider.StreamResponse(ctx, req)
//	if err != nil { return err } // e.g. *ProviderError on a non-2xx response
//	for ev := range events {
//	  switch {
//	  case ev.TextDelta != nil: // append to transcript
//	  case ev.ToolCall != nil:  // execute the tool
//	  case ev.Final != nil:     // done; ev.Final.Usage is authoritative
//	  case ev.Error != nil:     // stream failed mid-flight
//	  }
//	}
type StreamEvent struct {
	TextDelta *string
	ToolCall  *ToolCall
	Final     *FinalResponse
	Error     error
}

// IsTerminal returns true if this event ends the stream (Final or Error).
func (e StreamEvent) IsTerminal() bool {
	return e.Final != nil || e.Error != nil
}

// TextEvent builds a TextDelta event from a string.
func TextEvent(s string) StreamEvent {
	return StreamEvent{TextDelta: &s}
}

// ToolCallEvent builds a ToolCall event.
func ToolCallEvent(call ToolCall) StreamEvent {
	return StreamEvent{ToolCall: &call}
}

// FinalEvent builds the terminal Final event carrying the given usage.
func FinalEvent(usage Usage) StreamEvent {
	return StreamEvent{Final: &FinalResponse{Usage: usage}}
}

// ErrorEvent builds a terminal Error event.
func ErrorEvent(err error) StreamEvent {
	return StreamEvent{Error: err}
}
