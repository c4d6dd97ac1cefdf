package llmstream

// GenerateRequest contains the parameters for an LLM generation request.
type GenerateRequest struct {
	// Messages contains the conversation history in arrival order.
	Messages []Message

	// Model is the model identifier (e.g. "deepseek-reasoner", "gpt-4o").
	Model string

	// Params contains all request parameters (sampling, tools, merge policy).
	// Provider adapters extract what they support from this unified struct.
	Params *RequestParams
}

// Message represents a single message in the conversation. The shape is the
// flat chat-completion form: text content plus, for assistant turns, the tool
// calls the model issued, and for tool turns, the ID of the call being
// answered.
type Message struct {
	// Role is "system", "user", "assistant" or "tool".
	Role string

	// Content is the message text. For role "tool" it carries the tool's
	// result, serialized however the tool chose to report it.
	Content string

	// ToolCalls lists calls issued by an assistant turn (empty otherwise).
	ToolCalls []ToolCall

	// ToolCallID links a role "tool" message back to the call it answers.
	ToolCallID string
}

// UserMessage builds a user-role message with plain text content.
func UserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}

// AssistantMessage builds an assistant-role message with plain text content.
func AssistantMessage(text string) Message {
	return Message{Role: "assistant", Content: text}
}

// ToolResultMessage builds a tool-role message answering the given call.
func ToolResultMessage(callID, result string) Message {
	return Message{Role: "tool", Content: result, ToolCallID: callID}
}
