package openai

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// ChatCompletionRequest represents an OpenAI-compatible chat completion request.
type ChatCompletionRequest struct {
	Model            string      `json:"model"`
	Messages         []Message   `json:"messages"`
	MaxTokens        *int        `json:"max_tokens,omitempty"`
	Temperature      *float64    `json:"temperature,omitempty"`
	TopP             *float64    `json:"top_p,omitempty"`
	Stop             []string    `json:"stop,omitempty"`
	Seed             *int        `json:"seed,omitempty"`
	FrequencyPenalty *float64    `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64    `json:"presence_penalty,omitempty"`
	Stream           bool        `json:"stream"`
	Tools            []Tool      `json:"tools,omitempty"`
	ToolChoice       interface{} `json:"tool_choice,omitempty"` // "auto", "none", "required", or {"type": "function", "function": {"name": "..."}}
}

// Message represents a message in the conversation (wire format).
type Message struct {
	Role       string     `json:"role"` // "system", "user", "assistant", "tool"
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID *string    `json:"tool_call_id,omitempty"` // For role:"tool" messages
}

// ToolCall represents a function call in assistant messages (wire format).
type ToolCall struct {
	Index    *int         `json:"index,omitempty"` // Streaming only - position in the tool_calls array
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

// FunctionCall represents the function details of a tool call.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// Tool represents a function tool definition (wire format).
type Tool struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition represents a function tool definition.
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// ChatCompletionResponse represents a non-streaming chat completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"` // "chat.completion"
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage"`
}

// Choice represents a completion choice in the response.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason *string         `json:"finish_reason"` // "stop", "length", "tool_calls", "content_filter"
}

// ResponseMessage is the assistant message of a non-streaming response.
type ResponseMessage struct {
	Role             string     `json:"role"`
	Content          *string    `json:"content"`
	ReasoningContent *string    `json:"reasoning_content,omitempty"` // DeepSeek reasoning channel
	ToolCalls        []ToolCall `json:"tool_calls,omitempty"`
}

// Usage represents token usage in a response or final streaming chunk.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// buildChatCompletionRequest constructs a wire request from a GenerateRequest.
// Shared between GenerateResponse and StreamResponse.
func buildChatCompletionRequest(req *llmstream.GenerateRequest) (*ChatCompletionRequest, error) {
	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}

	messages, err := convertMessages(req.Messages, params.System)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	wireReq := &ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   false,
	}

	if params.MaxTokens != nil {
		wireReq.MaxTokens = params.MaxTokens
	}

	if params.Temperature != nil {
		wireReq.Temperature = params.Temperature
	}

	if params.TopP != nil {
		wireReq.TopP = params.TopP
	}

	if len(params.Stop) > 0 {
		wireReq.Stop = params.Stop
	}

	if params.Seed != nil {
		wireReq.Seed = params.Seed
	}

	if params.FrequencyPenalty != nil {
		wireReq.FrequencyPenalty = params.FrequencyPenalty
	}

	if params.PresencePenalty != nil {
		wireReq.PresencePenalty = params.PresencePenalty
	}

	if len(params.Tools) > 0 {
		wireReq.Tools = convertTools(params.Tools)
	}

	if params.ToolChoice != nil {
		toolChoice, err := convertToolChoice(params.ToolChoice)
		if err != nil {
			return nil, fmt.Errorf("failed to convert tool choice: %w", err)
		}
		wireReq.ToolChoice = toolChoice
	}

	return wireReq, nil
}

// buildRequestBody marshals the wire request and applies post-marshal edits:
// the streaming flags and any caller-supplied extra_body paths. Extra body
// values are set by dot-separated JSON path, so callers can reach provider
// extensions the typed request does not model.
func buildRequestBody(req *llmstream.GenerateRequest, stream bool) ([]byte, error) {
	wireReq, err := buildChatCompletionRequest(req)
	if err != nil {
		return nil, err
	}
	wireReq.Stream = stream

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if stream {
		// Ask for the usage-bearing final chunk.
		body, err = sjson.SetBytes(body, "stream_options.include_usage", true)
		if err != nil {
			return nil, fmt.Errorf("failed to set stream options: %w", err)
		}
	}

	if req.Params != nil {
		for path, value := range req.Params.ExtraBody {
			body, err = sjson.SetBytes(body, path, value)
			if err != nil {
				return nil, fmt.Errorf("failed to apply extra body path %q: %w", path, err)
			}
		}
	}

	return body, nil
}
