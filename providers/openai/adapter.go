package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// convertMessages converts library messages to wire format. A non-nil system
// prompt becomes a leading system message unless the conversation already
// starts with one.
func convertMessages(messages []llmstream.Message, system *string) ([]Message, error) {
	result := make([]Message, 0, len(messages)+1)

	if system != nil && *system != "" {
		hasSystem := len(messages) > 0 && messages[0].Role == "system"
		if !hasSystem {
			result = append(result, Message{Role: "system", Content: *system})
		}
	}

	for i, msg := range messages {
		switch msg.Role {
		case "system", "user":
			result = append(result, Message{Role: msg.Role, Content: msg.Content})

		case "assistant":
			wireMsg := Message{Role: "assistant", Content: msg.Content}
			for j, call := range msg.ToolCalls {
				wireCall, err := convertToolCallToWire(call)
				if err != nil {
					return nil, fmt.Errorf("message %d, tool call %d: %w", i, j, err)
				}
				wireMsg.ToolCalls = append(wireMsg.ToolCalls, wireCall)
			}
			result = append(result, wireMsg)

		case "tool":
			if msg.ToolCallID == "" {
				return nil, fmt.Errorf("message %d: tool message missing tool_call_id", i)
			}
			toolCallID := msg.ToolCallID
			result = append(result, Message{
				Role:       "tool",
				Content:    msg.Content,
				ToolCallID: &toolCallID,
			})

		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
	}

	return result, nil
}

// convertToolCallToWire converts a library ToolCall to wire format.
func convertToolCallToWire(call llmstream.ToolCall) (ToolCall, error) {
	args := call.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	argsJSON, err := json.Marshal(args)
	if err != nil {
		return ToolCall{}, fmt.Errorf("failed to marshal tool arguments: %w", err)
	}

	return ToolCall{
		ID:   call.ID,
		Type: "function",
		Function: FunctionCall{
			Name:      call.Name,
			Arguments: string(argsJSON),
		},
	}, nil
}

// convertTools converts library tool definitions to wire format.
func convertTools(tools []llmstream.Tool) []Tool {
	result := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		def := FunctionDefinition{
			Name:       tool.Function.Name,
			Parameters: tool.Function.Parameters,
		}
		if tool.Function.Description != "" {
			desc := tool.Function.Description
			def.Description = &desc
		}
		result = append(result, Tool{Type: "function", Function: def})
	}
	return result
}

// convertToolChoice converts library tool choice to wire format.
func convertToolChoice(tc *llmstream.ToolChoice) (interface{}, error) {
	if tc == nil {
		return "auto", nil
	}

	switch tc.Mode {
	case llmstream.ToolChoiceModeAuto:
		return "auto", nil
	case llmstream.ToolChoiceModeRequired:
		return "required", nil
	case llmstream.ToolChoiceModeNone:
		return "none", nil
	case llmstream.ToolChoiceModeSpecific:
		if tc.ToolName == nil {
			return nil, fmt.Errorf("specific tool choice requires tool_name")
		}
		return map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name": *tc.ToolName,
			},
		}, nil
	default:
		return "auto", nil
	}
}

// convertFromChatCompletionResponse converts a non-streaming wire response to
// library format, applying the same reasoning merge policy the streaming path
// uses.
func convertFromChatCompletionResponse(resp *ChatCompletionResponse, params *llmstream.RequestParams) (*llmstream.GenerateResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]

	var content string
	if choice.Message.Content != nil {
		content = *choice.Message.Content
	}

	if choice.Message.ReasoningContent != nil && *choice.Message.ReasoningContent != "" {
		if params.GetIncludeReasonInContent() {
			tag := params.GetReasonTag()
			content = fmt.Sprintf("<%s>\n%s\n</%s>\n", tag, *choice.Message.ReasoningContent, tag) + content
		}
	}

	var toolCalls []llmstream.ToolCall
	for _, wireCall := range choice.Message.ToolCalls {
		call, err := finalizeToolCall(wireCall.ID, wireCall.Function.Name, wireCall.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("invalid tool call %q: %w", wireCall.ID, err)
		}
		toolCalls = append(toolCalls, call)
	}

	var usage llmstream.Usage
	if resp.Usage != nil {
		usage = llmstream.Usage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	stopReason := ""
	if choice.FinishReason != nil {
		stopReason = mapFinishReason(*choice.FinishReason)
	}

	return &llmstream.GenerateResponse{
		Content:    content,
		ToolCalls:  toolCalls,
		Model:      resp.Model,
		Usage:      usage,
		StopReason: stopReason,
	}, nil
}

// finalizeToolCall parses an accumulated arguments string into a library
// ToolCall. Empty arguments become an empty map.
func finalizeToolCall(id, name, args string) (llmstream.ToolCall, error) {
	arguments := make(map[string]interface{})
	if strings.TrimSpace(args) != "" {
		if err := json.Unmarshal([]byte(args), &arguments); err != nil {
			return llmstream.ToolCall{}, fmt.Errorf("malformed arguments JSON %q: %w", args, err)
		}
	}

	return llmstream.ToolCall{
		ID:        id,
		Name:      name,
		Arguments: arguments,
	}, nil
}

// mapFinishReason maps the wire finish_reason to library stop_reason.
func mapFinishReason(finishReason string) string {
	switch finishReason {
	case "stop":
		return "end_turn"
	case "length":
		return "max_tokens"
	case "tool_calls":
		return "tool_use"
	case "content_filter":
		return "stop_sequence"
	default:
		return finishReason
	}
}
