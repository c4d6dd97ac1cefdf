package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// convertMessages converts library messages to Anthropic SDK format. The
// system role is handled by the top-level System parameter, so a leading
// system message is rejected here rather than silently dropped.
func convertMessages(messages []llmstream.Message) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for i, msg := range messages {
		switch msg.Role {
		case "user":
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				input := call.Arguments
				if input == nil {
					input = map[string]interface{}{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Name))
			}
			if len(blocks) == 0 {
				return nil, fmt.Errorf("message %d: assistant message has no content or tool calls", i)
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		case "tool":
			if msg.ToolCallID == "" {
				return nil, fmt.Errorf("message %d: tool message missing tool_call_id", i)
			}
			result = append(result, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
			))

		case "system":
			return nil, fmt.Errorf("message %d: system messages must be passed via RequestParams.System", i)

		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, msg.Role)
		}
	}

	return result, nil
}
