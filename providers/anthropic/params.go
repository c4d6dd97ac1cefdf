package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// buildMessageParams constructs Anthropic API parameters from a
// GenerateRequest. Shared between GenerateResponse and StreamResponse.
func buildMessageParams(req *llmstream.GenerateRequest) (anthropic.MessageNewParams, error) {
	messages, err := convertMessages(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("failed to convert messages: %w", err)
	}

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}

	apiParams := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		Messages:  messages,
		MaxTokens: int64(params.GetMaxTokens(4096)),
	}

	if params.Temperature != nil {
		apiParams.Temperature = anthropic.Float(*params.Temperature)
	}

	if params.TopP != nil {
		apiParams.TopP = anthropic.Float(*params.TopP)
	}

	if len(params.Stop) > 0 {
		apiParams.StopSequences = params.Stop
	}

	if params.System != nil && *params.System != "" {
		apiParams.System = []anthropic.TextBlockParam{
			{
				Type: "text",
				Text: *params.System,
			},
		}
	}

	// Claude's thinking channel is opt-in with an explicit token budget.
	if params.ReasoningBudget != nil && *params.ReasoningBudget > 0 {
		apiParams.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(*params.ReasoningBudget))
	}

	if len(params.Tools) > 0 {
		apiParams.Tools = convertTools(params.Tools)
	}

	if params.ToolChoice != nil {
		toolChoice, err := convertToolChoice(params.ToolChoice)
		if err != nil {
			return anthropic.MessageNewParams{}, err
		}
		if toolChoice != nil {
			apiParams.ToolChoice = *toolChoice
		}
	}

	return apiParams, nil
}
