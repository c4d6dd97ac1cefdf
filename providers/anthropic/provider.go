package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// Provider implements the llmstream.Provider interface for Anthropic (Claude)
// models. Claude streams structured content blocks rather than flat deltas;
// this provider reconciles them into the library's flat event model, treating
// thinking blocks as the reasoning channel.
type Provider struct {
	client *anthropic.Client
}

// NewProvider creates a new Anthropic provider with the given API key.
func NewProvider(apiKey string) (*Provider, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return llmstream.ProviderAnthropic
}

// SupportsModel returns true if this provider supports the given model.
// Anthropic models start with "claude-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "claude-")
}

func (p *Provider) validateModel(model string) error {
	if p.SupportsModel(model) {
		return nil
	}
	return &llmstream.ModelError{
		Model:    model,
		Provider: p.Name().String(),
		Reason:   "model not supported by Anthropic (must start with 'claude-')",
		Err:      llmstream.ErrInvalidModel,
	}
}

// GenerateResponse generates a non-streaming response from Claude.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmstream.GenerateRequest) (*llmstream.GenerateResponse, error) {
	if err := p.validateModel(req.Model); err != nil {
		return nil, err
	}
	if err := llmstream.ValidateRequestParams(req.Params); err != nil {
		return nil, err
	}

	apiParams, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	message, err := p.client.Messages.New(ctx, apiParams)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}

	return convertFromMessage(message, params)
}

// convertFromMessage converts a complete Claude message to library format,
// applying the reasoning merge policy to thinking blocks.
func convertFromMessage(msg *anthropic.Message, params *llmstream.RequestParams) (*llmstream.GenerateResponse, error) {
	var reasoning strings.Builder
	var content strings.Builder
	var toolCalls []llmstream.ToolCall

	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			content.WriteString(block.Text)

		case "thinking":
			reasoning.WriteString(block.Thinking)

		case "tool_use":
			arguments := make(map[string]interface{})
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &arguments); err != nil {
					return nil, fmt.Errorf("tool_use block %q has malformed input: %w", block.ID, err)
				}
			}
			toolCalls = append(toolCalls, llmstream.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: arguments,
			})
		}
	}

	finalContent := content.String()
	if reasoning.Len() > 0 && params.GetIncludeReasonInContent() {
		tag := params.GetReasonTag()
		finalContent = fmt.Sprintf("<%s>\n%s\n</%s>\n", tag, reasoning.String(), tag) + finalContent
	}

	return &llmstream.GenerateResponse{
		Content:   finalContent,
		ToolCalls: toolCalls,
		Model:     string(msg.Model),
		Usage: llmstream.Usage{
			PromptTokens: int(msg.Usage.InputTokens),
			TotalTokens:  int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
		StopReason: string(msg.StopReason),
	}, nil
}
