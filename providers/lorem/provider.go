package lorem

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// Provider is a mock LLM provider that generates lorem ipsum text.
// Used for testing and development without requiring real API keys.
//
// Model names control behavior:
//   - lorem-fast / lorem-medium / lorem-slow: streaming speed
//   - lorem-reasoner: emits a tagged reasoning preamble before the content
//   - lorem-cutoff / lorem-small: simulates a max_tokens cutoff
type Provider struct {
	generator *loremgen.Lorem
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider() *Provider {
	return &Provider{
		generator: loremgen.New(),
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return llmstream.ProviderLorem
}

// SupportsModel returns true if the model name starts with "lorem-".
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// getStreamDelay returns the delay between words based on the model name.
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond // 2 words/second
	}
	if strings.Contains(model, "fast") {
		return time.Millisecond
	}
	return 100 * time.Millisecond // default: 10 words/second
}

// isReasonerModel returns true if the model should emit a reasoning preamble.
func isReasonerModel(model string) bool {
	return strings.Contains(model, "reasoner")
}

// isCutoffModel returns true if the model should simulate a max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

func (p *Provider) validateModel(model string) error {
	if p.SupportsModel(model) {
		return nil
	}
	return &llmstream.ModelError{
		Model:    model,
		Provider: p.Name().String(),
		Reason:   "model not supported by Lorem provider (must start with 'lorem-')",
		Err:      llmstream.ErrInvalidModel,
	}
}

// GenerateResponse generates a complete lorem ipsum response after a short
// simulated processing delay.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmstream.GenerateRequest) (*llmstream.GenerateResponse, error) {
	if err := p.validateModel(req.Model); err != nil {
		return nil, err
	}

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}
	maxTokens := params.GetMaxTokens(256)

	select {
	case <-time.After(10 * getStreamDelay(req.Model)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	content := p.generateTextWords(maxTokens)

	if isReasonerModel(req.Model) && params.GetIncludeReasonInContent() {
		tag := params.GetReasonTag()
		reasoning := p.generateTextWords(20)
		content = fmt.Sprintf("<%s>\n%s\n</%s>\n", tag, reasoning, tag) + content
	}

	stopReason := "end_turn"
	if isCutoffModel(req.Model) {
		stopReason = "max_tokens"
	}

	promptTokens := p.estimateTokens(req.Messages)
	outputTokens := len(strings.Fields(content))

	return &llmstream.GenerateResponse{
		Content:    content,
		Model:      req.Model,
		Usage:      llmstream.Usage{PromptTokens: promptTokens, TotalTokens: promptTokens + outputTokens},
		StopReason: stopReason,
	}, nil
}

// StreamResponse generates a streaming lorem ipsum response. It produces the
// same event shape real providers do: text deltas word by word, a mock tool
// call when tools were requested, and a single Final event with usage.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
	if err := p.validateModel(req.Model); err != nil {
		return nil, err
	}

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}
	maxTokens := params.GetMaxTokens(256)

	eventChan := make(chan llmstream.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		send := func(ev llmstream.StreamEvent) bool {
			select {
			case eventChan <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		log.Printf("[LOREM] StreamResponse started: model=%s, tools=%d, max_tokens=%d",
			req.Model, len(params.Tools), maxTokens)

		outputTokens := 0

		// Reasoner models lead with a tagged reasoning preamble, the same
		// surface a reasoning-channel provider produces after merging.
		if isReasonerModel(req.Model) {
			tag := params.GetReasonTag()
			reasoning := p.generateTextWords(20)
			outputTokens += len(strings.Fields(reasoning))
			if !send(llmstream.TextEvent(fmt.Sprintf("<%s>\n%s\n</%s>\n", tag, reasoning, tag))) {
				return
			}
		}

		targetWords := maxTokens
		if isCutoffModel(req.Model) {
			targetWords = maxTokens / 2
		}

		delay := getStreamDelay(req.Model)
		words := strings.Fields(p.generateTextWords(targetWords))
		for _, word := range words {
			if !send(llmstream.TextEvent(word + " ")) {
				return
			}
			outputTokens++
			time.Sleep(delay)
		}

		// One mock call per requested tool, in request order.
		for i, tool := range params.Tools {
			call := p.mockToolCall(tool, i)
			if !send(llmstream.ToolCallEvent(call)) {
				return
			}
			outputTokens += 10
		}

		promptTokens := p.estimateTokens(req.Messages)
		send(llmstream.FinalEvent(llmstream.Usage{
			PromptTokens: promptTokens,
			TotalTokens:  promptTokens + outputTokens,
		}))
	}()

	return eventChan, nil
}

// mockToolCall fabricates a plausible invocation of the given tool.
func (p *Provider) mockToolCall(tool llmstream.Tool, index int) llmstream.ToolCall {
	var arguments map[string]interface{}

	switch tool.Function.Name {
	case llmstream.ToolNameSearch:
		arguments = map[string]interface{}{
			"query": "lorem ipsum dolor sit amet",
		}
	case llmstream.ToolNameBash:
		arguments = map[string]interface{}{
			"command": "echo 'lorem ipsum'",
		}
	default:
		arguments = map[string]interface{}{
			"input": "mock input for " + tool.Function.Name,
		}
	}

	return llmstream.ToolCall{
		ID:        fmt.Sprintf("lorem_%s_%d", tool.Function.Name, index),
		Name:      tool.Function.Name,
		Arguments: arguments,
	}
}

// generateTextWords generates lorem ipsum text with approximately targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens estimates the token count for a list of messages.
// Uses word count as a rough approximation.
func (p *Provider) estimateTokens(messages []llmstream.Message) int {
	totalWords := 0
	for _, msg := range messages {
		totalWords += len(strings.Fields(msg.Content))
	}
	return totalWords
}
