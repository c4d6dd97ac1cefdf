package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// StreamResponse generates a streaming response from Claude.
//
// Claude's stream is block-structured: content_block_start opens a text,
// thinking, or tool_use block at an index, deltas reference that index, and
// content_block_stop closes it. The reconciler flattens this into the
// library's event model: text deltas pass through (subject to the reasoning
// merge policy), thinking deltas feed the reasoning buffer, and tool blocks
// are emitted as complete ToolCall events when their block closes.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
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

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}

	eventChan := make(chan llmstream.StreamEvent, 10) // Buffered to prevent blocking

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

		stream := p.client.Messages.NewStreaming(ctx, apiParams)

		message := anthropic.Message{}
		blocks := newBlockTracker()
		merger := newThinkingMerger(params)

		for stream.Next() {
			event := stream.Current()

			if err := message.Accumulate(event); err != nil {
				send(llmstream.ErrorEvent(llmstream.NewDecodeError(p.Name().String(), err.Error())))
				return
			}

			switch e := event.AsAny().(type) {
			case anthropic.ContentBlockStartEvent:
				blocks.start(int(e.Index), string(e.ContentBlock.Type), e.ContentBlock.ID, e.ContentBlock.Name)

			case anthropic.ContentBlockDeltaEvent:
				switch e.Delta.Type {
				case "text_delta":
					if ev, emit := merger.text(e.Delta.Text); emit {
						if !send(ev) {
							return
						}
					}
				case "thinking_delta":
					merger.reason(e.Delta.Thinking)
				case "input_json_delta":
					blocks.appendArgs(int(e.Index), e.Delta.PartialJSON)
				}
				// signature_delta carries no user-visible content

			case anthropic.ContentBlockStopEvent:
				call, ok := blocks.finish(int(e.Index))
				if ok {
					if !send(llmstream.ToolCallEvent(call)) {
						return
					}
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(llmstream.ErrorEvent(llmstream.NewTransportError(p.Name().String(), err)))
			return
		}

		for _, ev := range merger.flush() {
			if !send(ev) {
				return
			}
		}

		send(llmstream.FinalEvent(llmstream.Usage{
			PromptTokens: int(message.Usage.InputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		}))
	}()

	return eventChan, nil
}

// blockTracker accumulates tool_use blocks by index until they close.
type blockTracker struct {
	blocks map[int]*toolBlock
}

type toolBlock struct {
	id   string
	name string
	args strings.Builder
}

func newBlockTracker() *blockTracker {
	return &blockTracker{blocks: make(map[int]*toolBlock)}
}

func (t *blockTracker) start(index int, blockType, id, name string) {
	if blockType != "tool_use" {
		return
	}
	t.blocks[index] = &toolBlock{id: id, name: name}
}

func (t *blockTracker) appendArgs(index int, partial string) {
	if block, ok := t.blocks[index]; ok {
		block.args.WriteString(partial)
	}
}

// finish closes the block at index. Returns the completed tool call if the
// block was a tool_use block with parseable input.
func (t *blockTracker) finish(index int) (llmstream.ToolCall, bool) {
	block, ok := t.blocks[index]
	if !ok {
		return llmstream.ToolCall{}, false
	}
	delete(t.blocks, index)

	arguments := make(map[string]interface{})
	if args := block.args.String(); strings.TrimSpace(args) != "" {
		if err := json.Unmarshal([]byte(args), &arguments); err != nil {
			log.Printf("anthropic: dropping tool call %q at block %d: malformed input JSON: %v", block.name, index, err)
			return llmstream.ToolCall{}, false
		}
	}

	return llmstream.ToolCall{
		ID:        block.id,
		Name:      block.name,
		Arguments: arguments,
	}, true
}

// thinkingMerger applies the reasoning merge policy to Claude's thinking
// channel, mirroring the behavior of the reasoning_content reconciliation in
// the OpenAI-compatible provider.
type thinkingMerger struct {
	includeInContent bool
	tag              string
	reasoning        strings.Builder
	content          strings.Builder
}

func newThinkingMerger(params *llmstream.RequestParams) *thinkingMerger {
	return &thinkingMerger{
		includeInContent: params.GetIncludeReasonInContent(),
		tag:              params.GetReasonTag(),
	}
}

func (m *thinkingMerger) reason(s string) {
	if s != "" {
		m.reasoning.WriteString(s)
	}
}

func (m *thinkingMerger) text(s string) (ev llmstream.StreamEvent, emit bool) {
	if s == "" {
		return llmstream.StreamEvent{}, false
	}
	if m.includeInContent && m.reasoning.Len() > 0 {
		m.content.WriteString(s)
		return llmstream.StreamEvent{}, false
	}
	return llmstream.TextEvent(s), true
}

// flush produces the end-of-stream text events. Thinking that is blank after
// trimming gets no tag block; only the content survives.
func (m *thinkingMerger) flush() []llmstream.StreamEvent {
	reasoning := m.reasoning.String()
	content := m.content.String()

	if strings.TrimSpace(reasoning) == "" {
		if content != "" {
			return []llmstream.StreamEvent{llmstream.TextEvent(content)}
		}
		return nil
	}

	wrapped := fmt.Sprintf("<%s>\n%s\n</%s>\n", m.tag, reasoning, m.tag)

	if m.includeInContent {
		return []llmstream.StreamEvent{llmstream.TextEvent(wrapped + content)}
	}

	events := []llmstream.StreamEvent{llmstream.TextEvent(wrapped)}
	if content != "" {
		events = append(events, llmstream.TextEvent(content))
	}
	return events
}
