package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// completionChunk represents one streamed chat completion chunk.
type completionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"` // "chat.completion.chunk"
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage"` // present on the final chunk when requested
}

// chunkChoice represents a choice in a streaming chunk.
type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// chunkDelta represents incremental updates in a chunk.
type chunkDelta struct {
	Role             *string    `json:"role,omitempty"`
	Content          *string    `json:"content,omitempty"`
	ReasoningContent *string    `json:"reasoning_content,omitempty"` // DeepSeek thinking channel
	ToolCalls        []ToolCall `json:"tool_calls,omitempty"`
}

// StreamResponse starts a streaming chat completion. Failures of the initial
// request are returned synchronously; after the channel exists, all failures
// travel on it as the terminal event.
func (p *Provider) StreamResponse(ctx context.Context, req *llmstream.GenerateRequest) (<-chan llmstream.StreamEvent, error) {
	if err := llmstream.ValidateRequestParams(req.Params); err != nil {
		return nil, err
	}

	body, err := buildRequestBody(req, true)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.buildHTTPRequest(ctx, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s HTTP request failed: %w", p.id, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, p.handleErrorResponse(resp, req.Model)
	}

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}

	eventChan := make(chan llmstream.StreamEvent, 10) // Buffered to prevent blocking

	go func() {
		defer close(eventChan)
		defer resp.Body.Close()
		p.streamEvents(ctx, resp.Body, params, eventChan)
	}()

	return eventChan, nil
}

// streamEvents reads the SSE byte stream and reconciles it into library
// events: text deltas and tool calls during the stream, then reasoning/content
// flush, leftover tool calls, and exactly one terminal event.
func (p *Provider) streamEvents(ctx context.Context, body io.Reader, params *llmstream.RequestParams, eventChan chan<- llmstream.StreamEvent) {
	send := func(ev llmstream.StreamEvent) bool {
		select {
		case eventChan <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	decoder := newFrameDecoder()
	accumulator := newToolCallAccumulator()
	merger := newReasoningMerger(params)
	var usage llmstream.Usage

	buf := make([]byte, 4096)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			payloads, decErr := decoder.push(buf[:n])
			for _, payload := range payloads {
				if !p.processPayload(payload, accumulator, merger, &usage, send) {
					return
				}
			}
			if decErr != nil {
				send(llmstream.ErrorEvent(llmstream.NewDecodeError(p.id.String(), decErr.Error())))
				return
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			send(llmstream.ErrorEvent(llmstream.NewTransportError(p.id.String(), readErr)))
			return
		}
	}

	decoder.finish()

	for _, ev := range merger.flush() {
		if !send(ev) {
			return
		}
	}

	for _, call := range accumulator.drain() {
		if !send(llmstream.ToolCallEvent(call)) {
			return
		}
	}

	send(llmstream.FinalEvent(usage))
}

// processPayload parses one SSE data payload and feeds its deltas through the
// accumulator and merger. Returns false if the consumer went away.
func (p *Provider) processPayload(payload string, accumulator *toolCallAccumulator, merger *reasoningMerger, usage *llmstream.Usage, send func(llmstream.StreamEvent) bool) bool {
	var chunk completionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		// Some endpoints stream a bare error object instead of a chunk.
		// Either way the frame is dropped; only transport and byte decode
		// failures abort the stream.
		if msg := gjson.Get(payload, "error.message").String(); msg != "" {
			log.Printf("%s: in-stream error frame: %s", p.id, msg)
		} else {
			log.Printf("%s: dropping malformed frame: %v", p.id, err)
		}
		return true
	}

	if chunk.Usage != nil {
		// Last usage report wins.
		*usage = llmstream.Usage{
			PromptTokens: chunk.Usage.PromptTokens,
			TotalTokens:  chunk.Usage.TotalTokens,
		}
	}

	for _, choice := range chunk.Choices {
		delta := choice.Delta

		if delta.ReasoningContent != nil && *delta.ReasoningContent != "" {
			merger.reason(*delta.ReasoningContent)
		}

		for _, wireCall := range delta.ToolCalls {
			if !p.processToolCallDelta(wireCall, accumulator, send) {
				return false
			}
		}

		// Empty content deltas (role-only chunks, keep-alives) carry no
		// text and are not forwarded as events.
		if delta.Content != nil && *delta.Content != "" {
			if ev, emit := merger.text(*delta.Content); emit {
				if !send(ev) {
					return false
				}
			}
		}
	}

	return true
}

// processToolCallDelta routes one tool call fragment. A fragment with a name
// and no arguments starts (or restarts) accumulation at its index; a fragment
// with arguments and no name continues an existing accumulation; a fragment
// carrying both is complete on its own and is emitted immediately.
func (p *Provider) processToolCallDelta(wireCall ToolCall, accumulator *toolCallAccumulator, send func(llmstream.StreamEvent) bool) bool {
	index := 0
	if wireCall.Index != nil {
		index = *wireCall.Index
	}

	name := wireCall.Function.Name
	args := wireCall.Function.Arguments

	switch {
	case name != "" && args == "":
		accumulator.start(index, wireCall.ID, name)

	case name != "" && args != "":
		call, err := finalizeToolCall(wireCall.ID, name, args)
		if err != nil {
			log.Printf("%s: dropping tool call %q: %v", p.id, name, err)
			return true
		}
		return send(llmstream.ToolCallEvent(call))

	case args != "":
		if !accumulator.appendArgs(index, args) {
			log.Printf("%s: dropping orphan tool call fragment at index %d", p.id, index)
		}
	}

	return true
}

// toolCallAccumulator assembles tool calls whose arguments arrive as
// fragments across chunks, keyed by the provider-assigned index. Flush order
// is the order in which indexes first appeared.
type toolCallAccumulator struct {
	calls map[int]*partialToolCall
	order []int
}

type partialToolCall struct {
	id   string
	name string
	args strings.Builder
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{calls: make(map[int]*partialToolCall)}
}

// start begins accumulation at index. A second start at the same index
// replaces the previous accumulation but keeps its flush position.
func (a *toolCallAccumulator) start(index int, id, name string) {
	if _, exists := a.calls[index]; !exists {
		a.order = append(a.order, index)
	}
	a.calls[index] = &partialToolCall{id: id, name: name}
}

// appendArgs adds an argument fragment to the accumulation at index.
// Returns false if nothing was started there.
func (a *toolCallAccumulator) appendArgs(index int, args string) bool {
	partial, ok := a.calls[index]
	if !ok {
		return false
	}
	partial.args.WriteString(args)
	return true
}

// drain finalizes all accumulated calls in first-seen index order. Calls
// whose arguments never became valid JSON are dropped with a diagnostic.
func (a *toolCallAccumulator) drain() []llmstream.ToolCall {
	var out []llmstream.ToolCall
	for _, index := range a.order {
		partial := a.calls[index]
		call, err := finalizeToolCall(partial.id, partial.name, partial.args.String())
		if err != nil {
			log.Printf("openai: dropping tool call %q at index %d: %v", partial.name, index, err)
			continue
		}
		out = append(out, call)
	}
	a.calls = make(map[int]*partialToolCall)
	a.order = nil
	return out
}

// reasoningMerger buffers the reasoning channel and decides, delta by delta,
// whether content passes through immediately or is held for the final merge.
//
// Content is held only while merging is enabled and reasoning has actually
// arrived; otherwise it flows straight through so plain completions stream
// with no added latency.
type reasoningMerger struct {
	includeInContent bool
	tag              string
	reasoning        strings.Builder
	content          strings.Builder
}

func newReasoningMerger(params *llmstream.RequestParams) *reasoningMerger {
	return &reasoningMerger{
		includeInContent: params.GetIncludeReasonInContent(),
		tag:              params.GetReasonTag(),
	}
}

func (m *reasoningMerger) reason(s string) {
	m.reasoning.WriteString(s)
}

// text either returns an event to emit now (emit=true) or buffers the delta
// for the end-of-stream merge.
func (m *reasoningMerger) text(s string) (ev llmstream.StreamEvent, emit bool) {
	if m.includeInContent && m.reasoning.Len() > 0 {
		m.content.WriteString(s)
		return llmstream.StreamEvent{}, false
	}
	return llmstream.TextEvent(s), true
}

// flush produces the end-of-stream text events. With merging on, reasoning
// and held content collapse into a single tagged event; with merging off,
// reasoning is emitted as its own tagged event. Reasoning that is blank after
// trimming gets no tag block at all; only the content survives.
func (m *reasoningMerger) flush() []llmstream.StreamEvent {
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
