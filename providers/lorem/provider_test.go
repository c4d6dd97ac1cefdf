package lorem

import (
	"context"
	"errors"
	"strings"
	"testing"

	llmstream "github.com/mchen-dev/llmstream-go"
)

func intPtr(i int) *int {
	return &i
}

func collectEvents(t *testing.T, req *llmstream.GenerateRequest) []llmstream.StreamEvent {
	t.Helper()

	p := NewProvider()
	eventChan, err := p.StreamResponse(context.Background(), req)
	if err != nil {
		t.Fatalf("StreamResponse failed: %v", err)
	}

	var events []llmstream.StreamEvent
	for ev := range eventChan {
		events = append(events, ev)
	}
	return events
}

func TestSupportsModel(t *testing.T) {
	p := NewProvider()

	if !p.SupportsModel("lorem-fast") {
		t.Error("lorem-fast should be supported")
	}
	if p.SupportsModel("gpt-4o") {
		t.Error("gpt-4o should not be supported")
	}
}

func TestStreamRejectsUnknownModel(t *testing.T) {
	p := NewProvider()

	_, err := p.StreamResponse(context.Background(), &llmstream.GenerateRequest{
		Model:    "gpt-4o",
		Messages: []llmstream.Message{llmstream.UserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error for unsupported model")
	}
	if !errors.Is(err, llmstream.ErrInvalidModel) {
		t.Errorf("error = %v, want wrap of ErrInvalidModel", err)
	}
}

func TestStreamEmitsTextAndFinal(t *testing.T) {
	req := &llmstream.GenerateRequest{
		Model:    "lorem-fast",
		Messages: []llmstream.Message{llmstream.UserMessage("tell me things")},
		Params:   &llmstream.RequestParams{MaxTokens: intPtr(30)},
	}

	events := collectEvents(t, req)

	if len(events) < 2 {
		t.Fatalf("expected text and final events, got %d events", len(events))
	}

	last := events[len(events)-1]
	if last.Final == nil {
		t.Fatalf("last event should be Final, got %+v", last)
	}
	for _, ev := range events[:len(events)-1] {
		if ev.IsTerminal() {
			t.Fatalf("terminal event before end: %+v", ev)
		}
		if ev.TextDelta == nil {
			t.Fatalf("expected only text deltas before Final, got %+v", ev)
		}
	}

	if last.Final.Usage.TotalTokens <= last.Final.Usage.PromptTokens {
		t.Errorf("usage should count generated words: %+v", last.Final.Usage)
	}
}

func TestStreamReasonerEmitsTaggedPreamble(t *testing.T) {
	req := &llmstream.GenerateRequest{
		Model:    "lorem-fast-reasoner",
		Messages: []llmstream.Message{llmstream.UserMessage("think hard")},
		Params:   &llmstream.RequestParams{MaxTokens: intPtr(10)},
	}

	events := collectEvents(t, req)

	if len(events) == 0 || events[0].TextDelta == nil {
		t.Fatalf("expected leading text event, got %+v", events)
	}
	first := *events[0].TextDelta
	if !strings.HasPrefix(first, "<think>\n") || !strings.Contains(first, "</think>\n") {
		t.Errorf("reasoning preamble = %q, want <think> wrapped", first)
	}
}

func TestStreamMockToolCalls(t *testing.T) {
	searchTool, err := llmstream.NewSearchTool()
	if err != nil {
		t.Fatal(err)
	}

	req := &llmstream.GenerateRequest{
		Model:    "lorem-fast",
		Messages: []llmstream.Message{llmstream.UserMessage("find stuff")},
		Params: &llmstream.RequestParams{
			MaxTokens: intPtr(10),
			Tools:     []llmstream.Tool{*searchTool},
		},
	}

	events := collectEvents(t, req)

	var calls []llmstream.ToolCall
	for _, ev := range events {
		if ev.ToolCall != nil {
			calls = append(calls, *ev.ToolCall)
		}
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 mock tool call, got %d", len(calls))
	}
	if calls[0].Name != llmstream.ToolNameSearch {
		t.Errorf("tool call name = %q", calls[0].Name)
	}
	if _, ok := calls[0].Arguments["query"]; !ok {
		t.Errorf("search call missing query argument: %+v", calls[0].Arguments)
	}
}

func TestStreamCancellation(t *testing.T) {
	p := NewProvider()
	ctx, cancel := context.WithCancel(context.Background())

	req := &llmstream.GenerateRequest{
		Model:    "lorem-slow",
		Messages: []llmstream.Message{llmstream.UserMessage("hi")},
		Params:   &llmstream.RequestParams{MaxTokens: intPtr(1000)},
	}

	eventChan, err := p.StreamResponse(ctx, req)
	if err != nil {
		t.Fatalf("StreamResponse failed: %v", err)
	}

	<-eventChan
	cancel()

	// The channel must close without draining the whole response.
	count := 0
	for range eventChan {
		count++
		if count > 100 {
			t.Fatal("stream did not stop after cancellation")
		}
	}
}

func TestGenerateResponse(t *testing.T) {
	p := NewProvider()

	req := &llmstream.GenerateRequest{
		Model:    "lorem-fast",
		Messages: []llmstream.Message{llmstream.UserMessage("one two three")},
		Params:   &llmstream.RequestParams{MaxTokens: intPtr(20)},
	}

	resp, err := p.GenerateResponse(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateResponse failed: %v", err)
	}

	if resp.Content == "" {
		t.Error("expected non-empty content")
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if resp.Usage.PromptTokens != 3 {
		t.Errorf("prompt tokens = %d, want 3 (word count of input)", resp.Usage.PromptTokens)
	}
}
