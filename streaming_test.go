package llmstream

import (
	"errors"
	"testing"
)

func TestStreamEventHelpers(t *testing.T) {
	text := TextEvent("hello")
	if text.TextDelta == nil || *text.TextDelta != "hello" {
		t.Errorf("TextEvent = %+v", text)
	}
	if text.IsTerminal() {
		t.Error("text event should not be terminal")
	}

	call := ToolCallEvent(ToolCall{ID: "c1", Name: "lookup"})
	if call.ToolCall == nil || call.ToolCall.Name != "lookup" {
		t.Errorf("ToolCallEvent = %+v", call)
	}
	if call.IsTerminal() {
		t.Error("tool call event should not be terminal")
	}

	final := FinalEvent(Usage{PromptTokens: 3, TotalTokens: 10})
	if final.Final == nil || final.Final.Usage.TotalTokens != 10 {
		t.Errorf("FinalEvent = %+v", final)
	}
	if !final.IsTerminal() {
		t.Error("final event should be terminal")
	}

	errEv := ErrorEvent(errors.New("boom"))
	if errEv.Error == nil || !errEv.IsTerminal() {
		t.Errorf("ErrorEvent = %+v", errEv)
	}
}

func TestHasToolCalls(t *testing.T) {
	resp := &GenerateResponse{Content: "just text"}
	if resp.HasToolCalls() {
		t.Error("no tool calls expected")
	}

	resp.ToolCalls = []ToolCall{{ID: "c1", Name: "lookup"}}
	if !resp.HasToolCalls() {
		t.Error("tool calls expected")
	}
}

func TestMessageConstructors(t *testing.T) {
	user := UserMessage("hi")
	if user.Role != "user" || user.Content != "hi" {
		t.Errorf("UserMessage = %+v", user)
	}

	assistant := AssistantMessage("hello")
	if assistant.Role != "assistant" || assistant.Content != "hello" {
		t.Errorf("AssistantMessage = %+v", assistant)
	}

	tool := ToolResultMessage("call_1", "42")
	if tool.Role != "tool" || tool.ToolCallID != "call_1" || tool.Content != "42" {
		t.Errorf("ToolResultMessage = %+v", tool)
	}
}

func TestProviderIDValidity(t *testing.T) {
	for _, id := range []ProviderID{ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderLorem} {
		if !id.IsValid() {
			t.Errorf("%q should be valid", id)
		}
		if id.String() == "" {
			t.Errorf("%q has empty string form", id)
		}
	}

	if ProviderID("cohere").IsValid() {
		t.Error("unknown provider id should be invalid")
	}
}
