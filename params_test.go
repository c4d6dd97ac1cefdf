package llmstream

import (
	"strings"
	"testing"
)

func intPtr(i int) *int {
	return &i
}

func floatPtr(f float64) *float64 {
	return &f
}

func boolPtr(b bool) *bool {
	return &b
}

func stringPtr(s string) *string {
	return &s
}

func TestGettersNilSafe(t *testing.T) {
	var params *RequestParams

	if got := params.GetMaxTokens(4096); got != 4096 {
		t.Errorf("GetMaxTokens on nil = %d, want 4096", got)
	}
	if got := params.GetTemperature(1.0); got != 1.0 {
		t.Errorf("GetTemperature on nil = %f, want 1.0", got)
	}
	if !params.GetIncludeReasonInContent() {
		t.Error("GetIncludeReasonInContent on nil should default to true")
	}
	if got := params.GetReasonTag(); got != "think" {
		t.Errorf("GetReasonTag on nil = %q, want think", got)
	}
}

func TestGettersSetValues(t *testing.T) {
	params := &RequestParams{
		MaxTokens:              intPtr(100),
		Temperature:            floatPtr(0.3),
		IncludeReasonInContent: boolPtr(false),
		ReasonTag:              stringPtr("reasoning"),
	}

	if got := params.GetMaxTokens(4096); got != 100 {
		t.Errorf("GetMaxTokens = %d, want 100", got)
	}
	if got := params.GetTemperature(1.0); got != 0.3 {
		t.Errorf("GetTemperature = %f, want 0.3", got)
	}
	if params.GetIncludeReasonInContent() {
		t.Error("GetIncludeReasonInContent should honor explicit false")
	}
	if got := params.GetReasonTag(); got != "reasoning" {
		t.Errorf("GetReasonTag = %q, want reasoning", got)
	}
}

func TestGetReasonTagEmptyFallsBack(t *testing.T) {
	params := &RequestParams{ReasonTag: stringPtr("")}

	if got := params.GetReasonTag(); got != DefaultReasonTag {
		t.Errorf("GetReasonTag = %q, want default %q", got, DefaultReasonTag)
	}
}

func TestValidateRequestParams(t *testing.T) {
	tests := []struct {
		name    string
		params  *RequestParams
		wantErr string
	}{
		{"nil params", nil, ""},
		{"empty params", &RequestParams{}, ""},
		{"valid temperature", &RequestParams{Temperature: floatPtr(0.7)}, ""},
		{"temperature too high", &RequestParams{Temperature: floatPtr(2.5)}, "temperature"},
		{"temperature negative", &RequestParams{Temperature: floatPtr(-0.1)}, "temperature"},
		{"top_p out of range", &RequestParams{TopP: floatPtr(1.5)}, "top_p"},
		{"max_tokens zero", &RequestParams{MaxTokens: intPtr(0)}, "max_tokens"},
		{"frequency penalty out of range", &RequestParams{FrequencyPenalty: floatPtr(3.0)}, "frequency_penalty"},
		{"presence penalty out of range", &RequestParams{PresencePenalty: floatPtr(-2.5)}, "presence_penalty"},
		{"reasoning budget zero", &RequestParams{ReasoningBudget: intPtr(0)}, "reasoning_budget"},
		{"reasoning budget valid", &RequestParams{ReasoningBudget: intPtr(1024)}, ""},
		{"specific tool choice without name", &RequestParams{
			ToolChoice: &ToolChoice{Mode: ToolChoiceModeSpecific},
		}, "tool_choice"},
		{"invalid tool", &RequestParams{
			Tools: []Tool{{Type: "function"}},
		}, "invalid tool 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequestParams(tt.params)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
