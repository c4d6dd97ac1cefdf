package llmstream

import "fmt"

// Default merge policy values, applied when the corresponding RequestParams
// fields are unset.
const (
	DefaultReasonTag = "think"
)

// RequestParams represents all request parameters across providers.
// All scalar fields are optional pointers to distinguish "not set" from
// "set to zero value"; provider adapters extract what they support.
type RequestParams struct {
	// ===== Sampling =====

	// MaxTokens sets the maximum number of tokens to generate.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-2.0).
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0).
	TopP *float64 `json:"top_p,omitempty"`

	// Stop sequences - generation stops if any of these are generated.
	Stop []string `json:"stop,omitempty"`

	// Seed for deterministic sampling (if supported by the provider).
	Seed *int `json:"seed,omitempty"`

	// FrequencyPenalty reduces repetition of token sequences (-2.0 to 2.0).
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`

	// PresencePenalty reduces repetition of topics (-2.0 to 2.0).
	PresencePenalty *float64 `json:"presence_penalty,omitempty"`

	// System prompt (preamble) sent ahead of the conversation.
	System *string `json:"system,omitempty"`

	// ===== Tools =====

	// Tools available for the model to use.
	Tools []Tool `json:"tools,omitempty"`

	// ToolChoice controls whether/which tools the model may use.
	ToolChoice *ToolChoice `json:"tool_choice,omitempty"`

	// ===== Reasoning merge policy =====
	//
	// Models such as deepseek-reasoner stream an auxiliary reasoning channel
	// alongside the answer text. The merge policy decides whether that
	// reasoning is folded into the visible answer (wrapped in ReasonTag) or
	// surfaced as its own text event ahead of the answer.

	// IncludeReasonInContent folds reasoning into the answer text when true.
	// Defaults to true.
	IncludeReasonInContent *bool `json:"include_reason_in_content,omitempty"`

	// ReasonTag is the wrapping tag for reasoning text, without brackets.
	// Defaults to "think", producing "<think>\n...\n</think>\n".
	ReasonTag *string `json:"include_reason_in_content_tag,omitempty"`

	// ReasoningBudget enables extended thinking with the given token budget
	// on providers that require an explicit opt-in (Anthropic). Providers
	// whose models always emit reasoning ignore it.
	ReasoningBudget *int `json:"reasoning_budget,omitempty"`

	// ===== Escape hatch =====

	// ExtraBody is merged into the serialized provider request verbatim,
	// for provider-specific parameters the typed fields do not cover.
	// Keys are dot-separated JSON paths.
	ExtraBody map[string]interface{} `json:"extra_body,omitempty"`
}

// GetMaxTokens returns max_tokens with default fallback.
func (rp *RequestParams) GetMaxTokens(defaultValue int) int {
	if rp != nil && rp.MaxTokens != nil {
		return *rp.MaxTokens
	}
	return defaultValue
}

// GetTemperature returns temperature with default fallback.
func (rp *RequestParams) GetTemperature(defaultValue float64) float64 {
	if rp != nil && rp.Temperature != nil {
		return *rp.Temperature
	}
	return defaultValue
}

// GetIncludeReasonInContent returns the merge policy flag, defaulting to true.
func (rp *RequestParams) GetIncludeReasonInContent() bool {
	if rp != nil && rp.IncludeReasonInContent != nil {
		return *rp.IncludeReasonInContent
	}
	return true
}

// GetReasonTag returns the reasoning wrap tag, defaulting to DefaultReasonTag.
func (rp *RequestParams) GetReasonTag() string {
	if rp != nil && rp.ReasonTag != nil && *rp.ReasonTag != "" {
		return *rp.ReasonTag
	}
	return DefaultReasonTag
}

// ValidateRequestParams validates request parameter ranges.
// A nil params struct is valid (all defaults).
func ValidateRequestParams(params *RequestParams) error {
	if params == nil {
		return nil
	}

	if params.Temperature != nil {
		if *params.Temperature < 0.0 || *params.Temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", *params.Temperature)
		}
	}

	if params.TopP != nil {
		if *params.TopP < 0.0 || *params.TopP > 1.0 {
			return fmt.Errorf("top_p must be between 0.0 and 1.0, got %f", *params.TopP)
		}
	}

	if params.MaxTokens != nil {
		if *params.MaxTokens < 1 {
			return fmt.Errorf("max_tokens must be positive, got %d", *params.MaxTokens)
		}
	}

	if params.FrequencyPenalty != nil {
		if *params.FrequencyPenalty < -2.0 || *params.FrequencyPenalty > 2.0 {
			return fmt.Errorf("frequency_penalty must be between -2.0 and 2.0, got %f", *params.FrequencyPenalty)
		}
	}

	if params.PresencePenalty != nil {
		if *params.PresencePenalty < -2.0 || *params.PresencePenalty > 2.0 {
			return fmt.Errorf("presence_penalty must be between -2.0 and 2.0, got %f", *params.PresencePenalty)
		}
	}

	if params.ReasoningBudget != nil {
		if *params.ReasoningBudget < 1 {
			return fmt.Errorf("reasoning_budget must be positive, got %d", *params.ReasoningBudget)
		}
	}

	if params.ToolChoice != nil {
		if err := params.ToolChoice.Validate(); err != nil {
			return fmt.Errorf("invalid tool_choice: %w", err)
		}
	}

	for i := range params.Tools {
		if err := params.Tools[i].Validate(); err != nil {
			return fmt.Errorf("invalid tool %d: %w", i, err)
		}
	}

	return nil
}
