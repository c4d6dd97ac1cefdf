package llmstream

// ProviderID represents a unique provider identifier.
// Using a typed constant prevents typos and provides compile-time safety.
type ProviderID string

// Known provider identifiers
const (
	// ProviderOpenAI is OpenAI's chat completion API
	ProviderOpenAI ProviderID = "openai"

	// ProviderDeepSeek is DeepSeek's OpenAI-compatible API
	// (notable for the reasoning_content streaming channel)
	ProviderDeepSeek ProviderID = "deepseek"

	// ProviderAnthropic is Anthropic's Claude API
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderLorem is the mock Lorem provider for testing
	ProviderLorem ProviderID = "lorem"
)

// String returns the string representation of the provider ID
func (p ProviderID) String() string {
	return string(p)
}

// IsValid returns true if the provider ID is a known provider
func (p ProviderID) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderLorem:
		return true
	default:
		return false
	}
}
