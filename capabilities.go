package llmstream

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/capabilities/openai.yaml
var openaiCapabilitiesYAML []byte

//go:embed config/capabilities/deepseek.yaml
var deepseekCapabilitiesYAML []byte

//go:embed config/capabilities/anthropic.yaml
var anthropicCapabilitiesYAML []byte

// Capabilities Philosophy:
//
// This package provides MODEL METADATA for UX, pricing estimates, and
// informational purposes. It does NOT enforce validation - provider APIs are
// the source of truth.
//
// Capabilities may be outdated as providers release new models/features.
// Library users can override embedded capabilities by:
//  1. Calling LoadCapabilitiesFromFile() with custom YAML
//  2. Calling RegisterProviderCapabilities() programmatically

// ProviderCapabilities represents the full capability configuration for a provider
type ProviderCapabilities struct {
	Version     string                     `yaml:"version"`      // Semantic version (e.g., "1.0.0")
	LastUpdated string                     `yaml:"last_updated"` // ISO 8601 date (e.g., "2026-08-30")
	Provider    string                     `yaml:"provider"`
	Models      map[string]ModelCapability `yaml:"models"`
	Constraints ProviderConstraints        `yaml:"constraints"`
}

// ModelCapability represents the capabilities of a specific model
type ModelCapability struct {
	ContextWindow   int                 `yaml:"context_window"`
	MaxOutputTokens int                 `yaml:"max_output_tokens"`
	Features        ModelFeatures       `yaml:"features"`
	Reasoning       ReasoningCapability `yaml:"reasoning"`
	Pricing         PricingInfo         `yaml:"pricing"`
}

// ModelFeatures indicates which features a model supports
type ModelFeatures struct {
	Vision    bool `yaml:"vision"`
	Tools     bool `yaml:"tools"`
	Reasoning bool `yaml:"reasoning"` // Emits a separate reasoning channel while streaming
	Streaming bool `yaml:"streaming"`
}

// ReasoningCapability defines reasoning/thinking token constraints
type ReasoningCapability struct {
	MinBudget int `yaml:"min_budget"`
	MaxBudget int `yaml:"max_budget"`
}

// PricingInfo contains model pricing information
type PricingInfo struct {
	InputPer1M  float64 `yaml:"input_per_1m"`
	OutputPer1M float64 `yaml:"output_per_1m"`
}

// ProviderConstraints defines provider-wide parameter limits
type ProviderConstraints struct {
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	TopPMin        float64 `yaml:"top_p_min"`
	TopPMax        float64 `yaml:"top_p_max"`
}

// CapabilityRegistry manages provider capabilities
type CapabilityRegistry struct {
	capabilities map[string]*ProviderCapabilities
	mu           sync.RWMutex
}

var (
	globalRegistry     *CapabilityRegistry
	globalRegistryOnce sync.Once
)

// GetCapabilityRegistry returns the global capability registry (singleton)
func GetCapabilityRegistry() *CapabilityRegistry {
	globalRegistryOnce.Do(func() {
		globalRegistry = &CapabilityRegistry{
			capabilities: make(map[string]*ProviderCapabilities),
		}
		embedded := map[string][]byte{
			"openai":    openaiCapabilitiesYAML,
			"deepseek":  deepseekCapabilitiesYAML,
			"anthropic": anthropicCapabilitiesYAML,
		}
		for name, data := range embedded {
			if err := globalRegistry.loadEmbedded(name, data); err != nil {
				// Log but don't panic - providers still work without metadata
				log.Printf("Warning: failed to load %s capabilities: %v", name, err)
			}
		}
	})
	return globalRegistry
}

// loadEmbedded parses an embedded YAML blob into the registry
func (r *CapabilityRegistry) loadEmbedded(provider string, data []byte) error {
	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal %s capabilities: %w", provider, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[provider] = &caps

	return nil
}

// GetProviderCapabilities returns capabilities for a provider
func (r *CapabilityRegistry) GetProviderCapabilities(provider string) (*ProviderCapabilities, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps, ok := r.capabilities[provider]
	if !ok {
		return nil, fmt.Errorf("no capabilities found for provider: %s", provider)
	}
	return caps, nil
}

// GetModelCapability returns capabilities for a specific model
func (r *CapabilityRegistry) GetModelCapability(provider, model string) (*ModelCapability, error) {
	providerCaps, err := r.GetProviderCapabilities(provider)
	if err != nil {
		return nil, err
	}

	modelCap, ok := providerCaps.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %s not found for provider %s", model, provider)
	}
	return &modelCap, nil
}

// SupportsModel checks if a provider supports a specific model
func (r *CapabilityRegistry) SupportsModel(provider, model string) bool {
	_, err := r.GetModelCapability(provider, model)
	return err == nil
}

// SupportsTools checks if a model supports tools
func (r *CapabilityRegistry) SupportsTools(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.Tools
}

// SupportsReasoning checks if a model emits a separate reasoning channel
func (r *CapabilityRegistry) SupportsReasoning(provider, model string) bool {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return false
	}
	return modelCap.Features.Reasoning
}

// GetReasoningBudgetRange returns the valid reasoning token budget for a model
func (r *CapabilityRegistry) GetReasoningBudgetRange(provider, model string) (min int, max int, err error) {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return 0, 0, err
	}
	return modelCap.Reasoning.MinBudget, modelCap.Reasoning.MaxBudget, nil
}

// EstimateCost returns a rough dollar cost for the given usage.
// Returns an error if the model has no pricing metadata.
func (r *CapabilityRegistry) EstimateCost(provider, model string, usage Usage) (float64, error) {
	modelCap, err := r.GetModelCapability(provider, model)
	if err != nil {
		return 0, err
	}

	completionTokens := usage.TotalTokens - usage.PromptTokens
	if completionTokens < 0 {
		completionTokens = 0
	}

	cost := float64(usage.PromptTokens)/1e6*modelCap.Pricing.InputPer1M +
		float64(completionTokens)/1e6*modelCap.Pricing.OutputPer1M
	return cost, nil
}

// LoadCapabilitiesFromFile loads provider capabilities from a YAML file.
// This allows library users to override embedded capabilities with custom data.
// The file format should match the embedded YAML structure.
func (r *CapabilityRegistry) LoadCapabilitiesFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read capabilities file: %w", err)
	}

	var caps ProviderCapabilities
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return fmt.Errorf("failed to unmarshal capabilities: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[caps.Provider] = &caps

	return nil
}

// RegisterProviderCapabilities programmatically registers provider capabilities.
// This allows library users to define capabilities in code rather than YAML.
func (r *CapabilityRegistry) RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[provider] = caps
}

// LoadCapabilitiesFromFile is a convenience function that calls the global registry's LoadCapabilitiesFromFile.
func LoadCapabilitiesFromFile(path string) error {
	return GetCapabilityRegistry().LoadCapabilitiesFromFile(path)
}

// RegisterProviderCapabilities is a convenience function that calls the global registry's RegisterProviderCapabilities.
func RegisterProviderCapabilities(provider string, caps *ProviderCapabilities) {
	GetCapabilityRegistry().RegisterProviderCapabilities(provider, caps)
}
