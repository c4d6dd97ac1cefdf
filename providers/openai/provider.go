package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	llmstream "github.com/mchen-dev/llmstream-go"
)

const (
	openaiBaseURL   = "https://api.openai.com/v1"
	deepseekBaseURL = "https://api.deepseek.com"
)

// Provider implements the llmstream.Provider interface for OpenAI-compatible
// chat completion endpoints. The same implementation serves OpenAI itself and
// compatible vendors such as DeepSeek, which differ only in base URL and in
// which delta fields they populate (DeepSeek adds reasoning_content).
type Provider struct {
	id         llmstream.ProviderID
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewProvider creates a provider pointed at OpenAI's API.
func NewProvider(apiKey string) (*Provider, error) {
	return newProvider(llmstream.ProviderOpenAI, apiKey, openaiBaseURL)
}

// NewDeepSeekProvider creates a provider pointed at DeepSeek's
// OpenAI-compatible API. DeepSeek's reasoner models stream thinking text on
// the reasoning_content channel, which this provider merges into content
// according to the request's reasoning options.
func NewDeepSeekProvider(apiKey string) (*Provider, error) {
	return newProvider(llmstream.ProviderDeepSeek, apiKey, deepseekBaseURL)
}

// NewCompatibleProvider creates a provider for any other OpenAI-compatible
// endpoint (local inference servers, gateways).
func NewCompatibleProvider(id llmstream.ProviderID, apiKey, baseURL string) (*Provider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	return newProvider(id, apiKey, strings.TrimSuffix(baseURL, "/"))
}

func newProvider(id llmstream.ProviderID, apiKey, baseURL string) (*Provider, error) {
	if apiKey == "" {
		return nil, llmstream.ErrInvalidAPIKey
	}

	return &Provider{
		id:         id,
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() llmstream.ProviderID {
	return p.id
}

// SupportsModel returns true if this provider supports the given model.
// Capability metadata is advisory and may lag behind new releases, so models
// it does not know are still accepted; the API is the source of truth.
func (p *Provider) SupportsModel(model string) bool {
	if llmstream.GetCapabilityRegistry().SupportsModel(p.id.String(), model) {
		return true
	}
	return model != ""
}

// GenerateResponse generates a non-streaming response.
func (p *Provider) GenerateResponse(ctx context.Context, req *llmstream.GenerateRequest) (*llmstream.GenerateResponse, error) {
	if err := llmstream.ValidateRequestParams(req.Params); err != nil {
		return nil, err
	}

	body, err := buildRequestBody(req, false)
	if err != nil {
		return nil, err
	}

	httpReq, err := p.buildHTTPRequest(ctx, body)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s HTTP request failed: %w", p.id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.handleErrorResponse(resp, req.Model)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	params := req.Params
	if params == nil {
		params = &llmstream.RequestParams{}
	}

	response, err := convertFromChatCompletionResponse(&chatResp, params)
	if err != nil {
		return nil, fmt.Errorf("failed to convert response: %w", err)
	}

	return response, nil
}

// buildHTTPRequest creates a POST to the chat completions endpoint.
func (p *Provider) buildHTTPRequest(ctx context.Context, body []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return httpReq, nil
}

// handleErrorResponse maps a non-success HTTP response to a library error.
func (p *Provider) handleErrorResponse(resp *http.Response, model string) error {
	body, _ := io.ReadAll(resp.Body)

	message := gjson.GetBytes(body, "error.message").String()
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	switch resp.StatusCode {
	case 401, 403:
		return &llmstream.ProviderError{
			Provider:   p.id.String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  false,
			Err:        llmstream.ErrInvalidAPIKey,
		}
	case 404:
		if message == "" {
			message = "model not found"
		}
		return &llmstream.ModelError{
			Model:    model,
			Provider: p.id.String(),
			Reason:   message,
			Err:      llmstream.ErrInvalidModel,
		}
	case 429:
		return &llmstream.ProviderError{
			Provider:   p.id.String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  true,
			Err:        llmstream.ErrRateLimited,
		}
	case 400, 422:
		return &llmstream.ProviderError{
			Provider:   p.id.String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  false,
			Err:        llmstream.ErrInvalidRequest,
		}
	default:
		return &llmstream.ProviderError{
			Provider:   p.id.String(),
			StatusCode: resp.StatusCode,
			Message:    message,
			Retryable:  resp.StatusCode >= 500,
			Err:        llmstream.ErrProviderUnavailable,
		}
	}
}
