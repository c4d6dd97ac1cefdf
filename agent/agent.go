// Package agent layers conversation management on top of a provider: a
// system preamble, static context documents, tools paired with executors,
// and a multi-turn loop that runs tool calls until the model produces a
// final text answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// ErrMaxTurns indicates the tool loop hit its turn limit without the model
// producing a final answer.
var ErrMaxTurns = errors.New("agent: maximum tool turns exceeded")

// DefaultMaxTurns bounds the tool loop when no explicit limit is configured.
const DefaultMaxTurns = 10

// ToolExecutor runs a tool call and returns its result as text. Returned
// errors are fed back to the model as the tool result rather than aborting
// the conversation, so the model can recover or apologize.
type ToolExecutor func(ctx context.Context, args map[string]interface{}) (string, error)

// Agent wraps a provider with a fixed persona and tool set.
// Build one with NewBuilder; a built Agent is safe for concurrent use.
type Agent struct {
	provider    llmstream.Provider
	model       string
	preamble    string
	contextDocs []string
	params      llmstream.RequestParams
	tools       []llmstream.Tool
	executors   map[string]ToolExecutor
	maxTurns    int
}

// Builder assembles an Agent.
type Builder struct {
	agent Agent
	err   error
}

// NewBuilder starts building an agent for the given provider and model.
func NewBuilder(provider llmstream.Provider, model string) *Builder {
	b := &Builder{}
	b.agent.provider = provider
	b.agent.model = model
	b.agent.executors = make(map[string]ToolExecutor)
	b.agent.maxTurns = DefaultMaxTurns
	return b
}

// Preamble sets the system prompt.
func (b *Builder) Preamble(preamble string) *Builder {
	b.agent.preamble = preamble
	return b
}

// Context appends a static context document. Documents are included with the
// system prompt on every request.
func (b *Builder) Context(doc string) *Builder {
	b.agent.contextDocs = append(b.agent.contextDocs, doc)
	return b
}

// Params sets the request parameters used for every call. The builder takes
// ownership of System and Tools; set those through Preamble and Tool instead.
func (b *Builder) Params(params llmstream.RequestParams) *Builder {
	b.agent.params = params
	return b
}

// MaxTurns sets the tool loop limit.
func (b *Builder) MaxTurns(n int) *Builder {
	if n > 0 {
		b.agent.maxTurns = n
	}
	return b
}

// Tool registers a tool together with the executor that runs it.
func (b *Builder) Tool(tool *llmstream.Tool, executor ToolExecutor) *Builder {
	if b.err != nil {
		return b
	}
	if tool == nil || executor == nil {
		b.err = errors.New("agent: tool and executor are both required")
		return b
	}
	if err := tool.Validate(); err != nil {
		b.err = fmt.Errorf("agent: invalid tool %q: %w", tool.Function.Name, err)
		return b
	}
	if _, exists := b.agent.executors[tool.Function.Name]; exists {
		b.err = fmt.Errorf("agent: tool %q registered twice", tool.Function.Name)
		return b
	}
	b.agent.tools = append(b.agent.tools, *tool)
	b.agent.executors[tool.Function.Name] = executor
	return b
}

// Build finalizes the agent.
func (b *Builder) Build() (*Agent, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.agent.provider == nil {
		return nil, errors.New("agent: provider is required")
	}
	if b.agent.model == "" {
		return nil, errors.New("agent: model is required")
	}
	if !b.agent.provider.SupportsModel(b.agent.model) {
		return nil, &llmstream.ModelError{
			Model:    b.agent.model,
			Provider: b.agent.provider.Name().String(),
			Reason:   "model not supported by provider",
			Err:      llmstream.ErrInvalidModel,
		}
	}
	agent := b.agent
	return &agent, nil
}

// systemPrompt combines the preamble with the context documents.
func (a *Agent) systemPrompt() string {
	parts := make([]string, 0, len(a.contextDocs)+1)
	if a.preamble != "" {
		parts = append(parts, a.preamble)
	}
	for _, doc := range a.contextDocs {
		parts = append(parts, "<context>\n"+doc+"\n</context>")
	}
	return strings.Join(parts, "\n\n")
}

// requestParams builds per-call parameters from the configured base.
func (a *Agent) requestParams() *llmstream.RequestParams {
	params := a.params
	if system := a.systemPrompt(); system != "" {
		params.System = &system
	}
	if len(a.tools) > 0 {
		params.Tools = a.tools
	}
	return &params
}

// Prompt sends a single user prompt and runs the tool loop to completion.
func (a *Agent) Prompt(ctx context.Context, prompt string) (string, error) {
	return a.Chat(ctx, nil, prompt)
}

// Chat sends a prompt with prior conversation history and runs the tool loop
// to completion. The history is not mutated.
func (a *Agent) Chat(ctx context.Context, history []llmstream.Message, prompt string) (string, error) {
	messages := make([]llmstream.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llmstream.UserMessage(prompt))

	for turn := 0; turn < a.maxTurns; turn++ {
		resp, err := a.provider.GenerateResponse(ctx, &llmstream.GenerateRequest{
			Messages: messages,
			Model:    a.model,
			Params:   a.requestParams(),
		})
		if err != nil {
			return "", err
		}

		if !resp.HasToolCalls() {
			return resp.Content, nil
		}

		messages = append(messages, llmstream.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result := a.executeTool(ctx, call)
			messages = append(messages, llmstream.ToolResultMessage(call.ID, result))
		}
	}

	return "", ErrMaxTurns
}

// executeTool runs one tool call. Failures become the tool result text so
// the model sees what went wrong.
func (a *Agent) executeTool(ctx context.Context, call llmstream.ToolCall) string {
	executor, ok := a.executors[call.Name]
	if !ok {
		log.Printf("agent: model requested unregistered tool %q", call.Name)
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}

	result, err := executor(ctx, call.Arguments)
	if err != nil {
		log.Printf("agent: tool %q failed: %v", call.Name, err)
		return fmt.Sprintf("error: %v", err)
	}
	return result
}

// StreamChat streams the response to a prompt with prior history. Tool calls
// surface as events on the channel; the caller decides whether to execute
// them and continue the conversation.
func (a *Agent) StreamChat(ctx context.Context, history []llmstream.Message, prompt string) (<-chan llmstream.StreamEvent, error) {
	messages := make([]llmstream.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llmstream.UserMessage(prompt))

	return a.provider.StreamResponse(ctx, &llmstream.GenerateRequest{
		Messages: messages,
		Model:    a.model,
		Params:   a.requestParams(),
	})
}

// StreamPrompt streams the response to a single prompt without history.
func (a *Agent) StreamPrompt(ctx context.Context, prompt string) (<-chan llmstream.StreamEvent, error) {
	return a.StreamChat(ctx, nil, prompt)
}
