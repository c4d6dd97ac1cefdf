package llmstream

import (
	"errors"
	"fmt"
)

// Built-in tool names
const (
	ToolNameSearch = "search"
	ToolNameBash   = "bash"
)

// ToolChoiceMode controls tool selection behavior
type ToolChoiceMode string

const (
	ToolChoiceModeAuto     ToolChoiceMode = "auto"     // Model decides whether to use tools
	ToolChoiceModeRequired ToolChoiceMode = "required" // Model must use a tool
	ToolChoiceModeNone     ToolChoiceMode = "none"     // Model cannot use tools
	ToolChoiceModeSpecific ToolChoiceMode = "specific" // Model must use a specific tool
)

// FunctionDetails represents the function definition within a tool
// (OpenAI format). This is the universal standard used by OpenAI-compatible
// endpoints and converts cleanly to Anthropic's input_schema form.
type FunctionDetails struct {
	Name        string                 `json:"name"`                  // Function name (required)
	Description string                 `json:"description,omitempty"` // What the function does
	Parameters  map[string]interface{} `json:"parameters"`            // JSON Schema for parameters
}

// Tool represents a function tool (OpenAI universal format).
type Tool struct {
	Type     string          `json:"type"`     // Always "function" for function tools
	Function FunctionDetails `json:"function"` // Function definition
}

// Validate checks if the Tool is properly configured
func (t *Tool) Validate() error {
	if t.Type == "" {
		return errors.New("tool type is required")
	}

	if t.Type != "function" {
		return fmt.Errorf("unsupported tool type: %s (only 'function' is supported)", t.Type)
	}

	if t.Function.Name == "" {
		return errors.New("function name is required")
	}

	if t.Function.Parameters == nil {
		return errors.New("function parameters are required")
	}

	if schemaType, ok := t.Function.Parameters["type"].(string); !ok || schemaType != "object" {
		return errors.New("function parameters must be a JSON schema with type 'object'")
	}

	return nil
}

// ToolChoice specifies tool selection behavior
type ToolChoice struct {
	Mode     ToolChoiceMode // Selection mode
	ToolName *string        // Required when Mode is ToolChoiceModeSpecific
}

// Validate checks if the ToolChoice is properly configured
func (tc *ToolChoice) Validate() error {
	if tc.Mode == ToolChoiceModeSpecific {
		if tc.ToolName == nil || *tc.ToolName == "" {
			return errors.New("tool_name is required when mode is 'specific'")
		}
	}

	switch tc.Mode {
	case ToolChoiceModeAuto, ToolChoiceModeRequired, ToolChoiceModeNone, ToolChoiceModeSpecific:
		return nil
	default:
		return fmt.Errorf("invalid tool choice mode: %s", tc.Mode)
	}
}

// NewCustomTool creates a custom function tool (OpenAI format).
//
// Parameters must be a JSON Schema object, for example:
//
//	map[string]interface{}{
//	  "type": "object",
//	  "properties": map[string]interface{}{
//	    "location": map[string]interface{}{
//	      "type":        "string",
//	      "description": "The city and state, e.g. San Francisco, CA",
//	    },
//	  },
//	  "required": []string{"location"},
//	}
func NewCustomTool(name string, description string, parameters map[string]interface{}) (*Tool, error) {
	if name == "" {
		return nil, errors.New("tool name is required")
	}

	if description == "" {
		return nil, errors.New("tool description is required")
	}

	if parameters == nil {
		return nil, errors.New("parameters are required")
	}

	tool := &Tool{
		Type: "function",
		Function: FunctionDetails{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}

	if err := tool.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create custom tool: %w", err)
	}

	return tool, nil
}

// NewSearchTool creates a web search tool definition.
func NewSearchTool() (*Tool, error) {
	return NewCustomTool(ToolNameSearch, "Search the web for current information",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		})
}

// NewBashTool creates a shell command execution tool definition
// (client-side execution).
func NewBashTool() (*Tool, error) {
	return NewCustomTool(ToolNameBash, "Execute bash commands (client-side execution)",
		map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"description": "The bash command to execute",
				},
			},
			"required": []string{"command"},
		})
}
