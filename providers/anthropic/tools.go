package anthropic

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	llmstream "github.com/mchen-dev/llmstream-go"
)

// convertTools converts library function tools to Anthropic's input_schema
// form. All tools here are client-executed function tools, so they all map to
// the custom tool shape.
func convertTools(tools []llmstream.Tool) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		result = append(result, convertTool(&tool))
	}
	return result
}

// convertTool converts one function tool. The OpenAI-style Parameters schema
// splits into Anthropic's Properties/Required fields plus ExtraFields for the
// rest of the schema.
func convertTool(tool *llmstream.Tool) anthropic.ToolUnionParam {
	properties := tool.Function.Parameters["properties"]

	schema := anthropic.ToolInputSchemaParam{
		Properties:  properties,
		ExtraFields: make(map[string]any),
	}

	switch required := tool.Function.Parameters["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		schema.Required = make([]string, 0, len(required))
		for _, v := range required {
			if str, ok := v.(string); ok {
				schema.Required = append(schema.Required, str)
			}
		}
	}

	for key, value := range tool.Function.Parameters {
		if key != "type" && key != "properties" && key != "required" {
			schema.ExtraFields[key] = value
		}
	}

	toolParam := anthropic.ToolUnionParamOfTool(schema, tool.Function.Name)

	if tool.Function.Description != "" && toolParam.OfTool != nil {
		toolParam.OfTool.Description = anthropic.String(tool.Function.Description)
	}

	return toolParam
}

// convertToolChoice converts library ToolChoice to Anthropic format.
// Returns nil if no tool choice specified (lets provider decide).
func convertToolChoice(choice *llmstream.ToolChoice) (*anthropic.ToolChoiceUnionParam, error) {
	if choice == nil {
		return nil, nil
	}

	if err := choice.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tool choice: %w", err)
	}

	switch choice.Mode {
	case llmstream.ToolChoiceModeAuto:
		return &anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}, nil

	case llmstream.ToolChoiceModeRequired:
		// Anthropic calls this "any"
		return &anthropic.ToolChoiceUnionParam{
			OfAny: &anthropic.ToolChoiceAnyParam{},
		}, nil

	case llmstream.ToolChoiceModeNone:
		noneParam := anthropic.NewToolChoiceNoneParam()
		return &anthropic.ToolChoiceUnionParam{
			OfNone: &noneParam,
		}, nil

	case llmstream.ToolChoiceModeSpecific:
		unionParam := anthropic.ToolChoiceParamOfTool(*choice.ToolName)
		return &unionParam, nil

	default:
		return nil, fmt.Errorf("unsupported tool choice mode: %s", choice.Mode)
	}
}
