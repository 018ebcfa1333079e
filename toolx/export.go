package toolx

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// OpenAITools converts the registered tools to chat completion tool params.
func (r *ToolRegistry) OpenAITools() []openai.ChatCompletionToolParam {
	tools := r.List()
	result := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.ChatCompletionToolParam{
			Type: constant.Function("function"),
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name(),
				Description: openai.String(t.Description()),
				Parameters:  shared.FunctionParameters(t.Schema().Map()),
			},
		})
	}
	return result
}

// AnthropicTools converts the registered tools to Messages API tool params.
func (r *ToolRegistry) AnthropicTools() []anthropic.ToolUnionParam {
	tools := r.List()
	result := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := t.Schema()
		props := make(map[string]any, len(schema.Properties))
		for name, p := range schema.Properties {
			props[name] = map[string]any(p)
		}
		param := anthropic.ToolParam{
			Name:        t.Name(),
			Description: anthropic.String(t.Description()),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: props,
				Required:   append([]string(nil), schema.Required...),
			},
		}
		result = append(result, anthropic.ToolUnionParam{OfTool: &param})
	}
	return result
}
