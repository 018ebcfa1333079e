package docx

import (
	"sort"

	"github.com/Abraxas-365/watools/toolx"
)

// ToolsRouter documents the HTTP tool routes for every tool in reg. With
// auth set, tool routes are marked as bearer protected.
func ToolsRouter(reg *toolx.ToolRegistry, auth bool) *RouterDoc {
	router := NewRouterDoc("/tools")

	access := None
	if auth {
		access = Bearer
	}

	router.AddEndpoint(NewEndpoint("", GET).
		WithSummary("List tools").
		WithDescription("Returns the name, description and input schema of every tool.").
		WithTags("tools").
		WithAuth(access))

	for _, tool := range reg.List() {
		schema := tool.Schema()
		router.AddEndpoint(NewEndpoint("/"+tool.Name(), POST).
			WithSummary(tool.Name()).
			WithDescription(tool.Description()).
			WithTags("tools").
			WithAuth(access).
			WithRequestSchema(schema.Map()).
			WithRequestExample(ExampleArguments(schema)).
			WithResponseExample(map[string]any{"success": true}))
	}

	return router
}

// ExampleArguments builds a request body holding every required argument
// of schema. Defaults are used when present, otherwise a placeholder of the
// argument's type.
func ExampleArguments(schema *toolx.Schema) map[string]any {
	required := append([]string(nil), schema.Required...)
	sort.Strings(required)

	example := make(map[string]any, len(required))
	for _, name := range required {
		example[name] = placeholder(name, schema.Properties[name])
	}
	return example
}

func placeholder(name string, p toolx.Property) any {
	if def, ok := p["default"]; ok {
		return def
	}
	switch p["type"] {
	case "number", "integer":
		return 0
	case "boolean":
		return false
	case "array":
		return []any{}
	case "object":
		return map[string]any{}
	default:
		return "<" + name + ">"
	}
}
