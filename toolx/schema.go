package toolx

import "encoding/json"

// Property is a JSON Schema fragment describing one argument.
type Property map[string]any

func String(description string) Property {
	return Property{"type": "string", "description": description}
}

func Number(description string) Property {
	return Property{"type": "number", "description": description}
}

func Integer(description string) Property {
	return Property{"type": "integer", "description": description}
}

func Boolean(description string) Property {
	return Property{"type": "boolean", "description": description}
}

// Array describes a list whose elements match items.
func Array(description string, items Property) Property {
	return Property{"type": "array", "description": description, "items": items}
}

// Object describes a nested object. It is used for array items, so the
// description may be empty.
func Object(description string, properties map[string]Property, required ...string) Property {
	p := Property{"type": "object", "properties": properties}
	if description != "" {
		p["description"] = description
	}
	if len(required) > 0 {
		p["required"] = required
	}
	return p
}

func (p Property) Default(v any) Property {
	p["default"] = v
	return p
}

func (p Property) MaxLength(n int) Property {
	p["maxLength"] = n
	return p
}

func (p Property) MaxItems(n int) Property {
	p["maxItems"] = n
	return p
}

func (p Property) Minimum(v float64) Property {
	p["minimum"] = v
	return p
}

func (p Property) Maximum(v float64) Property {
	p["maximum"] = v
	return p
}

// Schema is the input schema of a tool, always a JSON object.
type Schema struct {
	Properties map[string]Property
	Required   []string
}

func NewSchema() *Schema {
	return &Schema{Properties: map[string]Property{}}
}

// Optional adds an argument callers may omit.
func (s *Schema) Optional(name string, p Property) *Schema {
	s.Properties[name] = p
	return s
}

// Require adds an argument callers must send.
func (s *Schema) Require(name string, p Property) *Schema {
	s.Properties[name] = p
	s.Required = append(s.Required, name)
	return s
}

// Map returns the schema as a plain JSON Schema object.
func (s *Schema) Map() map[string]any {
	props := make(map[string]any, len(s.Properties))
	for name, p := range s.Properties {
		props[name] = map[string]any(p)
	}
	m := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(s.Required) > 0 {
		m["required"] = append([]string(nil), s.Required...)
	}
	return m
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}
