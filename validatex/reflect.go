package validatex

import (
	"errors"
	"reflect"
	"strings"
)

var (
	ErrNotStruct = errors.New("value must be a struct")
)

// fieldInfo stores information about a struct field
type fieldInfo struct {
	Name  string
	Value any
	Rules []ruleInfo
}

// ruleInfo stores information about a validation rule
type ruleInfo struct {
	Name  string
	Param string
}

// structFields returns the tagged fields of obj in declaration order. Field
// names come from the json tag so messages match the wire argument names.
func structFields(obj any) ([]fieldInfo, error) {
	val := reflect.ValueOf(obj)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	typ := val.Type()
	fields := make([]fieldInfo, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("validatex")
		if tag == "" || tag == "-" {
			continue
		}

		fields = append(fields, fieldInfo{
			Name:  fieldName(field),
			Value: val.Field(i).Interface(),
			Rules: parseTag(tag),
		})
	}

	return fields, nil
}

func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

// parseTag parses a validatex tag string into validation rules
func parseTag(tag string) []ruleInfo {
	parts := strings.Split(tag, ",")
	rules := make([]ruleInfo, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, param, _ := strings.Cut(part, "=")
		rules = append(rules, ruleInfo{Name: name, Param: param})
	}

	return rules
}

// isZero checks if a value is the zero value for its type. A nil pointer is
// zero, a pointer to a zero value is not: optional numeric arguments use
// pointers so that 0 can be a real value.
func isZero(value any) bool {
	if value == nil {
		return true
	}

	val := reflect.ValueOf(value)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface:
		return val.IsNil()
	case reflect.String:
		return val.String() == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return val.Len() == 0
	default:
		return val.IsZero()
	}
}

// dereferenceValue safely dereferences a pointer value
func dereferenceValue(value any) (any, bool) {
	if value == nil {
		return nil, true
	}

	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr {
		return value, false
	}
	if val.IsNil() {
		return nil, true
	}
	return val.Elem().Interface(), false
}
