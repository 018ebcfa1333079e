package validatex

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidationFunc reports whether value satisfies the rule with the given param.
// The returned string describes the violation.
type ValidationFunc func(value any, param string) (bool, string)

var builtinValidationFuncs = map[string]ValidationFunc{
	"required": validateRequired,
	"min":      validateMin,
	"max":      validateMax,
	"oneof":    validateOneOf,
	"url":      validateURL,
}

var customValidationFuncs = map[string]ValidationFunc{}

// RegisterValidationFunc registers a custom validation function. Call it
// from init; the map is not guarded.
func RegisterValidationFunc(name string, fn ValidationFunc) {
	customValidationFuncs[name] = fn
}

func getValidationFunc(name string) (ValidationFunc, bool) {
	if fn, ok := customValidationFuncs[name]; ok {
		return fn, true
	}
	fn, ok := builtinValidationFuncs[name]
	return fn, ok
}

func validateRequired(value any, _ string) (bool, string) {
	return !isZero(value), "is required"
}

// validateMin checks string length in characters, collection length, or the
// numeric value itself.
func validateMin(value any, param string) (bool, string) {
	limit, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return false, fmt.Sprintf("has an invalid min rule %q", param)
	}
	n, isLen, ok := measure(value)
	if !ok {
		return true, ""
	}
	if isLen {
		return n >= limit, fmt.Sprintf("must be at least %s characters", param)
	}
	return n >= limit, fmt.Sprintf("must be at least %s", param)
}

func validateMax(value any, param string) (bool, string) {
	limit, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return false, fmt.Sprintf("has an invalid max rule %q", param)
	}
	n, isLen, ok := measure(value)
	if !ok {
		return true, ""
	}
	if isLen {
		return n <= limit, fmt.Sprintf("must be at most %s characters", param)
	}
	return n <= limit, fmt.Sprintf("must be at most %s", param)
}

// validateOneOf accepts values listed in param, separated by spaces
func validateOneOf(value any, param string) (bool, string) {
	str, ok := value.(string)
	if !ok || str == "" {
		return true, ""
	}
	options := strings.Fields(param)
	for _, opt := range options {
		if str == opt {
			return true, ""
		}
	}
	return false, fmt.Sprintf("must be one of [%s]", strings.Join(options, ", "))
}

func validateURL(value any, _ string) (bool, string) {
	str, ok := value.(string)
	if !ok || str == "" {
		return true, ""
	}
	u, err := url.ParseRequestURI(str)
	return err == nil && u.Host != "", "must be a valid URL"
}

// measure returns the comparable size of value. Unset optional pointers are
// skipped (ok=false) so min/max only apply to provided values.
func measure(value any) (n float64, isLen bool, ok bool) {
	v, isNil := dereferenceValue(value)
	if isNil {
		return 0, false, false
	}

	switch val := v.(type) {
	case string:
		return float64(utf8.RuneCountInString(val)), true, true
	case int:
		return float64(val), false, true
	case int64:
		return float64(val), false, true
	case float64:
		return val, false, true
	case float32:
		return float64(val), false, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(rv.Len()), true, true
	}
	return 0, false, false
}
