// Package validatex checks struct fields against rules declared in a
// `validatex` tag:
//
//	type sendArgs struct {
//		To       string   `json:"to" validatex:"required"`
//		Latitude *float64 `json:"latitude" validatex:"required,min=-90,max=90"`
//		Format   string   `json:"format" validatex:"oneof=json openai anthropic"`
//	}
//
// Rules: required, min, max, oneof, url. min and max compare string length
// in characters, collection length, or numeric value.
package validatex

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Abraxas-365/watools/errx"
)

// Validatable lets a type add checks that tags cannot express. Validate
// calls it after the tag rules pass.
type Validatable interface {
	Validate() error
}

var Registry = errx.NewRegistry("VALIDATION")

var (
	ErrInvalidField = Registry.Register("INVALID_FIELD", errx.TypeValidation, http.StatusBadRequest, "Invalid field")
	ErrUnknownRule  = Registry.Register("UNKNOWN_RULE", errx.TypeInternal, http.StatusInternalServerError, "Unknown validation rule")
)

// Validate checks obj against its tags and stops at the first violation.
// The error message reads like "to is required".
func Validate(obj any) error {
	fields, err := structFields(obj)
	if err != nil {
		return errx.Wrap(err, "validation target is not a struct", errx.TypeInternal)
	}

	for _, field := range fields {
		for _, rule := range field.Rules {
			fn, ok := getValidationFunc(rule.Name)
			if !ok {
				return Registry.NewWithMessage(ErrUnknownRule, fmt.Sprintf("unknown validation rule %q on %s", rule.Name, field.Name))
			}
			if valid, reason := fn(field.Value, rule.Param); !valid {
				return Registry.NewWithMessage(ErrInvalidField, strings.TrimSpace(field.Name+" "+reason)).
					WithDetail("field", field.Name).
					WithDetail("rule", rule.Name)
			}
		}
	}

	if v, ok := obj.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
