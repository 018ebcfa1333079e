package toolx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/validatex"
)

// Tool is an operation a tool-calling host can invoke by name.
type Tool interface {
	Name() string
	Description() string
	Schema() *Schema
	// Call never fails: every problem is reported in the envelope.
	Call(ctx context.Context, args json.RawMessage) Envelope
}

// HandlerFunc is the typed body of a tool.
type HandlerFunc[In, Out any] func(ctx context.Context, in In) Result[Out]

type typedTool[In, Out any] struct {
	name        string
	description string
	schema      *Schema
	handler     HandlerFunc[In, Out]
}

// New builds a Tool whose arguments are decoded into In and checked with
// validatex before handler runs.
func New[In, Out any](name, description string, schema *Schema, handler HandlerFunc[In, Out]) Tool {
	if schema == nil {
		schema = NewSchema()
	}
	return &typedTool[In, Out]{
		name:        name,
		description: description,
		schema:      schema,
		handler:     handler,
	}
}

func (t *typedTool[In, Out]) Name() string        { return t.name }
func (t *typedTool[In, Out]) Description() string { return t.description }
func (t *typedTool[In, Out]) Schema() *Schema     { return t.schema }

func (t *typedTool[In, Out]) Call(ctx context.Context, args json.RawMessage) Envelope {
	return t.invoke(ctx, args).Envelope()
}

func (t *typedTool[In, Out]) invoke(ctx context.Context, args json.RawMessage) (result Result[Out]) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error("Tool %s panicked: %v", t.name, r)
			result = Fail[Out](Registry.NewWithMessage(ErrHandlerPanic, fmt.Sprintf("%s failed unexpectedly: %v", t.name, r)).
				WithDetail("tool", t.name))
		}
	}()

	in, err := Decode[In](args)
	if err != nil {
		return Fail[Out](err)
	}
	if err := validatex.Validate(&in); err != nil {
		return Fail[Out](err)
	}
	return t.handler(ctx, in)
}

// Decode unmarshals tool arguments into T. Empty or null arguments decode
// to the zero value; unknown fields are ignored.
func Decode[T any](args json.RawMessage) (T, error) {
	var in T
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return in, nil
	}
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return in, Registry.NewWithMessage(ErrInvalidArguments, "invalid arguments: "+describeDecodeError(err)).
			WithCause(err)
	}
	return in, nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has the wrong type (got %s)", typeErr.Field, typeErr.Value)
	}
	return err.Error()
}
