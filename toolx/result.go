package toolx

import (
	"encoding/json"
	"errors"

	"github.com/Abraxas-365/watools/errx"
)

// Envelope is the wire form of a tool result. It always carries "success";
// failures add "error" and, for structured errors, "error_code".
type Envelope map[string]any

// Success reports the envelope's "success" flag.
func (e Envelope) Success() bool {
	ok, _ := e["success"].(bool)
	return ok
}

// Error returns the failure message, "" for successful envelopes.
func (e Envelope) Error() string {
	msg, _ := e["error"].(string)
	return msg
}

// JSON encodes the envelope. Values come from json.Marshal round trips, so
// encoding does not fail in practice.
func (e Envelope) JSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		data, _ = json.Marshal(Envelope{"success": false, "error": "failed to encode result: " + err.Error()})
	}
	return data
}

const unknownError = "unknown error"

// Result is the outcome of a tool handler: a payload of type T or an error.
// Handlers stay typed; the map form only exists once Envelope is called.
type Result[T any] struct {
	value T
	err   error
}

// OK wraps a successful payload.
func OK[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps an error. A nil error still produces a failure.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New(unknownError)
	}
	return Result[T]{err: err}
}

func (r Result[T]) IsOK() bool { return r.err == nil }
func (r Result[T]) Value() T   { return r.value }
func (r Result[T]) Err() error { return r.err }

// Envelope flattens the payload's JSON fields next to "success". Payloads
// that do not encode to an object are placed under "result".
func (r Result[T]) Envelope() Envelope {
	if r.err != nil {
		return failureEnvelope(r.err)
	}

	env := Envelope{}
	data, err := json.Marshal(r.value)
	if err != nil {
		return failureEnvelope(errx.Wrap(err, "failed to encode tool result", errx.TypeInternal))
	}
	if err := json.Unmarshal(data, &env); err != nil {
		var raw any
		_ = json.Unmarshal(data, &raw)
		env = Envelope{"result": raw}
	}
	if env == nil {
		env = Envelope{}
	}
	env["success"] = true
	return env
}

func failureEnvelope(err error) Envelope {
	msg := errx.Message(err)
	if msg == "" {
		msg = unknownError
	}
	env := Envelope{"success": false, "error": msg}
	if code := errx.CodeOf(err); code != "" {
		env["error_code"] = string(code)
	}
	return env
}
