/*
Package errx provides structured errors with types, codes, details and an
HTTP status, plus per-package registries of predefined errors.

# Error Registry

Each package declares its errors once, with a prefixed code:

	var Registry = errx.NewRegistry("MSGX")

	var ErrInvalidInteractive = Registry.Register(
		"INVALID_INTERACTIVE", errx.TypeValidation, http.StatusBadRequest,
		"Invalid interactive message")

	err := Registry.NewWithMessage(ErrInvalidInteractive, "Maximum 3 buttons allowed").
		WithDetail("field", "buttons")

# Checking Errors

	if errx.IsCode(err, msgx.ErrInvalidInteractive) {
		// ...
	}

	if errx.IsType(err, errx.TypeRateLimit) {
		// ...
	}

# Messages

Message returns the human readable part of an error. Tool envelopes carry
it in their "error" field and the code from CodeOf in "error_code".

# HTTP

ToFiber writes the error as JSON with its HTTP status on a fiber context.
*/
package errx
