package toolx

import (
	"net/http"

	"github.com/Abraxas-365/watools/errx"
)

var Registry = errx.NewRegistry("TOOLX")

var (
	ErrInvalidArguments = Registry.Register("INVALID_ARGUMENTS", errx.TypeValidation, http.StatusBadRequest, "Invalid tool arguments")
	ErrUnknownTool      = Registry.Register("UNKNOWN_TOOL", errx.TypeNotFound, http.StatusNotFound, "Unknown tool")
	ErrDuplicateTool    = Registry.Register("DUPLICATE_TOOL", errx.TypeConflict, http.StatusConflict, "Tool already registered")
	ErrHandlerPanic     = Registry.Register("HANDLER_PANIC", errx.TypeInternal, http.StatusInternalServerError, "Tool handler failed unexpectedly")
)
