package eventx

import (
	"net/http"

	"github.com/Abraxas-365/watools/errx"
)

var ErrorRegistry = errx.NewRegistry("EVENT")

var (
	ErrInvalidEventType    = ErrorRegistry.Register("INVALID_TYPE", errx.TypeInternal, http.StatusInternalServerError, "Event payload has an unexpected type")
	ErrSerializationFailed = ErrorRegistry.Register("SERIALIZATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to serialize event")
	ErrPublishFailed       = ErrorRegistry.Register("PUBLISH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to publish event")
	ErrBusClosed           = ErrorRegistry.Register("BUS_CLOSED", errx.TypeUnavailable, http.StatusServiceUnavailable, "Event bus is closed")
)
