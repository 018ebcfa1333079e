package msgx

import (
	"net/http"
	"time"

	"github.com/Abraxas-365/watools/errx"
)

// TypingIndicatorTTL is the longest a typing indicator stays visible
const TypingIndicatorTTL = 25 * time.Second

var Registry = errx.NewRegistry("MSGX")

var (
	ErrInvalidInteractive    = Registry.Register("INVALID_INTERACTIVE", errx.TypeValidation, http.StatusBadRequest, "Invalid interactive message")
	ErrInvalidMessage        = Registry.Register("INVALID_MESSAGE", errx.TypeValidation, http.StatusBadRequest, "Message rejected by provider")
	ErrSendFailed            = Registry.Register("SEND_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to send message")
	ErrRateLimitExceeded     = Registry.Register("RATE_LIMIT_EXCEEDED", errx.TypeRateLimit, http.StatusTooManyRequests, "Provider rate limit exceeded")
	ErrProviderUnavailable   = Registry.Register("PROVIDER_UNAVAILABLE", errx.TypeUnavailable, http.StatusServiceUnavailable, "Provider unavailable")
	ErrProviderConfigInvalid = Registry.Register("PROVIDER_CONFIG_INVALID", errx.TypeAuthorization, http.StatusUnauthorized, "Provider rejected the credentials")
	ErrUploadFailed          = Registry.Register("UPLOAD_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to upload media")
	ErrTemplatesUnavailable  = Registry.Register("TEMPLATES_UNAVAILABLE", errx.TypeConfiguration, http.StatusInternalServerError, "Template listing is not configured")
)
