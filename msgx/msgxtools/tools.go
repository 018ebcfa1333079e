package msgxtools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Abraxas-365/watools/configx"
	"github.com/Abraxas-365/watools/errx"
	"github.com/Abraxas-365/watools/eventx"
	"github.com/Abraxas-365/watools/fsx"
	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/metricx"
	"github.com/Abraxas-365/watools/msgx"
	"github.com/Abraxas-365/watools/msgx/providers/msgxwhatsapp"
	"github.com/Abraxas-365/watools/toolx"
)

// Configuration keys read by Initialize
const (
	KeyPhoneID           = "WHATSAPP_PHONE_ID"
	KeyToken             = "WHATSAPP_TOKEN"
	KeyBusinessAccountID = "WHATSAPP_BUSINESS_ACCOUNT_ID"
	KeyAPIVersion        = "WHATSAPP_API_VERSION"
	KeyBaseURL           = "WHATSAPP_BASE_URL"
	KeyHTTPTimeout       = "WHATSAPP_HTTP_TIMEOUT"
)

var Registry = errx.NewRegistry("CONFIG")

// ErrConfigMissing is the ConfigError Initialize returns when credentials
// are absent. Hosts log it and serve without tools.
var ErrConfigMissing = Registry.Register("MISSING_CREDENTIALS", errx.TypeConfiguration, http.StatusInternalServerError,
	"Missing required environment variables: WHATSAPP_PHONE_ID and WHATSAPP_TOKEN")

// IsConfigError reports whether err is a configuration failure
func IsConfigError(err error) bool {
	return errx.IsType(err, errx.TypeConfiguration)
}

// MediaSource opens the files upload_media sends
type MediaSource interface {
	Open(ctx context.Context, location string) (fsx.File, error)
}

// Toolset owns the provider client and builds the tool handlers around it.
// It is read-only after construction, so its tools can run concurrently.
type Toolset struct {
	client  msgx.Client
	media   MediaSource
	events  eventx.Publisher
	metrics *metricx.Metrics
}

type Option func(*Toolset)

// WithClient injects the provider client instead of building one from config
func WithClient(client msgx.Client) Option {
	return func(t *Toolset) { t.client = client }
}

func WithMediaSource(media MediaSource) Option {
	return func(t *Toolset) { t.media = media }
}

// WithEvents publishes a tool.invoked event after every call. Publish
// errors are logged and never change the call's result.
func WithEvents(events eventx.Publisher) Option {
	return func(t *Toolset) { t.events = eventx.BestEffort(events) }
}

func WithMetrics(metrics *metricx.Metrics) Option {
	return func(t *Toolset) { t.metrics = metrics }
}

// Initialize checks the WhatsApp credentials in cfg and builds the toolset.
// Missing credentials return ErrConfigMissing and no toolset.
func Initialize(cfg configx.Config, opts ...Option) (*Toolset, error) {
	if err := cfg.RequireEnv(KeyPhoneID, KeyToken); err != nil {
		return nil, Registry.New(ErrConfigMissing).
			WithCause(err).
			WithDetail("missing", missingKeys(err))
	}

	ts := newToolset(opts...)
	if ts.client == nil {
		client, err := msgxwhatsapp.NewClient(msgxwhatsapp.WhatsAppConfig{
			AccessToken:       cfg.Get(KeyToken).AsString(),
			PhoneNumberID:     cfg.Get(KeyPhoneID).AsString(),
			BusinessAccountID: cfg.Get(KeyBusinessAccountID).AsString(),
			APIVersion:        cfg.Get(KeyAPIVersion).AsString(),
			BaseURL:           cfg.Get(KeyBaseURL).AsString(),
			HTTPTimeout:       cfg.Get(KeyHTTPTimeout).AsDurationDefault(0),
		})
		if err != nil {
			return nil, err
		}
		ts.client = client
	}

	logx.Info("WhatsApp client configuration validated")
	return ts, nil
}

// New builds a toolset around an existing client
func New(client msgx.Client, opts ...Option) *Toolset {
	return newToolset(append([]Option{WithClient(client)}, opts...)...)
}

func newToolset(opts ...Option) *Toolset {
	ts := &Toolset{
		media:  fsx.Router{Local: fsx.NewLocalFS("")},
		events: eventx.Discard,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

func missingKeys(err error) any {
	var xerr *errx.Error
	if errors.As(err, &xerr) && xerr.Details["missing"] != nil {
		return xerr.Details["missing"]
	}
	return []string{KeyPhoneID, KeyToken}
}

// Tools returns every tool in a stable order
func (t *Toolset) Tools() []toolx.Tool {
	tools := append(t.messagingTools(), t.interactiveTools()...)
	return append(tools, t.templateTools()...)
}

// Register adds every tool to reg
func (t *Toolset) Register(reg *toolx.ToolRegistry) error {
	if err := reg.Register(t.Tools()...); err != nil {
		return err
	}
	logx.Info("All tools registered successfully")
	return nil
}

// instrumented records metrics and events around a tool. It only looks at
// the envelope, so argument and validation failures are counted too.
type instrumented struct {
	toolx.Tool
	ts *Toolset
}

func (t *Toolset) instrument(tool toolx.Tool) toolx.Tool {
	return &instrumented{Tool: tool, ts: t}
}

func (i *instrumented) Call(ctx context.Context, args json.RawMessage) toolx.Envelope {
	start := time.Now()
	env := i.Tool.Call(ctx, args)
	elapsed := time.Since(start)

	code, _ := env["error_code"].(string)
	i.ts.metrics.ObserveToolCall(i.Name(), env.Success(), code, elapsed)

	var target struct {
		To string `json:"to"`
	}
	_ = json.Unmarshal(args, &target)
	messageID, _ := env["message_id"].(string)

	_ = i.ts.events.Publish(ctx, eventx.NewToolInvoked(eventx.ToolInvoked{
		Tool:      i.Name(),
		Success:   env.Success(),
		Error:     env.Error(),
		ErrorCode: code,
		MessageID: messageID,
		Recipient: target.To,
		Provider:  i.ts.client.GetProviderName(),
		Duration:  elapsed,
	}))
	return env
}

// define wraps a typed handler as an instrumented tool
func define[In, Out any](t *Toolset, name, description string, schema *toolx.Schema, handler toolx.HandlerFunc[In, Out]) toolx.Tool {
	return t.instrument(toolx.New(name, description, schema, handler))
}

// failed logs err the way every handler reports a failure
func failed[Out any](action string, err error) toolx.Result[Out] {
	logx.Error("Failed to %s: %s", action, errx.Message(err))
	return toolx.Fail[Out](err)
}
