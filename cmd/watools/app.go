package main

import (
	"context"

	"github.com/Abraxas-365/watools/configx"
	"github.com/Abraxas-365/watools/eventx"
	"github.com/Abraxas-365/watools/fsx"
	"github.com/Abraxas-365/watools/logx"
	"github.com/Abraxas-365/watools/metricx"
	"github.com/Abraxas-365/watools/msgx/msgxtools"
	"github.com/Abraxas-365/watools/toolx"
)

// Settings read by the hosts, on top of the msgxtools keys
const (
	keyHTTPAddr       = "HTTP_ADDR"
	keyJWTSecret      = "AUTH_JWT_SECRET"
	keyJWTTTL         = "AUTH_TOKEN_TTL"
	keySQSQueueURL    = "EVENTS_SQS_QUEUE_URL"
	keyMediaS3Enabled = "MEDIA_S3_ENABLED"
	keyMediaRoot      = "MEDIA_ROOT"
)

func defaults() map[string]any {
	return map[string]any{
		msgxtools.KeyAPIVersion:  "v23.0",
		msgxtools.KeyHTTPTimeout: "30s",
		keyHTTPAddr:              ":8080",
		keyJWTTTL:                "24h",
		keyMediaS3Enabled:        false,
	}
}

// loadConfig merges defaults, the .env file and the process environment,
// in increasing priority, and applies the LOG_* settings.
func loadConfig(envFile string) (configx.Config, error) {
	cfg, err := configx.NewBuilder().
		WithDefaults(defaults()).
		FromDotEnv(envFile).
		FromEnv("").
		Build()
	if err != nil {
		return nil, err
	}
	logx.Configure(cfg.Lookup)
	return cfg, nil
}

// toolEnv is what every host needs: the registry and its instrumentation
type toolEnv struct {
	cfg      configx.Config
	registry *toolx.ToolRegistry
	metrics  *metricx.Metrics
}

// newToolEnv builds the tool registry. Missing WhatsApp credentials are
// logged and leave the registry empty; the host still starts.
func newToolEnv(ctx context.Context, cfg configx.Config) (*toolEnv, error) {
	rt := &toolEnv{
		cfg:      cfg,
		registry: toolx.NewToolRegistry(),
		metrics:  metricx.NewMetrics(),
	}

	media, err := mediaSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	events, err := eventPublisher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ts, err := msgxtools.Initialize(cfg,
		msgxtools.WithMediaSource(media),
		msgxtools.WithEvents(events),
		msgxtools.WithMetrics(rt.metrics),
	)
	if err != nil {
		if msgxtools.IsConfigError(err) {
			logx.Error("Configuration error: %v", err)
			logx.Error("Please set WHATSAPP_PHONE_ID and WHATSAPP_TOKEN environment variables")
			return rt, nil
		}
		return nil, err
	}

	if err := ts.Register(rt.registry); err != nil {
		return nil, err
	}
	return rt, nil
}

func mediaSource(ctx context.Context, cfg configx.Config) (fsx.Router, error) {
	router := fsx.Router{Local: fsx.NewLocalFS(cfg.Get(keyMediaRoot).AsString())}
	if !cfg.Get(keyMediaS3Enabled).AsBoolDefault(false) {
		return router, nil
	}

	s3fs, err := fsx.NewS3FSFromEnv(ctx)
	if err != nil {
		return router, err
	}
	router.S3 = s3fs
	logx.Info("upload_media accepts s3:// locations")
	return router, nil
}

// eventPublisher always feeds the in-process bus, which logs calls at debug
// level, and adds SQS when a queue is configured.
func eventPublisher(ctx context.Context, cfg configx.Config) (eventx.Publisher, error) {
	bus := eventx.NewMemoryBus()
	eventx.SubscribeTyped(bus, eventx.TypeToolInvoked, func(e eventx.TypedEvent[eventx.ToolInvoked]) error {
		d := e.Data()
		logx.Debug("tool %s success=%t code=%s took %s", d.Tool, d.Success, d.ErrorCode, d.Duration)
		return nil
	})

	queueURL := cfg.Get(keySQSQueueURL).AsString()
	if queueURL == "" {
		return bus, nil
	}

	sqs, err := eventx.NewSQSPublisherFromEnv(ctx, queueURL)
	if err != nil {
		return nil, err
	}
	logx.Info("Publishing tool events to %s", queueURL)
	return eventx.FanOut{bus, sqs}, nil
}
