package configx

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Abraxas-365/watools/errx"
)

// Config represents the main configuration interface.
//
// Keys are case-insensitive and "_" and "." are interchangeable, so
// Get("WHATSAPP_PHONE_ID") and Get("whatsapp.phone.id") read the same value.
type Config interface {
	// Get retrieves a configuration value by key
	Get(key string) Value

	// Has checks if a configuration key holds a non-empty value
	Has(key string) bool

	// Lookup returns the raw string for key, "" when unset
	Lookup(key string) string

	// AllSettings returns a copy of all settings
	AllSettings() map[string]any

	// AddSource adds a configuration source and reloads
	AddSource(source Source) Config

	// LoadAll reloads all configuration sources
	LoadAll() error

	// RequireEnv fails when any of the given keys is unset or empty
	RequireEnv(keys ...string) error
}

// Source represents a configuration source
type Source interface {
	// Load loads configuration values from the source
	Load() (map[string]any, error)

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher values override lower)
	Priority() int
}

// Value wraps a configuration value and provides type conversion methods
type Value interface {
	IsSet() bool
	AsString() string
	AsStringDefault(def string) string
	AsInt() int
	AsIntDefault(def int) int
	AsBool() bool
	AsBoolDefault(def bool) bool
	AsDuration() time.Duration
	AsDurationDefault(def time.Duration) time.Duration
}

const (
	PriorityDefault = 10 // Lowest priority
	PriorityDotEnv  = 15 // .env never overrides the real environment
	PriorityEnv     = 20
	PriorityMap     = 40 // Highest priority
)

var Registry = errx.NewRegistry("CONFIG")

var (
	ErrMissingRequired = Registry.Register("MISSING_REQUIRED", errx.TypeConfiguration, http.StatusInternalServerError, "Missing required configuration")
	ErrSourceFailed    = Registry.Register("SOURCE_FAILED", errx.TypeConfiguration, http.StatusInternalServerError, "Configuration source failed to load")
)

// NormalizeKey lowercases key and maps "_" to "."
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", ".")
}

//-----------------------------------------------------------------------------
// Implementation
//-----------------------------------------------------------------------------

type configuration struct {
	sync.RWMutex
	values  map[string]any
	sources []Source
}

// Option is a function that configures a configuration
type Option func(*configuration)

// New creates a new Config from the given options and loads every source
func New(opts ...Option) (Config, error) {
	cfg := &configuration{
		values: make(map[string]any),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.LoadAll(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *configuration) Get(key string) Value {
	c.RLock()
	defer c.RUnlock()

	k := NormalizeKey(key)
	return newValue(k, c.values[k])
}

func (c *configuration) Has(key string) bool {
	return c.Get(key).AsString() != ""
}

func (c *configuration) Lookup(key string) string {
	return c.Get(key).AsString()
}

func (c *configuration) AllSettings() map[string]any {
	c.RLock()
	defer c.RUnlock()

	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func (c *configuration) AddSource(source Source) Config {
	c.Lock()
	c.sources = append(c.sources, source)
	c.Unlock()

	// Load errors surface from LoadAll; a late source keeps the last good state.
	_ = c.LoadAll()
	return c
}

// LoadAll merges every source in ascending priority so higher priorities win.
func (c *configuration) LoadAll() error {
	c.Lock()
	defer c.Unlock()

	sources := make([]Source, len(c.sources))
	copy(sources, c.sources)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	merged := make(map[string]any)
	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			return Registry.NewWithCause(ErrSourceFailed, err).
				WithDetail("source", src.Name())
		}
		for k, v := range data {
			merged[NormalizeKey(k)] = v
		}
	}

	c.values = merged
	return nil
}

func (c *configuration) RequireEnv(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if !c.Has(key) {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return Registry.NewWithMessage(ErrMissingRequired,
			fmt.Sprintf("missing required environment variables: %s", strings.Join(missing, ", "))).
			WithDetail("missing", missing)
	}
	return nil
}

//-----------------------------------------------------------------------------
// Value implementation
//-----------------------------------------------------------------------------

type value struct {
	key string
	val any
}

func newValue(key string, val any) Value {
	return &value{key: key, val: val}
}

func (v *value) IsSet() bool {
	return v.val != nil
}

func (v *value) AsString() string {
	return v.AsStringDefault("")
}

func (v *value) AsStringDefault(def string) string {
	if !v.IsSet() {
		return def
	}

	switch val := v.val.(type) {
	case string:
		if val == "" {
			return def
		}
		return val
	case time.Duration:
		return val.String()
	case int, int64, uint, uint64, float32, float64, bool:
		return fmt.Sprintf("%v", val)
	default:
		return def
	}
}

func (v *value) AsInt() int {
	return v.AsIntDefault(0)
}

func (v *value) AsIntDefault(def int) int {
	switch val := v.val.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return def
}

func (v *value) AsBool() bool {
	return v.AsBoolDefault(false)
}

func (v *value) AsBoolDefault(def bool) bool {
	switch val := v.val.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "1", "on":
			return true
		case "false", "no", "0", "off":
			return false
		}
	}
	return def
}

func (v *value) AsDuration() time.Duration {
	return v.AsDurationDefault(0)
}

// AsDurationDefault accepts Go duration strings ("30s") or whole seconds.
func (v *value) AsDurationDefault(def time.Duration) time.Duration {
	switch val := v.val.(type) {
	case time.Duration:
		return val
	case int:
		return time.Duration(val) * time.Second
	case string:
		s := strings.TrimSpace(val)
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(s); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}

// -----------------------------------------------------------------------------
// Builder
// -----------------------------------------------------------------------------

// Builder provides a fluent API for building configuration
type Builder interface {
	FromEnv(prefix string) Builder
	FromDotEnv(path string) Builder
	FromMap(values map[string]any, name string) Builder
	WithDefaults(defaults map[string]any) Builder
	RequireEnv(keys ...string) Builder
	Build() (Config, error)
}

type builder struct {
	options  []Option
	required []string
}

// NewBuilder creates a new configuration builder
func NewBuilder() Builder {
	return &builder{}
}

func (b *builder) FromEnv(prefix string) Builder {
	b.options = append(b.options, WithSource(NewEnvSource(prefix, PriorityEnv)))
	return b
}

func (b *builder) FromDotEnv(path string) Builder {
	b.options = append(b.options, WithSource(NewDotEnvSource(path, PriorityDotEnv)))
	return b
}

func (b *builder) FromMap(values map[string]any, name string) Builder {
	b.options = append(b.options, WithSource(NewMapSource(values, name, PriorityMap)))
	return b
}

func (b *builder) WithDefaults(defaults map[string]any) Builder {
	b.options = append(b.options, WithSource(NewMapSource(defaults, "defaults", PriorityDefault)))
	return b
}

func (b *builder) RequireEnv(keys ...string) Builder {
	b.required = append(b.required, keys...)
	return b
}

// Build loads every source, then checks required keys. On a missing key the
// loaded Config is still returned with the error so callers can keep serving.
func (b *builder) Build() (Config, error) {
	cfg, err := New(b.options...)
	if err != nil {
		return nil, err
	}
	if len(b.required) > 0 {
		if err := cfg.RequireEnv(b.required...); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// WithSource adds a configuration source
func WithSource(source Source) Option {
	return func(c *configuration) {
		c.sources = append(c.sources, source)
	}
}
