package configx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables source
// ===========================

// EnvSource loads configuration from environment variables. Values stay
// strings; Value does the conversion on read.
type EnvSource struct {
	prefix   string
	priority int
	environ  func() []string
}

// NewEnvSource creates a new environment variable source
func NewEnvSource(prefix string, priority int) Source {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		environ:  os.Environ,
	}
}

func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range s.environ() {
		key, val, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		if s.prefix != "" {
			if !strings.HasPrefix(key, s.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.prefix)
		}
		result[NormalizeKey(key)] = val
	}

	return result, nil
}

func (s *EnvSource) Name() string {
	return fmt.Sprintf("env(%s)", s.prefix)
}

func (s *EnvSource) Priority() int {
	return s.priority
}

// DotEnv file source
// ===========================

// DotEnvSource loads configuration from a .env file. A missing file is not
// an error.
type DotEnvSource struct {
	path     string
	priority int
}

// NewDotEnvSource creates a new .env file source
func NewDotEnvSource(path string, priority int) Source {
	return &DotEnvSource{
		path:     path,
		priority: priority,
	}
}

func (s *DotEnvSource) Load() (map[string]any, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read .env file %s: %w", s.path, err)
	}

	result := make(map[string]any, len(values))
	for k, v := range values {
		result[NormalizeKey(k)] = v
	}
	return result, nil
}

func (s *DotEnvSource) Name() string {
	return fmt.Sprintf("dotenv(%s)", s.path)
}

func (s *DotEnvSource) Priority() int {
	return s.priority
}

// Map Source implementation
// ===========================

// MapSource loads configuration from a map
type MapSource struct {
	values   map[string]any
	name     string
	priority int
}

// NewMapSource creates a new map source
func NewMapSource(values map[string]any, name string, priority int) Source {
	return &MapSource{
		values:   values,
		name:     name,
		priority: priority,
	}
}

func (s *MapSource) Load() (map[string]any, error) {
	result := make(map[string]any, len(s.values))
	for k, v := range s.values {
		result[NormalizeKey(k)] = v
	}
	return result, nil
}

func (s *MapSource) Name() string {
	return s.name
}

func (s *MapSource) Priority() int {
	return s.priority
}
