// Package config provides configuration loading for logscope.
//
// Configuration comes from a YAML or TOML file, then environment variables
// prefixed LOGSCOPE_, layered over Default.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Scope provider names.
const (
	ProviderNoop   = "noop"
	ProviderScoped = "scoped"
)

// Level map policy names.
const (
	PolicyMerge    = "merge"
	PolicyOverride = "override"
)

// Config holds the complete logscope configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Scope     ScopeConfig     `koanf:"scope"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Server    ServerConfig    `koanf:"server"`
}

// LoggingConfig holds logger settings. Level names are the zap names plus
// "trace" and "off".
type LoggingConfig struct {
	Level        string            `koanf:"level"`
	Format       string            `koanf:"format"`
	Stdout       bool              `koanf:"stdout"`
	OTEL         bool              `koanf:"otel"`
	Sampling     bool              `koanf:"sampling"`
	SamplingTick Duration          `koanf:"sampling_tick"`
	Caller       bool              `koanf:"caller"`
	Redaction    bool              `koanf:"redaction"`
	Fields       map[string]string `koanf:"fields"`
}

// ScopeConfig selects and configures the logging context provider.
type ScopeConfig struct {
	Provider string `koanf:"provider"`
	Policy   string `koanf:"policy"`
	// Tags are added to every scope.
	Tags map[string]string `koanf:"tags"`
	// Levels maps logger names or prefixes to level names and applies to
	// every scope. DefaultLevel covers names without a rule.
	Levels       map[string]string `koanf:"levels"`
	DefaultLevel string            `koanf:"default_level"`
	Tracing      bool              `koanf:"tracing"`
}

// MetricsConfig controls the scope metrics exported through Prometheus.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
}

// TelemetryConfig controls OTLP trace export. Validation lives in the
// telemetry package.
type TelemetryConfig struct {
	Enabled         bool     `koanf:"enabled"`
	Endpoint        string   `koanf:"endpoint"`
	Protocol        string   `koanf:"protocol"`
	ServiceName     string   `koanf:"service_name"`
	Insecure        bool     `koanf:"insecure"`
	TLSSkipVerify   bool     `koanf:"tls_skip_verify"`
	SamplingRate    float64  `koanf:"sampling_rate"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	MetricInterval  Duration `koanf:"metric_interval"`
}

// ServerConfig configures the HTTP server started by "logscope serve".
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	// AllowLevelOverride lets clients attach a level map to their request
	// scope through LevelHeader.
	AllowLevelOverride bool     `koanf:"allow_level_override"`
	LevelHeader        string   `koanf:"level_header"`
	TagHeader          string   `koanf:"tag_header"`
	ShutdownTimeout    Duration `koanf:"shutdown_timeout"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "json",
			Stdout:       true,
			Sampling:     true,
			SamplingTick: Duration(time.Second),
			Caller:       true,
			Redaction:    true,
			Fields:       map[string]string{},
		},
		Scope: ScopeConfig{
			Provider:     ProviderScoped,
			Policy:       PolicyMerge,
			Tags:         map[string]string{},
			Levels:       map[string]string{},
			DefaultLevel: "off",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "logscope",
		},
		Telemetry: TelemetryConfig{
			Endpoint:        "localhost:4317",
			Protocol:        "grpc",
			ServiceName:     "logscope",
			Insecure:        true,
			SamplingRate:    1.0,
			ShutdownTimeout: Duration(5 * time.Second),
			MetricInterval:  Duration(15 * time.Second),
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9090,
			LevelHeader:     "X-Log-Levels",
			TagHeader:       "X-Log-Tag",
			ShutdownTimeout: Duration(10 * time.Second),
		},
	}
}

// Validate validates the configuration.
//
// Level names are checked by the packages that parse them; Validate covers
// the choices made here.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q (must be json or console)", c.Logging.Format)
	}
	if !c.Logging.Stdout && !c.Logging.OTEL {
		return errors.New("at least one logging output must be enabled")
	}
	if c.Logging.Sampling && c.Logging.SamplingTick <= 0 {
		return errors.New("sampling tick must be positive when sampling is enabled")
	}

	switch c.Scope.Provider {
	case ProviderNoop, ProviderScoped:
	default:
		return fmt.Errorf("invalid scope provider %q (must be %s or %s)", c.Scope.Provider, ProviderNoop, ProviderScoped)
	}
	switch c.Scope.Policy {
	case PolicyMerge, PolicyOverride:
	default:
		return fmt.Errorf("invalid scope policy %q (must be %s or %s)", c.Scope.Policy, PolicyMerge, PolicyOverride)
	}
	for k := range c.Scope.Tags {
		if strings.TrimSpace(k) == "" {
			return errors.New("scope tag key cannot be empty")
		}
	}
	for name := range c.Scope.Levels {
		if strings.Trim(name, "./ ") == "" {
			return errors.New("scope level rule name cannot be empty")
		}
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New("metrics namespace is required when metrics are enabled")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.AllowLevelOverride && c.Server.LevelHeader == "" {
		return errors.New("server level header is required when level override is allowed")
	}
	return nil
}

// Map returns the configuration as nested maps keyed like the file format.
func (c *Config) Map() map[string]any {
	return map[string]any{
		"logging": map[string]any{
			"level":         c.Logging.Level,
			"format":        c.Logging.Format,
			"stdout":        c.Logging.Stdout,
			"otel":          c.Logging.OTEL,
			"sampling":      c.Logging.Sampling,
			"sampling_tick": c.Logging.SamplingTick.Duration().String(),
			"caller":        c.Logging.Caller,
			"redaction":     c.Logging.Redaction,
			"fields":        stringMap(c.Logging.Fields),
		},
		"scope": map[string]any{
			"provider":      c.Scope.Provider,
			"policy":        c.Scope.Policy,
			"tags":          stringMap(c.Scope.Tags),
			"levels":        stringMap(c.Scope.Levels),
			"default_level": c.Scope.DefaultLevel,
			"tracing":       c.Scope.Tracing,
		},
		"metrics": map[string]any{
			"enabled":   c.Metrics.Enabled,
			"namespace": c.Metrics.Namespace,
		},
		"telemetry": map[string]any{
			"enabled":          c.Telemetry.Enabled,
			"endpoint":         c.Telemetry.Endpoint,
			"protocol":         c.Telemetry.Protocol,
			"service_name":     c.Telemetry.ServiceName,
			"insecure":         c.Telemetry.Insecure,
			"tls_skip_verify":  c.Telemetry.TLSSkipVerify,
			"sampling_rate":    c.Telemetry.SamplingRate,
			"shutdown_timeout": c.Telemetry.ShutdownTimeout.Duration().String(),
			"metric_interval":  c.Telemetry.MetricInterval.Duration().String(),
		},
		"server": map[string]any{
			"host":                 c.Server.Host,
			"port":                 c.Server.Port,
			"allow_level_override": c.Server.AllowLevelOverride,
			"level_header":         c.Server.LevelHeader,
			"tag_header":           c.Server.TagHeader,
			"shutdown_timeout":     c.Server.ShutdownTimeout.Duration().String(),
		},
	}
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
