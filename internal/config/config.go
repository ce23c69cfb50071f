package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/vango-dev/vbind/internal/errors"
	"github.com/vango-dev/vbind/pkg/reactive"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vbind.yaml"

	// ConfigFileNameAlt is the alternate name of the configuration file.
	ConfigFileNameAlt = "vbind.yml"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "VBIND_"

	// DefaultAddr is the default live server address.
	DefaultAddr = ":8080"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"
)

// Config represents the complete vbind.yaml configuration.
type Config struct {
	// Template is the template file path or s3:// URL.
	Template string `koanf:"template"`

	// Data is the data file path or s3:// URL. Empty means an empty model.
	Data string `koanf:"data"`

	// Methods are declarative instance methods, keyed by name.
	Methods map[string][]Action `koanf:"methods"`

	// Server contains live server configuration.
	Server ServerConfig `koanf:"server"`

	// Log contains logging configuration.
	Log LogConfig `koanf:"log"`

	// S3 contains the S3 client configuration for s3:// sources.
	S3 S3Config `koanf:"s3"`

	// Reactive contains reactive engine limits.
	Reactive ReactiveConfig `koanf:"reactive"`

	// path is the config file the values were read from.
	path string
}

// Action is one step of a declarative method. Exactly one of Assign,
// Increment and Toggle names the target path.
type Action struct {
	// Assign writes Value at the path.
	Assign string `koanf:"assign"`

	// Value is the value written by Assign.
	Value any `koanf:"value"`

	// Increment adds By (default 1) to the number at the path.
	Increment string `koanf:"increment"`

	// By is the increment step.
	By float64 `koanf:"by"`

	// Toggle negates the boolean at the path.
	Toggle string `koanf:"toggle"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	Metrics           bool          `koanf:"metrics"`
	MetricsPath       string        `koanf:"metrics_path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is text or json.
	Format string `koanf:"format"`
}

// S3Config contains S3 client settings. Empty credentials fall back to the
// AWS_* environment variables.
type S3Config struct {
	Region          string `koanf:"region"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	PathStyle       bool   `koanf:"path_style"`
}

// ReactiveConfig contains reactive engine limits.
type ReactiveConfig struct {
	MaxCascadeDepth int `koanf:"max_cascade_depth"`
}

// defaults are the lowest-priority layer.
func defaults() map[string]any {
	return map[string]any{
		"server.addr":                DefaultAddr,
		"server.read_header_timeout": "10s",
		"server.shutdown_timeout":    "5s",
		"server.metrics":             true,
		"server.metrics_path":        DefaultMetricsPath,
		"log.level":                  "info",
		"log.format":                 "text",
		"s3.region":                  "us-east-1",
		"reactive.max_cascade_depth": reactive.DefaultMaxCascadeDepth,
	}
}

// flagKeys maps flag names onto config keys. Other flags map by replacing
// "-" with "_".
var flagKeys = map[string]string{
	"addr":              "server.addr",
	"metrics":           "server.metrics",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"max-cascade-depth": "reactive.max_cascade_depth",
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./vbind.yaml)")
	fs.StringP("template", "t", "", "template file or s3:// URL")
	fs.StringP("data", "d", "", "data file or s3:// URL")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
	fs.Int("max-cascade-depth", reactive.DefaultMaxCascadeDepth, "maximum nested write depth")
}

// findConfigFile finds the config file to use.
// Priority: explicit path > vbind.yaml > vbind.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, the config file, the environment
// and flags. Only flags that were explicitly set override other layers.
// cfgFile may be empty to search the working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.New("E061").WithSource(path).Wrap(err)
		}
	}

	// VBIND_SERVER__READ_HEADER_TIMEOUT -> server.read_header_timeout
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New("E060").WithSource(path).Wrap(err)
	}
	cfg.path = path

	// Paths from the file are relative to it; flag values stay relative to
	// the working directory.
	if path != "" {
		base := filepath.Dir(path)
		if !changed(flags, "template") {
			cfg.Template = resolveRelative(cfg.Template, base)
		}
		if !changed(flags, "data") {
			cfg.Data = resolveRelative(cfg.Data, base)
		}
	}

	return &cfg, nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	return flags != nil && flags.Changed(name)
}

// resolveRelative joins a relative local path onto base.
func resolveRelative(p, base string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(base, p)
}

// Path returns the config file the configuration was read from, or "".
func (c *Config) Path() string {
	return c.path
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Template == "" {
		return errors.New("E060").
			WithSource(c.path).
			WithDetail("No template configured.").
			WithSuggestion(`Set "template" in vbind.yaml or pass --template.`)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.New("E060").WithSource(c.path).WithDetail(err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E060").
			WithSource(c.path).
			WithDetail(fmt.Sprintf("Unknown log format %q.", c.Log.Format)).
			WithSuggestion(`Use "text" or "json".`)
	}
	if c.Reactive.MaxCascadeDepth <= 0 {
		return errors.New("E060").
			WithSource(c.path).
			WithDetail(fmt.Sprintf("reactive.max_cascade_depth must be positive, got %d.", c.Reactive.MaxCascadeDepth))
	}
	for name, actions := range c.Methods {
		if err := validateMethod(name, actions); err != nil {
			return errors.New("E062").WithSource(c.path).WithDetail(err.Error())
		}
	}
	return nil
}

func validateMethod(name string, actions []Action) error {
	if len(actions) == 0 {
		return fmt.Errorf("method %q has no actions", name)
	}
	for i, a := range actions {
		set := 0
		for _, target := range []string{a.Assign, a.Increment, a.Toggle} {
			if target != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("method %q action %d must set exactly one of assign, increment, toggle", name, i)
		}
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}

// NewLogger builds a logger writing to w. Invalid settings fall back to
// info-level text output.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
