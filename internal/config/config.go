package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultPrefix is prepended to every environment variable name.
const DefaultPrefix = "GAMELIB_"

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds the process settings.
type Config struct {
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string        `env:"LOG_FORMAT" envDefault:"console"`
	Manifests  []string      `env:"MANIFESTS" envSeparator:","`
	Autoexec   string        `env:"AUTOEXEC"`
	Watch      bool          `env:"WATCH"`
	Lua        string        `env:"LUA"`
	LuaTimeout time.Duration `env:"LUA_TIMEOUT" envDefault:"5s"`
	PluginDirs []string      `env:"PLUGIN_DIRS" envSeparator:","`
}

type loadOptions struct {
	prefix      string
	dotenv      []string
	environment map[string]string
}

// Option configures Load.
type Option func(*loadOptions)

// WithPrefix replaces DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

// WithDotEnv sets the .env files to read. Missing files are skipped.
// No files disables .env loading.
func WithDotEnv(files ...string) Option {
	return func(o *loadOptions) {
		o.dotenv = files
	}
}

// WithEnvironment reads variables from m instead of the process
// environment.
func WithEnvironment(m map[string]string) Option {
	return func(o *loadOptions) {
		o.environment = m
	}
}

// Load reads the configuration from .env files and the environment,
// then validates it.
func Load(opts ...Option) (Config, error) {
	o := loadOptions{
		prefix: DefaultPrefix,
		dotenv: []string{".env"},
	}
	for _, opt := range opts {
		opt(&o)
	}

	environment := o.environment
	if environment == nil {
		environment = env.ToMap(os.Environ())
	}
	merged := make(map[string]string, len(environment))
	for k, v := range environment {
		merged[k] = v
	}

	for _, file := range o.dotenv {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			if _, set := merged[k]; !set {
				merged[k] = v
			}
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      o.prefix,
		Environment: merged,
	}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))

	c.Manifests = compact(c.Manifests)
	c.PluginDirs = compact(c.PluginDirs)
}

// compact trims every entry and drops the empty ones.
func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks that every setting has a usable value.
func (c Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, &ValidationError{Setting: "LOG_LEVEL", Value: c.LogLevel, Message: "unknown level"})
	}
	if c.LogFormat != FormatConsole && c.LogFormat != FormatJSON {
		errs = append(errs, &ValidationError{Setting: "LOG_FORMAT", Value: c.LogFormat, Message: "must be console or json"})
	}
	if c.LuaTimeout < 0 {
		errs = append(errs, &ValidationError{Setting: "LUA_TIMEOUT", Value: c.LuaTimeout.String(), Message: "must not be negative"})
	}
	if c.Watch && c.Autoexec == "" {
		errs = append(errs, &ValidationError{Setting: "WATCH", Value: "true", Message: "requires AUTOEXEC"})
	}
	return errors.Join(errs...)
}
