// Package config loads reqtrace settings from a TOML file and the environment.
//
// Precedence, lowest first: [Default], the TOML file, variables from a .env
// file in the working directory, the process environment. Command-line flags
// are applied on top by the CLI.
//
// Example config.toml:
//
//	model = "gemini-2.5-flash"
//
//	[cache]
//	redis_addr = "localhost:6379"
//	ttl = "12h"
//
//	[render]
//	format = "png"
//
//	[palette.ROB]
//	core = "#112233"
//	requirement = "#445566"
//	constraint = "#778899"
//	verification = "#AABBCC"
//	spec = "#DDEEFF"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/matzehuels/reqtrace/pkg/cache"
	rterrors "github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/llm"
	"github.com/matzehuels/reqtrace/pkg/prompts"
	"github.com/matzehuels/reqtrace/pkg/render"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "REQTRACE_DATABASE_URL"
	EnvRedisAddr   = "REQTRACE_REDIS_ADDR"
	EnvModel       = "REQTRACE_MODEL"
)

// Config is the full reqtrace configuration.
type Config struct {
	Model       string  `toml:"model" validate:"required"`
	APIKeyEnv   string  `toml:"api_key_env" validate:"required"`
	Temperature float32 `toml:"temperature" validate:"gte=0,lte=2"`
	Concurrency int     `toml:"concurrency" validate:"gte=1,lte=16"`

	Database DatabaseConfig   `toml:"database"`
	Cache    CacheConfig      `toml:"cache"`
	Server   ServerConfig     `toml:"server"`
	Render   RenderConfig     `toml:"render"`
	Palette  palette.Table    `toml:"palette"`
	Examples prompts.Examples `toml:"examples"`

	// apiKey is resolved from APIKeyEnv and never written back to disk.
	apiKey string
}

// DatabaseConfig points at the PostgreSQL database used for schema context.
type DatabaseConfig struct {
	DSN        string `toml:"dsn"`
	Schema     string `toml:"schema" validate:"required"`
	SampleSize int    `toml:"sample_size" validate:"gte=1,lte=100"`
}

// CacheConfig selects the artifact and generation cache backend. A Redis
// address takes precedence over the file cache directory.
type CacheConfig struct {
	Disabled  bool     `toml:"disabled"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisDB   int      `toml:"redis_db" validate:"gte=0,lte=15"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr" validate:"required,hostname_port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes" validate:"gte=1024"`
}

// RenderConfig holds rendering defaults.
type RenderConfig struct {
	Format   string  `toml:"format" validate:"omitempty,oneof=dot svg png pdf raster json"`
	Width    float64 `toml:"width" validate:"gte=0,lte=4096"`
	Height   float64 `toml:"height" validate:"gte=0,lte=4096"`
	Detailed bool    `toml:"detailed"`
}

// Duration is a time.Duration that decodes from strings such as "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:       llm.DefaultModel,
		APIKeyEnv:   EnvAPIKey,
		Temperature: 0.2,
		Concurrency: 4,
		Database: DatabaseConfig{
			Schema:     "public",
			SampleSize: schema.DefaultSampleSize,
		},
		Cache: CacheConfig{
			TTL: Duration{cache.ArtifactTTL},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{5 * time.Minute},
			MaxBodyBytes: 1 << 20,
		},
		Render: RenderConfig{
			Format: string(render.FormatSVG),
		},
		Examples: prompts.DefaultExamples(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/reqtrace/config.toml, falling back to
// the OS user config directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
	}
	return filepath.Join(dir, "reqtrace", "config.toml"), nil
}

// Load reads path over the defaults. An empty path tries [DefaultPath] and
// silently uses defaults when that file does not exist; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, rterrors.New(rterrors.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.Examples = cfg.Examples.WithDefaults()
	return cfg, nil
}

// LoadEnv loads a .env file from the working directory into the process
// environment. Existing variables are not overwritten. A missing file is
// not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	c.ApplyLookup(os.LookupEnv)
}

// ApplyLookup overlays variables resolved by lookup onto c.
func (c *Config) ApplyLookup(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.RedisAddr = v
	}
	if v, ok := lookup(c.APIKeyEnv); ok {
		c.apiKey = strings.TrimSpace(v)
	}
}

// APIKey returns the model API key resolved by [Config.ApplyEnv].
func (c *Config) APIKey() string { return c.apiKey }

// SetAPIKey overrides the resolved API key.
func (c *Config) SetAPIKey(key string) { c.apiKey = key }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and palette colors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return rterrors.New(rterrors.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
		}
		return rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "invalid config")
	}
	for code, entry := range c.Palette {
		if err := rterrors.ValidateIDCode(code); err != nil {
			return rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "palette %q", code)
		}
		if err := entry.ValidateOverride(); err != nil {
			return rterrors.Wrap(rterrors.ErrCodeInvalidConfig, err, "palette %q", code)
		}
	}
	return nil
}

// RenderFormat returns the configured default output format.
func (c *Config) RenderFormat() render.Format {
	if c.Render.Format == "" {
		return render.FormatSVG
	}
	return render.Format(c.Render.Format)
}
