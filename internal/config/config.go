// Package config holds operator-level configuration for a datadetector
// process: rule sources, server settings, redaction defaults. Values merge
// from an optional YAML file and DATADETECTOR_* environment variables;
// precedence is env over file over defaults.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the DATADETECTOR_ prefix and dots
// replaced by underscores (e.g. "server.listen" → DATADETECTOR_SERVER_LISTEN)
// and to the same dotted path in datadetector.config.yaml.
const (
	KeyPatternPaths = "patterns.paths"
	KeyPatternWatch = "patterns.watch"
	KeyKeywordPath  = "keywords.path"
	KeyListen       = "server.listen"
	KeyAPIKeys      = "server.api_keys"
	KeyRateLimitRPS = "server.rate_limit_rps"
	KeyCORSOrigins  = "server.cors_origins"
	KeyMaskChar     = "redact.mask_char"
	KeyDigest       = "redact.digest"
	KeySalt         = "redact.salt"
	KeyNormalize    = "normalize.enabled"
	KeyWorkers      = "batch.workers"
	KeyLogLevel     = "log.level"
	KeyTrace        = "trace.enabled"
)

const (
	DefaultListen   = ":8080"
	DefaultMaskChar = "*"
	DefaultDigest   = "sha256"
	DefaultLogLevel = "info"
)

// Config is the resolved process configuration.
type Config struct {
	// PatternPaths are rule file or directory sources that replace the
	// embedded defaults; empty means the defaults only.
	PatternPaths []string
	// PatternWatch reloads rules when a pattern source changes.
	PatternWatch bool
	// KeywordPath overrides the embedded keyword table.
	KeywordPath string

	Listen       string
	APIKeys      []string
	RateLimitRPS float64
	CORSOrigins  []string

	MaskChar string
	Digest   string
	Salt     string

	// Normalize toggles script-boundary normalization before scanning.
	Normalize bool
	// Workers is the batch pool size; 0 means one per logical CPU.
	Workers int

	LogLevel string
	Trace    bool
}

func init() {
	viper.SetEnvPrefix("DATADETECTOR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault(KeyListen, DefaultListen)
	viper.SetDefault(KeyMaskChar, DefaultMaskChar)
	viper.SetDefault(KeyDigest, DefaultDigest)
	viper.SetDefault(KeyNormalize, true)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
}

// Load reads configuration from Viper (which merges env vars, any config
// file already read in, and defaults) and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{
		PatternPaths: splitList(viper.GetStringSlice(KeyPatternPaths)),
		PatternWatch: viper.GetBool(KeyPatternWatch),
		KeywordPath:  viper.GetString(KeyKeywordPath),
		Listen:       viper.GetString(KeyListen),
		APIKeys:      splitList(viper.GetStringSlice(KeyAPIKeys)),
		RateLimitRPS: viper.GetFloat64(KeyRateLimitRPS),
		CORSOrigins:  splitList(viper.GetStringSlice(KeyCORSOrigins)),
		MaskChar:     viper.GetString(KeyMaskChar),
		Digest:       viper.GetString(KeyDigest),
		Salt:         viper.GetString(KeySalt),
		Normalize:    viper.GetBool(KeyNormalize),
		Workers:      viper.GetInt(KeyWorkers),
		LogLevel:     viper.GetString(KeyLogLevel),
		Trace:        viper.GetBool(KeyTrace),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile reads the given YAML config file into Viper before resolving.
// With an empty path, datadetector.config.yaml is tried in the working
// directory and its absence is not an error.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return Load()
	}

	viper.SetConfigName("datadetector.config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Load()
}

func (c *Config) validate() error {
	switch c.Digest {
	case "sha256", "sha512", "blake2b-256":
	default:
		return fmt.Errorf("unknown digest %q (must be sha256, sha512, or blake2b-256)", c.Digest)
	}
	if c.MaskChar == "" {
		return fmt.Errorf("mask_char must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must not be negative, got %v", c.RateLimitRPS)
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Listen, err)
	}
	return nil
}

// splitList flattens comma-separated entries so both YAML lists and env
// values like "a.yml,b.yml" work.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
