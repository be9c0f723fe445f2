// Package config carries the process-wide sync settings: the default API
// key and the engine tuning knobs. A single default instance is set once
// at startup; explicit per-call values take precedence over it.
package config

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "NOTION"

// ErrMissingAPIKey is returned when no API key is available from the
// explicit argument, the process default, or the environment.
var ErrMissingAPIKey = errors.New("no API key provided")

type Config struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
	)
}

// Load reads configuration from the environment (NOTION_API_KEY,
// NOTION_BASE_URL, NOTION_TIMEOUT) and an optional YAML file.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "https://api.notion.com")
	v.SetDefault("timeout", 30*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for _, key := range []string{"api_key", "base_url", "timeout"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

var processDefault atomic.Pointer[Config]

func init() {
	processDefault.Store(&Config{
		BaseURL: "https://api.notion.com",
		Timeout: 30 * time.Second,
	})
}

// Default returns the process-wide configuration.
func Default() *Config {
	return processDefault.Load()
}

// SetDefault replaces the process-wide configuration. Last writer wins.
func SetDefault(cfg *Config) {
	processDefault.Store(cfg)
}

// Apply overlays option key/values onto a copy of the process default and
// installs it, e.g. Apply(map[string]any{"api_key": "secret_..."}).
func Apply(options map[string]any) error {
	cfg := *Default()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(options); err != nil {
		return fmt.Errorf("decoding options: %w", err)
	}

	SetDefault(&cfg)

	return nil
}

// ResolveAPIKey picks the key to use for one call: the explicit argument
// wins, then the process default (which Load populates from the
// environment).
func ResolveAPIKey(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	if key := Default().APIKey; key != "" {
		return key, nil
	}

	return "", ErrMissingAPIKey
}
