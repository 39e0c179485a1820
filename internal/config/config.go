// Package config loads the service configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/thomas-vilte/contextclue/internal/errors"
)

const (
	EnvPrefix = "CONTEXTCLUE"

	defaultDirName  = ".contextclue"
	defaultFileName = "config.yaml"
)

type (
	Config struct {
		Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
		AWS      AWSConfig      `mapstructure:"aws" yaml:"aws"`
		Gemini   GeminiConfig   `mapstructure:"gemini" yaml:"gemini"`
		Fixture  FixtureConfig  `mapstructure:"fixture" yaml:"fixture"`
		Prompt   PromptConfig   `mapstructure:"prompt" yaml:"prompt"`
		Server   ServerConfig   `mapstructure:"server" yaml:"server"`
		Budget   BudgetConfig   `mapstructure:"budget" yaml:"budget"`
		History  HistoryConfig  `mapstructure:"history" yaml:"history"`
		Fallback FallbackConfig `mapstructure:"fallback" yaml:"fallback"`
		Language string         `mapstructure:"language" yaml:"language"`

		// PathFile is the file the configuration was read from, empty when none.
		PathFile string `mapstructure:"-" yaml:"-"`
	}

	ProviderConfig struct {
		Name      string        `mapstructure:"name" yaml:"name"`
		Model     string        `mapstructure:"model" yaml:"model"`
		Region    string        `mapstructure:"region" yaml:"region"`
		MaxTokens int           `mapstructure:"max_tokens" yaml:"max_tokens"`
		Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	}

	AWSConfig struct {
		AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
		SessionToken    string `mapstructure:"session_token" yaml:"session_token"`
	}

	GeminiConfig struct {
		APIKey string `mapstructure:"api_key" yaml:"api_key"`
	}

	FixtureConfig struct {
		Path string `mapstructure:"path" yaml:"path"`
	}

	PromptConfig struct {
		MaxCodeChars int `mapstructure:"max_code_chars" yaml:"max_code_chars"`
	}

	ServerConfig struct {
		Addr            string        `mapstructure:"addr" yaml:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
		BodyLimit       string        `mapstructure:"body_limit" yaml:"body_limit"`
	}

	BudgetConfig struct {
		DailyUSD float64 `mapstructure:"daily_usd" yaml:"daily_usd"`
	}

	HistoryConfig struct {
		Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
		Path    string `mapstructure:"path" yaml:"path"`
		// RetentionDays bounds how long serve keeps usage records. 0 keeps them forever.
		RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
	}

	FallbackConfig struct {
		CatalogPath string `mapstructure:"catalog_path" yaml:"catalog_path"`
	}
)

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Provider: ProviderConfig{
			Name:      string(AIBedrock),
			Region:    "us-east-1",
			MaxTokens: 500,
			Timeout:   30 * time.Second,
		},
		Prompt: PromptConfig{MaxCodeChars: 2000},
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       "2M",
		},
		History:  HistoryConfig{Enabled: true, RetentionDays: 90},
		Language: LangEN,
	}
}

// envBindings maps config keys to the conventional variables they also read.
// CONTEXTCLUE_<KEY> always wins over these.
var envBindings = map[string][]string{
	"provider.region":       {"AWS_REGION", "AWS_DEFAULT_REGION"},
	"aws.access_key_id":     {"AWS_ACCESS_KEY_ID"},
	"aws.secret_access_key": {"AWS_SECRET_ACCESS_KEY"},
	"aws.session_token":     {"AWS_SESSION_TOKEN"},
	"gemini.api_key":        {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// DefaultPath returns $HOME/.contextclue/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, defaultDirName, defaultFileName), nil
}

// Load reads the configuration. An explicit path must exist; with an empty
// path the default location is used when present.
func Load(path string) (*Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	cfgFile := ""
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.ErrConfigInvalid.
					WithError(err).
					WithContext("reason", fmt.Sprintf("failed to load %s", path))
			}
			cfgFile = path
		} else if explicit || !os.IsNotExist(err) {
			return nil, errors.ErrConfigInvalid.
				WithError(err).
				WithContext("reason", fmt.Sprintf("failed to read %s", path))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrConfigInvalid.
			WithError(err).
			WithContext("reason", "failed to parse configuration")
	}
	cfg.PathFile = cfgFile
	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	cfg.Language = GetLocaleConfig(cfg.Language)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Defaults()

	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.model", d.Provider.Model)
	v.SetDefault("provider.region", d.Provider.Region)
	v.SetDefault("provider.max_tokens", d.Provider.MaxTokens)
	v.SetDefault("provider.timeout", d.Provider.Timeout)
	v.SetDefault("aws.access_key_id", "")
	v.SetDefault("aws.secret_access_key", "")
	v.SetDefault("aws.session_token", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("fixture.path", "")
	v.SetDefault("prompt.max_code_chars", d.Prompt.MaxCodeChars)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("budget.daily_usd", d.Budget.DailyUSD)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", d.History.RetentionDays)
	v.SetDefault("fallback.catalog_path", "")
	v.SetDefault("language", d.Language)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, vars := range envBindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, prefixed}, vars...)...)
	}

	return v
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	invalid := func(reason string) error {
		return errors.ErrConfigInvalid.WithContext("reason", reason)
	}

	if !IsSupportedAI(AI(c.Provider.Name)) {
		return errors.ErrProviderNotSupported.WithContext("provider", c.Provider.Name)
	}
	if c.Provider.MaxTokens <= 0 {
		return invalid("provider.max_tokens must be greater than 0")
	}
	if c.Provider.Timeout <= 0 {
		return invalid("provider.timeout must be greater than 0")
	}
	if c.Prompt.MaxCodeChars <= 0 {
		return invalid("prompt.max_code_chars must be greater than 0")
	}
	if c.Budget.DailyUSD < 0 {
		return invalid("budget.daily_usd cannot be negative")
	}
	if c.History.RetentionDays < 0 {
		return invalid("history.retention_days cannot be negative")
	}
	if c.Server.Addr == "" {
		return invalid("server.addr cannot be empty")
	}
	return nil
}

// HasCredentials reports whether the selected provider has what it needs for a
// live call. false routes every analysis to the fallback catalog.
func (c *Config) HasCredentials() bool {
	switch AI(c.Provider.Name) {
	case AIBedrock:
		return c.AWS.AccessKeyID != "" && c.AWS.SecretAccessKey != ""
	case AIGemini:
		return c.Gemini.APIKey != ""
	case AIFixture:
		return c.Fixture.Path != ""
	default:
		return false
	}
}

// ModelName returns the configured model or the provider default.
func (c *Config) ModelName() string {
	if c.Provider.Model != "" {
		return c.Provider.Model
	}
	return string(DefaultModelForAI(AI(c.Provider.Name)))
}

// Masked returns a copy safe to print: secrets keep only their first four characters.
func (c *Config) Masked() Config {
	out := *c
	out.AWS.AccessKeyID = maskSecret(c.AWS.AccessKeyID)
	out.AWS.SecretAccessKey = maskSecret(c.AWS.SecretAccessKey)
	out.AWS.SessionToken = maskSecret(c.AWS.SessionToken)
	out.Gemini.APIKey = maskSecret(c.Gemini.APIKey)
	return out
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
