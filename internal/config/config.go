// Package config loads, validates, and persists gitscribe settings.
// Precedence: built-in defaults, then the TOML config file, then
// GITSCRIBE_* environment variables. The result is built once per
// invocation and passed down read-only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"gitscribe/internal/llm"
	"gitscribe/internal/llm/providers"
	"gitscribe/internal/optimize"
	"gitscribe/internal/prompt"
	"gitscribe/internal/relevance"
)

// valid log formats and levels
var (
	validLogFormats = []string{"text", "json"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
)

// ValidationError reports a configuration problem. It is fatal before
// any network attempt.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ProviderConfig holds the per-backend settings.
type ProviderConfig struct {
	APIKey string `mapstructure:"api_key" toml:"api_key"`
	// BaseURL overrides the backend endpoint, for proxies and
	// self-hosted deployments.
	BaseURL string `mapstructure:"base_url" toml:"base_url,omitempty"`
	Model   string `mapstructure:"model" toml:"model"`
	// TokenLimit is the context budget the optimizer targets for this
	// backend.
	TokenLimit    int               `mapstructure:"token_limit" toml:"token_limit"`
	SkipSSLVerify bool              `mapstructure:"skip_ssl_verify" toml:"skip_ssl_verify,omitempty"`
	Params        map[string]string `mapstructure:"params" toml:"params,omitempty"`
}

// RetrySettings is the retry schedule in file-friendly units.
type RetrySettings struct {
	MaxAttempts    int     `mapstructure:"max_attempts" toml:"max_attempts"`
	InitialDelayMS int     `mapstructure:"initial_delay_ms" toml:"initial_delay_ms"`
	MaxDelayMS     int     `mapstructure:"max_delay_ms" toml:"max_delay_ms"`
	Multiplier     float64 `mapstructure:"multiplier" toml:"multiplier"`
	Jitter         float64 `mapstructure:"jitter" toml:"jitter"`
}

// Policy converts the settings into the runner's retry policy.
func (r RetrySettings) Policy() llm.RetryPolicy {
	return llm.RetryPolicy{
		MaxAttempts:  r.MaxAttempts,
		InitialDelay: time.Duration(r.InitialDelayMS) * time.Millisecond,
		MaxDelay:     time.Duration(r.MaxDelayMS) * time.Millisecond,
		Multiplier:   r.Multiplier,
		Jitter:       r.Jitter,
	}
}

type Config struct {
	DefaultProvider   string `mapstructure:"default_provider" toml:"default_provider"`
	UseGitmoji        bool   `mapstructure:"use_gitmoji" toml:"use_gitmoji"`
	Instructions      string `mapstructure:"instructions" toml:"instructions"`
	InstructionPreset string `mapstructure:"instruction_preset" toml:"instruction_preset"`
	RecentCommitCount int    `mapstructure:"recent_commit_count" toml:"recent_commit_count"`
	// MaxProcessedFiles caps how many staged files the pipeline carries
	// past assembly; the rest appear only in the trailer.
	MaxProcessedFiles int `mapstructure:"max_processed_files" toml:"max_processed_files"`
	// TokenBudget overrides the active provider's token limit when
	// non-zero.
	TokenBudget int `mapstructure:"token_budget" toml:"token_budget"`
	// TruncationFloor is the smallest token count a truncated diff may
	// shrink to before demotion to a summary line.
	TruncationFloor int `mapstructure:"truncation_floor" toml:"truncation_floor"`
	// MaxResponseTokens bounds the completion size requested from the
	// backend.
	MaxResponseTokens     int                       `mapstructure:"max_response_tokens" toml:"max_response_tokens"`
	RequestTimeoutSeconds int                       `mapstructure:"request_timeout_seconds" toml:"request_timeout_seconds"`
	LogFormat             string                    `mapstructure:"log_format" toml:"log_format"`
	LogLevel              string                    `mapstructure:"log_level" toml:"log_level"`
	Retry                 RetrySettings             `mapstructure:"retry" toml:"retry"`
	Scoring               relevance.Weights         `mapstructure:"scoring" toml:"scoring"`
	Providers             map[string]ProviderConfig `mapstructure:"providers" toml:"providers"`
}

// Default returns the built-in configuration: Anthropic as the backend,
// every known provider pre-filled from its registry metadata.
func Default() *Config {
	policy := llm.DefaultRetryPolicy()
	return &Config{
		DefaultProvider:       "anthropic",
		InstructionPreset:     "default",
		RecentCommitCount:     5,
		MaxProcessedFiles:     30,
		TruncationFloor:       optimize.DefaultFloor,
		MaxResponseTokens:     4096,
		RequestTimeoutSeconds: 120,
		LogFormat:             "text",
		LogLevel:              "info",
		Retry: RetrySettings{
			MaxAttempts:    policy.MaxAttempts,
			InitialDelayMS: int(policy.InitialDelay / time.Millisecond),
			MaxDelayMS:     int(policy.MaxDelay / time.Millisecond),
			Multiplier:     policy.Multiplier,
			Jitter:         policy.Jitter,
		},
		Scoring:   relevance.DefaultWeights(),
		Providers: defaultProviders(),
	}
}

func defaultProviders() map[string]ProviderConfig {
	out := make(map[string]ProviderConfig, len(providers.Available()))
	for _, name := range providers.Available() {
		meta, _ := providers.MetadataFor(name)
		out[name] = ProviderConfig{Model: meta.DefaultModel, TokenLimit: meta.DefaultTokenLimit}
	}
	return out
}

// Path returns the config file location, honoring XDG_CONFIG_HOME.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gitscribe", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gitscribe", "config.toml"), nil
}

// Load reads the config file, applies environment overrides, and
// validates the result. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads from an explicit file path.
func LoadFrom(path string) (*Config, error) {
	cfg, err := ReadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadFrom loads the file and environment overrides without validating,
// for callers that layer their own overrides before validation.
func ReadFrom(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	fillProviderDefaults(cfg)

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the assembled configuration. The first problem found
// is returned as a *ValidationError.
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// fillProviderDefaults restores registry defaults for fields a partial
// [providers.*] section left empty, and adds registry entries the file
// did not mention at all.
func fillProviderDefaults(cfg *Config) {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for _, name := range providers.Available() {
		meta, _ := providers.MetadataFor(name)
		pc := cfg.Providers[name]
		if pc.Model == "" {
			pc.Model = meta.DefaultModel
		}
		if pc.TokenLimit == 0 {
			pc.TokenLimit = meta.DefaultTokenLimit
		}
		cfg.Providers[name] = pc
	}
}

// applyEnvOverrides layers GITSCRIBE_* variables over the loaded file.
func applyEnvOverrides(cfg *Config) error {
	var err error

	cfg.DefaultProvider = getEnvOrDefault("GITSCRIBE_PROVIDER", cfg.DefaultProvider)
	cfg.Instructions = getEnvOrDefault("GITSCRIBE_INSTRUCTIONS", cfg.Instructions)
	cfg.InstructionPreset = getEnvOrDefault("GITSCRIBE_PRESET", cfg.InstructionPreset)
	cfg.LogFormat = getEnvOrDefault("GITSCRIBE_LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = getEnvOrDefault("GITSCRIBE_LOG_LEVEL", cfg.LogLevel)

	cfg.UseGitmoji, err = parseBoolEnvOrDefault("GITSCRIBE_GITMOJI", cfg.UseGitmoji)
	if err != nil {
		return err
	}
	cfg.RecentCommitCount, err = parseIntEnvOrDefault("GITSCRIBE_RECENT_COMMITS", cfg.RecentCommitCount, 0, 100)
	if err != nil {
		return err
	}
	cfg.MaxProcessedFiles, err = parseIntEnvOrDefault("GITSCRIBE_MAX_FILES", cfg.MaxProcessedFiles, 0, 1000)
	if err != nil {
		return err
	}
	cfg.TokenBudget, err = parseIntEnvOrDefault("GITSCRIBE_TOKEN_BUDGET", cfg.TokenBudget, 0, 10000000)
	if err != nil {
		return err
	}
	cfg.MaxResponseTokens, err = parseIntEnvOrDefault("GITSCRIBE_MAX_RESPONSE_TOKENS", cfg.MaxResponseTokens, 1, 100000)
	if err != nil {
		return err
	}
	cfg.RequestTimeoutSeconds, err = parseIntEnvOrDefault("GITSCRIBE_REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds, 1, 3600)
	if err != nil {
		return err
	}

	for name, pc := range cfg.Providers {
		prefix := strings.ToUpper(name)
		if v, ok := os.LookupEnv(fmt.Sprintf("GITSCRIBE_%s_API_KEY", prefix)); ok {
			pc.APIKey = v
		}
		if v, ok := os.LookupEnv(fmt.Sprintf("GITSCRIBE_%s_MODEL", prefix)); ok {
			pc.Model = v
		}
		if v, ok := os.LookupEnv(fmt.Sprintf("GITSCRIBE_%s_BASE_URL", prefix)); ok {
			pc.BaseURL = v
		}
		cfg.Providers[name] = pc
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// parseIntEnvOrDefault parses an integer environment variable with range validation or returns a default value if not set
func parseIntEnvOrDefault(key string, defaultVal, min, max int) (int, error) {
	str, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal, nil
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer, got: %s", key, str)
	}

	if val < min || val > max {
		return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, val)
	}

	return val, nil
}

// parseBoolEnvOrDefault parses a boolean environment variable or returns a default value if not set
func parseBoolEnvOrDefault(key string, defaultVal bool) (bool, error) {
	str, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal, nil
	}

	val, err := strconv.ParseBool(str)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean, got: %s", key, str)
	}

	return val, nil
}

// validateConfig performs all validation on the loaded configuration
func validateConfig(cfg *Config) error {
	meta, ok := providers.MetadataFor(cfg.DefaultProvider)
	if !ok {
		return &ValidationError{
			Field:  "default_provider",
			Reason: fmt.Sprintf("unknown provider %q, expected one of: %v", cfg.DefaultProvider, providers.Available()),
		}
	}

	active := cfg.Providers[strings.ToLower(cfg.DefaultProvider)]
	if meta.RequiresAPIKey && active.APIKey == "" {
		return &ValidationError{
			Field: "api_key",
			Reason: fmt.Sprintf("provider %s requires an API key; set GITSCRIBE_%s_API_KEY or run gitscribe config --api-key",
				cfg.DefaultProvider, strings.ToUpper(cfg.DefaultProvider)),
		}
	}

	if cfg.InstructionPreset != "" {
		if _, ok := prompt.PresetByKey(cfg.InstructionPreset); !ok {
			return &ValidationError{
				Field:  "instruction_preset",
				Reason: fmt.Sprintf("unknown preset %q, run gitscribe presets to list them", cfg.InstructionPreset),
			}
		}
	}

	if !slices.Contains(validLogFormats, strings.ToLower(cfg.LogFormat)) {
		return &ValidationError{
			Field:  "log_format",
			Reason: fmt.Sprintf("must be one of: %v; got: %s", validLogFormats, cfg.LogFormat),
		}
	}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.LogLevel)) {
		return &ValidationError{
			Field:  "log_level",
			Reason: fmt.Sprintf("must be one of: %v; got: %s", validLogLevels, cfg.LogLevel),
		}
	}

	if cfg.Retry.MaxAttempts < 1 {
		return &ValidationError{Field: "retry.max_attempts", Reason: "must be at least 1"}
	}
	if cfg.Retry.Multiplier < 1 {
		return &ValidationError{Field: "retry.multiplier", Reason: "must be at least 1"}
	}
	if cfg.Retry.Jitter < 0 || cfg.Retry.Jitter > 1 {
		return &ValidationError{Field: "retry.jitter", Reason: "must be between 0 and 1"}
	}
	if cfg.TruncationFloor < 0 {
		return &ValidationError{Field: "truncation_floor", Reason: "must not be negative"}
	}
	if cfg.MaxResponseTokens < 1 {
		return &ValidationError{Field: "max_response_tokens", Reason: "must be at least 1"}
	}

	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration as TOML, creating the directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ActiveProvider returns the selected backend identifier and its
// settings, with registry defaults filling any unset fields.
func (c *Config) ActiveProvider() (string, ProviderConfig) {
	name := strings.ToLower(c.DefaultProvider)
	pc := c.Providers[name]
	if meta, ok := providers.MetadataFor(name); ok {
		if pc.Model == "" {
			pc.Model = meta.DefaultModel
		}
		if pc.TokenLimit == 0 {
			pc.TokenLimit = meta.DefaultTokenLimit
		}
	}
	return name, pc
}

// Budget is the optimizer token budget: the explicit override when set,
// otherwise the active provider's token limit.
func (c *Config) Budget() int {
	if c.TokenBudget > 0 {
		return c.TokenBudget
	}
	_, pc := c.ActiveProvider()
	return pc.TokenLimit
}

// ProviderSettings builds the transport settings for the active
// backend.
func (c *Config) ProviderSettings() providers.Settings {
	_, pc := c.ActiveProvider()
	return providers.Settings{
		APIKey:        pc.APIKey,
		BaseURL:       pc.BaseURL,
		Timeout:       time.Duration(c.RequestTimeoutSeconds) * time.Second,
		SkipSSLVerify: pc.SkipSSLVerify,
	}
}

// PromptInstructions bundles the instruction-related settings for the
// prompt builder.
func (c *Config) PromptInstructions() prompt.Instructions {
	return prompt.Instructions{
		PresetKey: c.InstructionPreset,
		Custom:    c.Instructions,
		Gitmoji:   c.UseGitmoji,
	}
}
