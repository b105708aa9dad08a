package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	RateLimit RateLimitConfig `yaml:"ratelimit" mapstructure:"ratelimit"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RateLimitConfig sets the per-minute request and token capacities shared
// by every capability call in a run.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	TokensPerMinute   int `yaml:"tokens_per_minute" mapstructure:"tokens_per_minute"`
}

// PipelineConfig configures extraction behavior.
type PipelineConfig struct {
	ChunkSizeChars       int `yaml:"chunk_size_chars" mapstructure:"chunk_size_chars"`
	ContextBudgetTokens  int `yaml:"context_budget_tokens" mapstructure:"context_budget_tokens"`
	SinglePassTokenLimit int `yaml:"single_pass_token_limit" mapstructure:"single_pass_token_limit"`
	MaxConcurrency       int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	MergeCharBudget      int `yaml:"merge_char_budget" mapstructure:"merge_char_budget"`
}

// IngestConfig configures document loading and PDF text extraction.
type IngestConfig struct {
	OCRProvider      string `yaml:"ocr_provider" mapstructure:"ocr_provider"`
	PdfToTextPath    string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	FetchExternal    bool   `yaml:"fetch_external" mapstructure:"fetch_external"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "tender.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 6000)
	v.SetDefault("ratelimit.requests_per_minute", 3000)
	v.SetDefault("ratelimit.tokens_per_minute", 1_000_000)
	v.SetDefault("pipeline.chunk_size_chars", 8000)
	v.SetDefault("pipeline.context_budget_tokens", 15_000)
	v.SetDefault("pipeline.single_pass_token_limit", 40_000)
	v.SetDefault("pipeline.max_concurrency", 20)
	v.SetDefault("pipeline.merge_char_budget", 60_000)
	v.SetDefault("ingest.ocr_provider", "local")
	v.SetDefault("ingest.pdftotext_path", "pdftotext")
	v.SetDefault("ingest.fetch_timeout_secs", 30)
	v.SetDefault("ingest.fetch_external", true)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode.
// "summarize" needs the capability key; "serve" additionally needs a
// usable port. Limits are checked in both modes.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "summarize", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Anthropic.Key == "" {
		problems = append(problems, "anthropic.key is required")
	}
	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		problems = append(problems, "ratelimit.requests_per_minute must be > 0")
	}
	if c.RateLimit.TokensPerMinute <= 0 {
		problems = append(problems, "ratelimit.tokens_per_minute must be > 0")
	}
	if c.Pipeline.MaxConcurrency < 1 || c.Pipeline.MaxConcurrency > 100 {
		problems = append(problems, "pipeline.max_concurrency must be between 1 and 100")
	}
	if c.Pipeline.ChunkSizeChars <= 0 {
		problems = append(problems, "pipeline.chunk_size_chars must be > 0")
	}
	if c.Pipeline.ContextBudgetTokens <= 0 {
		problems = append(problems, "pipeline.context_budget_tokens must be > 0")
	}

	if len(problems) > 0 {
		return eris.New("config: invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
