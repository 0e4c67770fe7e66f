package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	OCR        OCRConfig
	Completion CompletionConfig
	Pipeline   PipelineConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OCRConfig holds document fetch and OCR backend settings.
type OCRConfig struct {
	TesseractCmd     string `mapstructure:"tesseract_cmd"`
	Language         string `mapstructure:"language"`
	FetchTimeoutSecs int    `mapstructure:"fetch_timeout_secs"`
	MaxImageDim      int    `mapstructure:"max_image_dim"`
}

// CompletionConfig holds settings for the LLM completion provider.
type CompletionConfig struct {
	Provider        string `mapstructure:"provider"`
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	BaseURL         string `mapstructure:"base_url"`
	TimeoutSecs     int    `mapstructure:"timeout_secs"`
	MaxRetries      int    `mapstructure:"max_retries"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens"`
}

// Reconciliation policy names.
const (
	ReconciliationPolicyTwoTier   = "two_tier"
	ReconciliationPolicyThreeTier = "three_tier"
)

// PipelineConfig holds extraction pipeline tuning knobs.
type PipelineConfig struct {
	QualityThreshold     float64 `mapstructure:"quality_threshold"`
	MaxPromptChars       int     `mapstructure:"max_prompt_chars"`
	ReconciliationPolicy string  `mapstructure:"reconciliation_policy"`
}

// Load reads configuration from environment variables with the BILLSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// OCR defaults
	v.SetDefault("ocr.tesseract_cmd", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.fetch_timeout_secs", 30)
	v.SetDefault("ocr.max_image_dim", 4000)

	// Completion defaults
	v.SetDefault("completion.provider", "groq")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.model", "")
	v.SetDefault("completion.base_url", "")
	v.SetDefault("completion.timeout_secs", 60)
	v.SetDefault("completion.max_retries", 2)
	v.SetDefault("completion.max_output_tokens", 2000)

	// Pipeline defaults
	v.SetDefault("pipeline.quality_threshold", 50)
	v.SetDefault("pipeline.max_prompt_chars", 8000)
	v.SetDefault("pipeline.reconciliation_policy", ReconciliationPolicyTwoTier)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "BILLSCAN_SERVER_PORT",
		"server.read_timeout":           "BILLSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "BILLSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":            "BILLSCAN_SERVER_ENVIRONMENT",
		"log.level":                     "BILLSCAN_LOG_LEVEL",
		"cors.allowed_origins":          "BILLSCAN_CORS_ALLOWED_ORIGINS",
		"ocr.tesseract_cmd":             "BILLSCAN_OCR_TESSERACT_CMD",
		"ocr.language":                  "BILLSCAN_OCR_LANGUAGE",
		"ocr.fetch_timeout_secs":        "BILLSCAN_OCR_FETCH_TIMEOUT_SECS",
		"ocr.max_image_dim":             "BILLSCAN_OCR_MAX_IMAGE_DIM",
		"completion.provider":           "BILLSCAN_COMPLETION_PROVIDER",
		"completion.api_key":            "BILLSCAN_COMPLETION_API_KEY",
		"completion.model":              "BILLSCAN_COMPLETION_MODEL",
		"completion.base_url":           "BILLSCAN_COMPLETION_BASE_URL",
		"completion.timeout_secs":       "BILLSCAN_COMPLETION_TIMEOUT_SECS",
		"completion.max_retries":        "BILLSCAN_COMPLETION_MAX_RETRIES",
		"completion.max_output_tokens":  "BILLSCAN_COMPLETION_MAX_OUTPUT_TOKENS",
		"pipeline.quality_threshold":    "BILLSCAN_PIPELINE_QUALITY_THRESHOLD",
		"pipeline.max_prompt_chars":     "BILLSCAN_PIPELINE_MAX_PROMPT_CHARS",
		"pipeline.reconciliation_policy": "BILLSCAN_PIPELINE_RECONCILIATION_POLICY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.OCR = OCRConfig{
		TesseractCmd:     v.GetString("ocr.tesseract_cmd"),
		Language:         v.GetString("ocr.language"),
		FetchTimeoutSecs: v.GetInt("ocr.fetch_timeout_secs"),
		MaxImageDim:      v.GetInt("ocr.max_image_dim"),
	}
	cfg.Completion = CompletionConfig{
		Provider:        v.GetString("completion.provider"),
		APIKey:          v.GetString("completion.api_key"),
		Model:           v.GetString("completion.model"),
		BaseURL:         v.GetString("completion.base_url"),
		TimeoutSecs:     v.GetInt("completion.timeout_secs"),
		MaxRetries:      v.GetInt("completion.max_retries"),
		MaxOutputTokens: v.GetInt("completion.max_output_tokens"),
	}
	cfg.Pipeline = PipelineConfig{
		QualityThreshold:     v.GetFloat64("pipeline.quality_threshold"),
		MaxPromptChars:       v.GetInt("pipeline.max_prompt_chars"),
		ReconciliationPolicy: v.GetString("pipeline.reconciliation_policy"),
	}

	return cfg, nil
}
