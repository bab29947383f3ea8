// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/jmorelli/video-sub-pipeline/internal/genai"
	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/llm"
	"github.com/jmorelli/video-sub-pipeline/internal/provider"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
)

// Environment Variables:
//
// Provider Configuration:
// - OPENAI_API_KEY: OpenAI API key (at least one provider key is required)
// - GEMINI_API_KEY: Gemini API key
// - OPENAI_MODEL: OpenAI audio model (default: gpt-4o-audio-preview)
// - GEMINI_MODEL: Gemini model (default: gemini-2.0-flash-exp)
// - DEFAULT_LLM_PROVIDER: Provider used when a request names none (default: gemini)
// - LLM_TIMEOUT: Request timeout in seconds (default: 120)
//
// Server Configuration:
// - API_HOST: Listen host (default: 0.0.0.0)
// - API_PORT: Listen port (default: 8000)
// - DEBUG: Enable debug logging (default: false)
// - MAX_CONCURRENT_JOBS: Pipeline worker count (default: 3)
//
// Storage Configuration:
// - UPLOAD_DIR, AUDIO_DIR, TRANSCRIPT_DIR, OUTPUT_DIR: Working directories
// - DATA_DIR: SQLite database directory (default: ./data)
// - MAX_FILE_SIZE_MB: Upload size cap in MB (default: 500)
// - ALLOWED_VIDEO_FORMATS: Comma-separated extensions (default: mp4,avi,mkv,mov,webm)
//
// Language Configuration:
// - SUPPORTED_LANGUAGES: Comma-separated ISO 639-1 codes
// - DEFAULT_SOURCE_LANGUAGE: Transcription language fallback (default: en)
//
// Library Scan Configuration:
// - MEDIA_DIRS: Comma-separated video library directories (optional)
// - SCAN_CRON: Cron expression for the library sweep (default: 0 * * * *)
// - SCAN_TARGET_LANGUAGE: Target language for swept videos (default: es)

type Config struct {
	Providers ProviderConfig `json:"providers"`
	Server    ServerConfig   `json:"server"`
	Storage   storage.Config `json:"storage"`
	Languages LanguageConfig `json:"languages"`
	Scan      ScanConfig     `json:"scan"`
	DataDir   string         `json:"data_dir"`
}

type ProviderConfig struct {
	OpenAIAPIKey    string            `json:"-"`
	GeminiAPIKey    string            `json:"-"`
	OpenAIModel     string            `json:"openai_model"`
	GeminiModel     string            `json:"gemini_model"`
	DefaultProvider provider.Provider `json:"default_provider"`
	TimeoutSeconds  int               `json:"timeout_seconds"`
}

type ServerConfig struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	Debug             bool   `json:"debug"`
	MaxConcurrentJobs int    `json:"max_concurrent_jobs"`
}

type LanguageConfig struct {
	Supported     []string `json:"supported"`
	DefaultSource string   `json:"default_source"`
}

type ScanConfig struct {
	MediaDirs      []string `json:"media_dirs"`
	CronExpr       string   `json:"cron_expr"`
	TargetLanguage string   `json:"target_language"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Providers: ProviderConfig{
			OpenAIAPIKey:    getEnvString("OPENAI_API_KEY", ""),
			GeminiAPIKey:    getEnvString("GEMINI_API_KEY", ""),
			OpenAIModel:     getEnvString("OPENAI_MODEL", "gpt-4o-audio-preview"),
			GeminiModel:     getEnvString("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			DefaultProvider: provider.Provider(getEnvString("DEFAULT_LLM_PROVIDER", "gemini")),
			TimeoutSeconds:  getEnvInt("LLM_TIMEOUT", 120),
		},
		Server: ServerConfig{
			Host:              getEnvString("API_HOST", "0.0.0.0"),
			Port:              getEnvInt("API_PORT", 8000),
			Debug:             getEnvBool("DEBUG", false),
			MaxConcurrentJobs: getEnvInt("MAX_CONCURRENT_JOBS", 3),
		},
		Storage: storage.Config{
			UploadDir:     getEnvString("UPLOAD_DIR", "./uploads"),
			AudioDir:      getEnvString("AUDIO_DIR", "./audio"),
			TranscriptDir: getEnvString("TRANSCRIPT_DIR", "./transcripts"),
			OutputDir:     getEnvString("OUTPUT_DIR", "./outputs"),
			MaxFileSize:   int64(getEnvInt("MAX_FILE_SIZE_MB", 500)) << 20,
			VideoFormats:  getEnvList("ALLOWED_VIDEO_FORMATS", []string{"mp4", "avi", "mkv", "mov", "webm"}),
		},
		Languages: LanguageConfig{
			Supported:     getEnvList("SUPPORTED_LANGUAGES", language.DefaultCodes()),
			DefaultSource: getEnvString("DEFAULT_SOURCE_LANGUAGE", "en"),
		},
		Scan: ScanConfig{
			MediaDirs:      getEnvList("MEDIA_DIRS", nil),
			CronExpr:       getEnvString("SCAN_CRON", "0 * * * *"),
			TargetLanguage: getEnvString("SCAN_TARGET_LANGUAGE", "es"),
		},
		DataDir: getEnvString("DATA_DIR", "./data"),
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Providers.OpenAIAPIKey == "" && c.Providers.GeminiAPIKey == "" {
		return fmt.Errorf("at least one of OPENAI_API_KEY or GEMINI_API_KEY is required")
	}
	if _, err := provider.Parse(string(c.Providers.DefaultProvider)); err != nil {
		return fmt.Errorf("invalid DEFAULT_LLM_PROVIDER %q", c.Providers.DefaultProvider)
	}
	if !c.HasProviderKey(c.Providers.DefaultProvider) {
		return fmt.Errorf("DEFAULT_LLM_PROVIDER is %q but its API key is not configured", c.Providers.DefaultProvider)
	}
	languages := language.NewSet(c.Languages.Supported)
	if len(languages.Codes()) == 0 {
		return fmt.Errorf("SUPPORTED_LANGUAGES must contain at least one code")
	}
	if err := languages.Validate(c.Languages.DefaultSource); err != nil {
		return fmt.Errorf("invalid DEFAULT_SOURCE_LANGUAGE: %w", err)
	}
	if err := languages.Validate(c.Scan.TargetLanguage); err != nil {
		return fmt.Errorf("invalid SCAN_TARGET_LANGUAGE: %w", err)
	}
	if c.Server.MaxConcurrentJobs <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_JOBS must be positive")
	}
	return nil
}

// HasProviderKey reports whether the named provider has a credential.
func (c *Config) HasProviderKey(p provider.Provider) bool {
	switch p {
	case provider.OpenAI:
		return c.Providers.OpenAIAPIKey != ""
	case provider.Gemini:
		return c.Providers.GeminiAPIKey != ""
	default:
		return false
	}
}

// LanguageSet builds the allow-list used for request validation.
func (c *Config) LanguageSet() language.Set {
	return language.NewSet(c.Languages.Supported)
}

// OpenAIConfig builds the OpenAI client configuration.
func (c *Config) OpenAIConfig() llm.Config {
	return llm.Config{
		APIKey:      c.Providers.OpenAIAPIKey,
		AudioModel:  c.Providers.OpenAIModel,
		ChatModel:   c.Providers.OpenAIModel,
		Temperature: 0.3,
		Timeout:     c.Providers.TimeoutSeconds,
	}
}

// GeminiConfig builds the Gemini client configuration.
func (c *Config) GeminiConfig() genai.Config {
	return genai.Config{
		APIKey:  c.Providers.GeminiAPIKey,
		Model:   c.Providers.GeminiModel,
		Timeout: c.Providers.TimeoutSeconds,
	}
}

// DatabasePath is where the SQLite store lives.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "pipeline.db")
}
