package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/video-sub-pipeline/internal/provider"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
}

func TestNewFromEnvDefaults(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gk-test")

	cfg, err := NewFromEnv()

	require.NoError(t, err)
	assert.Equal(t, provider.Gemini, cfg.Providers.DefaultProvider)
	assert.Equal(t, "gpt-4o-audio-preview", cfg.Providers.OpenAIModel)
	assert.Equal(t, "gemini-2.0-flash-exp", cfg.Providers.GeminiModel)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Server.MaxConcurrentJobs)
	assert.Equal(t, int64(500)<<20, cfg.Storage.MaxFileSize)
	assert.Contains(t, cfg.Storage.VideoFormats, "mkv")
	assert.Equal(t, "en", cfg.Languages.DefaultSource)
	assert.True(t, cfg.LanguageSet().Contains("ja"))
}

func TestNewFromEnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEFAULT_LLM_PROVIDER", "openai")
	t.Setenv("API_PORT", "9000")
	t.Setenv("MAX_FILE_SIZE_MB", "100")
	t.Setenv("ALLOWED_VIDEO_FORMATS", "mp4, mkv")
	t.Setenv("SUPPORTED_LANGUAGES", "en,es,fr")
	t.Setenv("MEDIA_DIRS", "/media/movies,/media/shows")

	cfg, err := NewFromEnv()

	require.NoError(t, err)
	assert.Equal(t, provider.OpenAI, cfg.Providers.DefaultProvider)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, int64(100)<<20, cfg.Storage.MaxFileSize)
	assert.Equal(t, []string{"mp4", "mkv"}, cfg.Storage.VideoFormats)
	assert.Equal(t, []string{"en", "es", "fr"}, cfg.Languages.Supported)
	assert.Equal(t, []string{"/media/movies", "/media/shows"}, cfg.Scan.MediaDirs)
}

func TestNewFromEnvRequiresAnyKey(t *testing.T) {
	clearProviderEnv(t)

	_, err := NewFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")
}

func TestNewFromEnvRejectsUnknownDefaultProvider(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gk-test")
	t.Setenv("DEFAULT_LLM_PROVIDER", "claude")

	_, err := NewFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_LLM_PROVIDER")
}

func TestNewFromEnvDefaultProviderNeedsKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	// Default provider is gemini but only the OpenAI key is set.

	_, err := NewFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is not configured")
}

func TestNewFromEnvRejectsUnsupportedScanTarget(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gk-test")
	t.Setenv("SUPPORTED_LANGUAGES", "en,fr")
	t.Setenv("SCAN_TARGET_LANGUAGE", "es")

	_, err := NewFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAN_TARGET_LANGUAGE")
}

func TestHasProviderKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gk-test")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.HasProviderKey(provider.Gemini))
	assert.False(t, cfg.HasProviderKey(provider.OpenAI))
}

func TestClientConfigs(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gk-test")
	t.Setenv("LLM_TIMEOUT", "60")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	openai := cfg.OpenAIConfig()
	assert.Equal(t, "sk-test", openai.APIKey)
	assert.Equal(t, "gpt-4o-audio-preview", openai.AudioModel)
	assert.Equal(t, 60, openai.Timeout)

	gemini := cfg.GeminiConfig()
	assert.Equal(t, "gk-test", gemini.APIKey)
	assert.Equal(t, "gemini-2.0-flash-exp", gemini.Model)
}

func TestDatabasePath(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "gk-test")
	t.Setenv("DATA_DIR", "/var/lib/pipeline")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/var/lib/pipeline", "pipeline.db"), cfg.DatabasePath())
}
