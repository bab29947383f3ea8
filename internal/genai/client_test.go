package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-2.0-flash-exp",
		Timeout: 5,
	}
}

func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestGenerateText(t *testing.T) {
	// Arrange
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(candidateResponse("Hola"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	// Act
	got, err := client.GenerateText(context.Background(), "Translate: Hello")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Hola", got)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "Translate: Hello", gotBody.Contents[0].Parts[0].Text)
}

func TestGenerateWithAudioEncodesInlineData(t *testing.T) {
	audio := []byte{0x52, 0x49, 0x46, 0x46}

	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(candidateResponse("[]"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.GenerateWithAudio(context.Background(), "transcribe", audio, "audio/wav")

	require.NoError(t, err)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	inline := gotBody.Contents[0].Parts[1].InlineData
	require.NotNil(t, inline)
	assert.Equal(t, "audio/wav", inline.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), inline.Data)
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not valid")
}

func TestGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.GenerateText(context.Background(), "hi")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
