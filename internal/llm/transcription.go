package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// TranscribeAudio uploads an audio file to the audio/transcriptions endpoint
// and returns the verbose_json response with per-segment timestamps.
//
// The request asks for segment-level timestamp granularity; the response may
// still come back without segments, in which case Segments is empty and Text
// carries the whole transcript.
func (c *Client) TranscribeAudio(ctx context.Context, audioPath string, language string) (*TranscriptionResponse, error) {
	audioFile, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer audioFile.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":                     c.config.AudioModel,
		"language":                  language,
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "segment",
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	filePart, err := form.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(filePart, audioFile); err != nil {
		return nil, fmt.Errorf("failed to copy audio content: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var transcription TranscriptionResponse
	if err := json.Unmarshal(responseBody, &transcription); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if transcription.Error != nil && transcription.Error.Message != "" {
		return &transcription, transcription.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &transcription, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	return &transcription, nil
}
