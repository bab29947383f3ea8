package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/genai"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
)

// geminiBackend adapts the Gemini client. Transcription sends the audio
// inline and asks the model for a raw JSON segment array; the decode is
// fence- and prose-tolerant because models routinely wrap their output.
type geminiBackend struct {
	client *genai.Client
}

func (b *geminiBackend) configured() bool {
	return b.client != nil && b.client.Configured()
}

func (b *geminiBackend) transcribe(ctx context.Context, audioPath, language string) ([]segment.Segment, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, errs.UpstreamFailure(err, "Gemini transcription failed: %v", err)
	}

	prompt := fmt.Sprintf(`Transcribe this audio file in %s language.
Provide the transcription with timestamps in this JSON format:
[{"start": 0.0, "end": 2.5, "text": "transcribed text"}, ...]

Only return the JSON array, no additional text.`, language)

	raw, err := b.client.GenerateWithAudio(ctx, prompt, audio, "audio/wav")
	if err != nil {
		return nil, errs.UpstreamFailure(err, "Gemini transcription failed: %v", err)
	}

	segments, err := decodeSegmentArray(raw)
	if err != nil {
		return nil, errs.UpstreamFailure(err, "Gemini transcription failed: %v", err)
	}

	if len(segments) == 0 {
		segments = append(segments, segment.Segment{Start: 0, End: 0, Text: ""})
	}
	return segments, nil
}

func (b *geminiBackend) chat(ctx context.Context, prompt string) (string, error) {
	return b.client.GenerateText(ctx, prompt)
}

// decodeSegmentArray extracts the JSON segment array from a model reply.
// Markdown code fences and surrounding prose are stripped before decoding;
// anything that still fails to decode is an error carrying a payload snippet
// for diagnosis.
func decodeSegmentArray(payload string) ([]segment.Segment, error) {
	cleaned := strings.TrimSpace(payload)

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output: %s", snippet(payload))
	}
	cleaned = cleaned[start : end+1]

	var segments []segment.Segment
	if err := json.Unmarshal([]byte(cleaned), &segments); err != nil {
		return nil, fmt.Errorf("malformed segment array (%v): %s", err, snippet(payload))
	}
	return segments, nil
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
