package provider

import (
	"context"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/llm"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
)

// openaiBackend adapts the OpenAI client: Whisper verbose_json for
// transcription, chat completions for translation.
type openaiBackend struct {
	client *llm.Client
}

func (b *openaiBackend) configured() bool {
	return b.client != nil && b.client.Configured()
}

func (b *openaiBackend) transcribe(ctx context.Context, audioPath, language string) ([]segment.Segment, error) {
	resp, err := b.client.TranscribeAudio(ctx, audioPath, language)
	if err != nil {
		return nil, errs.UpstreamFailure(err, "OpenAI transcription failed: %v", err)
	}

	segments := make([]segment.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, segment.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	// verbose_json should always segment; if it doesn't, keep the full
	// transcript as one zero-timed segment instead of failing.
	if len(segments) == 0 {
		segments = append(segments, segment.Segment{Start: 0, End: 0, Text: resp.Text})
	}
	return segments, nil
}

func (b *openaiBackend) chat(ctx context.Context, prompt string) (string, error) {
	opts := llm.NewChatCompletionOptions().
		WithSystemPrompt(translatorRole).
		WithTemperature(translationTemperature)
	return b.client.SimpleChat(ctx, prompt, opts)
}

const translationTemperature = 0.3
