// Package contextgen produces the short content summary that anchors every
// translation call. It is the one stage allowed to degrade instead of fail:
// a translation without context is useful, a dead pipeline is not.
package contextgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
	"github.com/jmorelli/video-sub-pipeline/internal/subtitle"
	"github.com/jmorelli/video-sub-pipeline/pkg/log"
)

// maxPromptChars caps the transcript excerpt embedded in the summary prompt.
const maxPromptChars = 2000

// Gateway is the completion surface the builder needs.
type Gateway interface {
	Complete(ctx context.Context, prompt, providerName string) (string, error)
}

type Builder struct {
	gateway Gateway
	logger  *log.Logger
}

func NewBuilder(gateway Gateway, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Builder{gateway: gateway, logger: logger}
}

// Build summarizes the transcript into 2-3 sentences of content context.
// Provider failures of any kind degrade to a generic description; only empty
// input is an error.
func (b *Builder) Build(ctx context.Context, segments []segment.Segment, sourceLanguage, providerName string) (string, error) {
	if len(segments) == 0 {
		return "", errs.InvalidArgument("Cannot build context from empty segments")
	}

	fullText := segment.FullText(segments)
	if len(strings.TrimSpace(fullText)) < 10 {
		return "Short video content without specific context.", nil
	}

	summary, err := b.gateway.Complete(ctx, summaryPrompt(fullText, sourceLanguage), providerName)
	if err != nil || summary == "" {
		if err != nil {
			b.logger.Warn("context summarization failed, using fallback: %v", err)
		}
		return fallbackContext(segments, sourceLanguage), nil
	}
	return summary, nil
}

// BuildFromCSV loads a transcript CSV and builds context from it.
func (b *Builder) BuildFromCSV(ctx context.Context, csvPath, sourceLanguage, providerName string) (string, error) {
	segments, err := subtitle.ReadTranscriptCSV(csvPath)
	if err != nil {
		return "", err
	}
	return b.Build(ctx, segments, sourceLanguage, providerName)
}

// SimpleContext describes the transcript without any provider call. Used when
// no provider is configured or the caller wants a deterministic context.
func SimpleContext(segments []segment.Segment, sourceLanguage string) string {
	if len(segments) == 0 {
		return "Empty transcript."
	}

	return fmt.Sprintf("Video transcript in %s language. Duration: %.1f seconds. Approximate word count: %d words.",
		sourceLanguage, segment.Span(segments), segment.WordCount(segments))
}

func summaryPrompt(fullText, sourceLanguage string) string {
	excerpt := fullText
	if len(excerpt) > maxPromptChars {
		excerpt = excerpt[:maxPromptChars]
	}
	return fmt.Sprintf(`Analyze the following transcript and provide a brief context summary (2-3 sentences) describing the topic, tone, and type of content. The transcript is in %s.

Transcript:
%s

Context summary:`, sourceLanguage, excerpt)
}

func fallbackContext(segments []segment.Segment, sourceLanguage string) string {
	return fmt.Sprintf("Content in %s language. Length: approximately %d words.", sourceLanguage, segment.WordCount(segments))
}
