// Package transcribe turns extracted audio into timestamped transcript
// segments via the configured speech provider.
package transcribe

import (
	"context"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
	"github.com/jmorelli/video-sub-pipeline/internal/subtitle"
	"github.com/jmorelli/video-sub-pipeline/pkg/log"
)

// Gateway is the slice of the provider gateway the transcriber needs.
type Gateway interface {
	Transcribe(ctx context.Context, audioPath, lang, providerName string) ([]segment.Segment, error)
}

type Transcriber struct {
	gateway   Gateway
	languages language.Set
	store     *storage.Manager
	logger    *log.Logger
}

func NewTranscriber(gateway Gateway, languages language.Set, store *storage.Manager, logger *log.Logger) *Transcriber {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Transcriber{
		gateway:   gateway,
		languages: languages,
		store:     store,
		logger:    logger,
	}
}

// Transcribe produces timestamped segments for the given audio file. The
// language code must be in the supported set; providerName may be empty to
// use the gateway default.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, lang, providerName string) ([]segment.Segment, error) {
	if !storage.FileExists(audioPath) {
		return nil, errs.NotFound("Audio file not found: %s", audioPath)
	}
	if err := t.languages.Validate(lang); err != nil {
		return nil, err
	}

	segments, err := t.gateway.Transcribe(ctx, audioPath, lang, providerName)
	if err != nil {
		return nil, err
	}

	t.warnOnLanguageMismatch(segments, lang)
	return segments, nil
}

// TranscribeAndSave transcribes and writes the result as a transcript CSV,
// returning the segments and the CSV path.
func (t *Transcriber) TranscribeAndSave(ctx context.Context, audioPath, lang, providerName string, dest storage.Destination) ([]segment.Segment, string, error) {
	segments, err := t.Transcribe(ctx, audioPath, lang, providerName)
	if err != nil {
		return nil, "", err
	}

	csvPath, err := t.store.ResolveDestination(dest, storage.KindTranscript, "csv")
	if err != nil {
		return nil, "", err
	}
	if err := subtitle.WriteTranscriptCSV(segments, csvPath); err != nil {
		return nil, "", err
	}
	return segments, csvPath, nil
}

// FullTranscriptText joins segment texts into a single string for language
// detection and context building.
func FullTranscriptText(segments []segment.Segment) string {
	return segment.FullText(segments)
}

// warnOnLanguageMismatch flags transcripts whose detected language differs
// from the requested one. Detection is advisory only; short or mixed
// transcripts routinely defeat it.
func (t *Transcriber) warnOnLanguageMismatch(segments []segment.Segment, lang string) {
	text := FullTranscriptText(segments)
	if len(text) < 50 {
		return
	}
	detected := language.Detect(text)
	if detected != "" && detected != lang {
		t.logger.Warn("transcript language looks like %q but %q was requested", detected, lang)
	}
}
