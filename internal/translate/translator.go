// Package translate runs segment-by-segment translation through the provider
// gateway. Translation is strictly sequential: providers rate-limit hard, and
// ordering mirrors the transcript so failures are attributable to a segment.
package translate

import (
	"context"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
	"github.com/jmorelli/video-sub-pipeline/internal/subtitle"
	"github.com/jmorelli/video-sub-pipeline/pkg/log"
)

// Gateway is the slice of the provider gateway the translator needs.
type Gateway interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage, contextStr, providerName string) (string, error)
}

type Translator struct {
	gateway   Gateway
	languages language.Set
	logger    *log.Logger
}

func NewTranslator(gateway Gateway, languages language.Set, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Translator{
		gateway:   gateway,
		languages: languages,
		logger:    logger,
	}
}

// TranslateSegment translates a single text with the given content context.
func (t *Translator) TranslateSegment(ctx context.Context, text, sourceLanguage, targetLanguage, contextStr, providerName string) (string, error) {
	if err := t.languages.ValidateSource(sourceLanguage); err != nil {
		return "", err
	}
	if err := t.languages.ValidateTarget(targetLanguage); err != nil {
		return "", err
	}
	return t.gateway.Translate(ctx, text, sourceLanguage, targetLanguage, contextStr, providerName)
}

// TranslateSegments translates every segment in order, returning new segments
// with TranslatedText filled in and timing preserved. The first provider
// failure aborts the whole run; partial results are never returned.
func (t *Translator) TranslateSegments(ctx context.Context, segments []segment.Segment, sourceLanguage, targetLanguage, contextStr, providerName string) ([]segment.Segment, error) {
	if len(segments) == 0 {
		return nil, errs.InvalidArgument("Cannot translate empty segments")
	}
	if err := t.languages.ValidateSource(sourceLanguage); err != nil {
		return nil, err
	}
	if err := t.languages.ValidateTarget(targetLanguage); err != nil {
		return nil, err
	}

	translated := segment.Clone(segments)
	for i := range translated {
		if translated[i].Text != "" {
			text, err := t.gateway.Translate(ctx, translated[i].Text, sourceLanguage, targetLanguage, contextStr, providerName)
			if err != nil {
				return nil, err
			}
			translated[i].TranslatedText = text
		}

		if (i+1)%10 == 0 {
			t.logger.Info("translated %d/%d segments", i+1, len(segments))
		}
	}
	return translated, nil
}

// TranslateSegmentsBatch exists for callers that think in batches. Provider
// chat endpoints take one text per call, so the batch size has no effect on
// the wire and is accepted only for interface compatibility.
func (t *Translator) TranslateSegmentsBatch(ctx context.Context, segments []segment.Segment, sourceLanguage, targetLanguage, contextStr, providerName string, batchSize int) ([]segment.Segment, error) {
	_ = batchSize
	return t.TranslateSegments(ctx, segments, sourceLanguage, targetLanguage, contextStr, providerName)
}

// TranslateFromCSV loads a transcript CSV, translates it, and returns the
// translated segments.
func (t *Translator) TranslateFromCSV(ctx context.Context, csvPath, sourceLanguage, targetLanguage, contextStr, providerName string) ([]segment.Segment, error) {
	segments, err := subtitle.ReadTranscriptCSV(csvPath)
	if err != nil {
		return nil, err
	}
	return t.TranslateSegments(ctx, segments, sourceLanguage, targetLanguage, contextStr, providerName)
}

// SaveTranslatedCSV writes translated segments as a translation CSV.
func SaveTranslatedCSV(path string, segments []segment.Segment) error {
	return subtitle.WriteTranslationCSV(segments, path)
}
