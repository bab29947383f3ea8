// Package pipeline chains the processing stages for one video: audio
// extraction, transcription, context building, translation, and SRT
// generation. Completed stages are recorded as artifacts so a rerun picks up
// where the last attempt died.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/jobs"
	"github.com/jmorelli/video-sub-pipeline/internal/persistence"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
	"github.com/jmorelli/video-sub-pipeline/internal/subtitle"
	"github.com/jmorelli/video-sub-pipeline/pkg/file"
	"github.com/jmorelli/video-sub-pipeline/pkg/log"
)

// Stage dependencies are narrowed to what the pipeline calls, so tests can
// stub individual stages.
type (
	Extractor interface {
		ExtractAudio(ctx context.Context, videoPath string, dest storage.Destination) (string, error)
	}
	Transcriber interface {
		TranscribeAndSave(ctx context.Context, audioPath, lang, providerName string, dest storage.Destination) ([]segment.Segment, string, error)
	}
	ContextBuilder interface {
		BuildFromCSV(ctx context.Context, csvPath, sourceLanguage, providerName string) (string, error)
	}
	Translator interface {
		TranslateFromCSV(ctx context.Context, csvPath, sourceLanguage, targetLanguage, contextStr, providerName string) ([]segment.Segment, error)
	}
)

// ArtifactStore records per-stage outputs for resume. A nil store disables
// resume but not processing.
type ArtifactStore interface {
	RecordArtifact(ctx context.Context, jobID, stage, path string) error
	Artifacts(ctx context.Context, jobID string) (map[string]persistence.StageArtifact, error)
}

type Pipeline struct {
	extractor  Extractor
	transcribe Transcriber
	contexts   ContextBuilder
	translate  Translator
	store      *storage.Manager
	artifacts  ArtifactStore
	logger     *log.Logger
}

func New(extractor Extractor, transcriber Transcriber, contexts ContextBuilder, translator Translator, store *storage.Manager, artifacts ArtifactStore, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Pipeline{
		extractor:  extractor,
		transcribe: transcriber,
		contexts:   contexts,
		translate:  translator,
		store:      store,
		artifacts:  artifacts,
		logger:     logger,
	}
}

// Result reports the paths produced by a pipeline run.
type Result struct {
	AudioPath      string `json:"audio_path"`
	TranscriptPath string `json:"transcript_path"`
	TranslatedPath string `json:"translated_path"`
	SubtitlePath   string `json:"subtitle_path"`
	Context        string `json:"context"`
}

// Process runs all stages for one job and returns the produced paths.
func (p *Pipeline) Process(ctx context.Context, job *jobs.PipelineJob) (Result, error) {
	if job == nil {
		return Result{}, errs.InvalidArgument("job is nil")
	}
	payload := job.Payload
	if payload.VideoPath == "" {
		return Result{}, errs.InvalidArgument("Job has no video path")
	}
	if payload.TargetLanguage == "" {
		return Result{}, errs.InvalidArgument("Job has no target language")
	}

	sourceLanguage := payload.SourceLanguage
	if sourceLanguage == "" {
		sourceLanguage = "en"
	}
	fileID := payload.FileID
	if fileID == "" {
		fileID = p.store.NewFileID()
	}

	done, err := p.completedStages(ctx, job.ID)
	if err != nil {
		p.logger.Warn("failed to load stage artifacts for %s, starting clean: %v", job.ID, err)
		done = nil
	}

	var result Result

	// Stage 1: audio extraction.
	if path, ok := done[persistence.StageAudio]; ok {
		p.logger.Info("job %s: reusing extracted audio %s", job.ID, path)
		result.AudioPath = path
	} else {
		audioPath, err := p.extractor.ExtractAudio(ctx, payload.VideoPath, storage.Destination{FileID: fileID})
		if err != nil {
			return result, err
		}
		result.AudioPath = audioPath
		p.recordArtifact(ctx, job.ID, persistence.StageAudio, audioPath)
	}

	// Stage 2: transcription to CSV.
	if path, ok := done[persistence.StageTranscript]; ok {
		p.logger.Info("job %s: reusing transcript %s", job.ID, path)
		result.TranscriptPath = path
	} else {
		_, csvPath, err := p.transcribe.TranscribeAndSave(ctx, result.AudioPath, sourceLanguage, payload.Provider, storage.Destination{FileID: fileID})
		if err != nil {
			return result, err
		}
		result.TranscriptPath = csvPath
		p.recordArtifact(ctx, job.ID, persistence.StageTranscript, csvPath)
	}

	// Stage 3: content context. Cheap and not persisted; the builder degrades
	// on provider failure rather than erroring.
	contextStr, err := p.contexts.BuildFromCSV(ctx, result.TranscriptPath, sourceLanguage, payload.Provider)
	if err != nil {
		return result, err
	}
	result.Context = contextStr

	// Stage 4: translation to CSV.
	if path, ok := done[persistence.StageTranslated]; ok {
		p.logger.Info("job %s: reusing translation %s", job.ID, path)
		result.TranslatedPath = path
	} else {
		translated, err := p.translate.TranslateFromCSV(ctx, result.TranscriptPath, sourceLanguage, payload.TargetLanguage, contextStr, payload.Provider)
		if err != nil {
			return result, err
		}
		translatedPath, err := p.store.Path(storage.KindTranscript, fmt.Sprintf("%s_%s", fileID, payload.TargetLanguage), "csv")
		if err != nil {
			return result, err
		}
		if err := subtitle.WriteTranslationCSV(translated, translatedPath); err != nil {
			return result, err
		}
		result.TranslatedPath = translatedPath
		p.recordArtifact(ctx, job.ID, persistence.StageTranslated, translatedPath)
	}

	// Stage 5: SRT generation.
	subtitlePath, err := p.subtitlePath(payload, fileID)
	if err != nil {
		return result, err
	}
	if err := subtitle.GenerateSRTFromCSV(result.TranslatedPath, subtitlePath, true); err != nil {
		return result, err
	}
	result.SubtitlePath = subtitlePath
	p.recordArtifact(ctx, job.ID, persistence.StageSubtitle, subtitlePath)

	return result, nil
}

// Executor adapts the pipeline for the job queue.
func (p *Pipeline) Executor() jobs.Executor {
	return func(ctx context.Context, job *jobs.PipelineJob) (string, error) {
		result, err := p.Process(ctx, job)
		if err != nil {
			return "", err
		}
		return result.SubtitlePath, nil
	}
}

// subtitlePath picks where the SRT lands. Uploaded files (with a file ID) go
// to the output directory; library videos get a sibling "{base}.{lang}.srt"
// so players pick the subtitle up automatically.
func (p *Pipeline) subtitlePath(payload jobs.JobPayload, fileID string) (string, error) {
	if payload.FileID != "" {
		return p.store.Path(storage.KindOutput, fileID, "srt")
	}
	dir := filepath.Dir(payload.VideoPath)
	stem := file.Stem(payload.VideoPath)
	return filepath.Join(dir, fmt.Sprintf("%s.%s.srt", stem, payload.TargetLanguage)), nil
}

// completedStages returns recorded artifacts whose files still exist.
func (p *Pipeline) completedStages(ctx context.Context, jobID string) (map[string]string, error) {
	if p.artifacts == nil || jobID == "" {
		return nil, nil
	}
	recorded, err := p.artifacts.Artifacts(ctx, jobID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]string, len(recorded))
	for stage, artifact := range recorded {
		if strings.TrimSpace(artifact.Path) == "" || !storage.FileExists(artifact.Path) {
			continue
		}
		done[stage] = artifact.Path
	}
	return done, nil
}

func (p *Pipeline) recordArtifact(ctx context.Context, jobID, stage, path string) {
	if p.artifacts == nil || jobID == "" {
		return
	}
	if err := p.artifacts.RecordArtifact(ctx, jobID, stage, path); err != nil {
		p.logger.Warn("failed to record %s artifact for %s: %v", stage, jobID, err)
	}
}
