package transcribe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/language"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
	"github.com/jmorelli/video-sub-pipeline/internal/subtitle"
)

type fakeGateway struct {
	segments []segment.Segment
	err      error

	gotAudioPath string
	gotLanguage  string
	gotProvider  string
}

func (f *fakeGateway) Transcribe(_ context.Context, audioPath, lang, providerName string) ([]segment.Segment, error) {
	f.gotAudioPath = audioPath
	f.gotLanguage = lang
	f.gotProvider = providerName
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

func newTestManager(t *testing.T) *storage.Manager {
	t.Helper()
	root := t.TempDir()
	m := storage.NewManager(storage.Config{
		UploadDir:     filepath.Join(root, "uploads"),
		AudioDir:      filepath.Join(root, "audio"),
		TranscriptDir: filepath.Join(root, "transcripts"),
		OutputDir:     filepath.Join(root, "outputs"),
		MaxFileSize:   10 << 20,
		VideoFormats:  []string{"mp4"},
	})
	require.NoError(t, m.EnsureDirs())
	return m
}

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func TestTranscribeMissingAudio(t *testing.T) {
	tr := NewTranscriber(&fakeGateway{}, language.DefaultSet(), newTestManager(t), nil)

	_, err := tr.Transcribe(context.Background(), "/nope/audio.wav", "en", "")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	assert.Contains(t, err.Error(), "Audio file not found")
}

func TestTranscribeUnsupportedLanguage(t *testing.T) {
	tr := NewTranscriber(&fakeGateway{}, language.DefaultSet(), newTestManager(t), nil)

	_, err := tr.Transcribe(context.Background(), writeAudioFile(t), "xx", "")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "not supported")
}

func TestTranscribeDelegatesToGateway(t *testing.T) {
	gw := &fakeGateway{segments: []segment.Segment{
		{Start: 0, End: 2.5, Text: "Hello world"},
		{Start: 2.5, End: 5, Text: "Second segment"},
	}}
	tr := NewTranscriber(gw, language.DefaultSet(), newTestManager(t), nil)
	audioPath := writeAudioFile(t)

	segments, err := tr.Transcribe(context.Background(), audioPath, "en", "openai")

	require.NoError(t, err)
	assert.Len(t, segments, 2)
	assert.Equal(t, audioPath, gw.gotAudioPath)
	assert.Equal(t, "en", gw.gotLanguage)
	assert.Equal(t, "openai", gw.gotProvider)
}

func TestTranscribePropagatesGatewayError(t *testing.T) {
	gw := &fakeGateway{err: errs.UpstreamFailure(nil, "OpenAI transcription failed: boom")}
	tr := NewTranscriber(gw, language.DefaultSet(), newTestManager(t), nil)

	_, err := tr.Transcribe(context.Background(), writeAudioFile(t), "en", "")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUpstreamFailure))
}

func TestTranscribeAndSaveWritesCSV(t *testing.T) {
	gw := &fakeGateway{segments: []segment.Segment{
		{Start: 0, End: 1.5, Text: "One"},
		{Start: 1.5, End: 3, Text: "Two"},
	}}
	m := newTestManager(t)
	tr := NewTranscriber(gw, language.DefaultSet(), m, nil)

	segments, csvPath, err := tr.TranscribeAndSave(context.Background(), writeAudioFile(t), "en", "", storage.Destination{FileID: "job-9"})

	require.NoError(t, err)
	assert.Len(t, segments, 2)
	assert.FileExists(t, csvPath)

	loaded, err := subtitle.ReadTranscriptCSV(csvPath)
	require.NoError(t, err)
	assert.Equal(t, segments, loaded)
}

func TestFullTranscriptText(t *testing.T) {
	segments := []segment.Segment{
		{Start: 0, End: 1, Text: "Hello"},
		{Start: 1, End: 2, Text: ""},
		{Start: 2, End: 3, Text: "world"},
	}

	// Every text joins in list order, empty ones included.
	assert.Equal(t, "Hello  world", FullTranscriptText(segments))
	assert.Equal(t, "", FullTranscriptText(nil))
}
