package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
)

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

// writeScript drops an executable shell script used as an ffmpeg/ffprobe
// stand-in.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExtractAudioMissingVideo(t *testing.T) {
	e := NewExtractor(newTestManager(t))

	_, err := e.ExtractAudio(context.Background(), "/nope/video.mp4", storage.Destination{FileID: "abc"})

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	assert.Contains(t, err.Error(), "Video file not found")
}

func TestExtractAudioRunsCommand(t *testing.T) {
	m := newTestManager(t)
	videoPath := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("fake video"), 0o644))

	// The stand-in creates its last argument, like ffmpeg writing the
	// output file.
	e := NewExtractor(m)
	e.ffmpegCmd = writeScript(t, "ffmpeg", `for a in "$@"; do out="$a"; done; printf 'RIFF' > "$out"`)

	audioPath, err := e.ExtractAudio(context.Background(), videoPath, storage.Destination{FileID: "job-1"})

	require.NoError(t, err)
	assert.FileExists(t, audioPath)

	wantPath, err := m.Path(storage.KindAudio, "job-1", "wav")
	require.NoError(t, err)
	assert.Equal(t, wantPath, audioPath)
}

func TestExtractAudioCommandFailure(t *testing.T) {
	m := newTestManager(t)
	videoPath := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(videoPath, []byte("fake video"), 0o644))

	e := NewExtractor(m)
	e.ffmpegCmd = writeScript(t, "ffmpeg", `echo "moov atom not found" >&2; exit 1`)

	_, err := e.ExtractAudio(context.Background(), videoPath, storage.Destination{FileID: "job-2"})

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUpstreamFailure))
	assert.Contains(t, err.Error(), "moov atom not found")
}

func TestAudioDuration(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))

	e := NewExtractor(newTestManager(t))
	e.ffprobeCmd = writeScript(t, "ffprobe", `echo "12.480000"`)

	duration, err := e.AudioDuration(context.Background(), audioPath)

	require.NoError(t, err)
	assert.InDelta(t, 12.48, duration, 1e-9)
}

func TestAudioDurationUnparseable(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF"), 0o644))

	e := NewExtractor(newTestManager(t))
	e.ffprobeCmd = writeScript(t, "ffprobe", `echo "N/A"`)

	_, err := e.AudioDuration(context.Background(), audioPath)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindUpstreamFailure))
}

func TestAudioDurationMissingFile(t *testing.T) {
	e := NewExtractor(newTestManager(t))

	_, err := e.AudioDuration(context.Background(), "/nope.wav")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestExtractArgs(t *testing.T) {
	e := NewExtractor(newTestManager(t))

	args := e.extractArgs("in.mp4", "out.wav")

	assert.Equal(t, []string{
		"-i", "in.mp4",
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		"out.wav",
	}, args)
}
