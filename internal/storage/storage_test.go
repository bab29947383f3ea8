package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	base := t.TempDir()
	m := NewManager(Config{
		UploadDir:     filepath.Join(base, "uploads"),
		AudioDir:      filepath.Join(base, "audio"),
		TranscriptDir: filepath.Join(base, "transcripts"),
		OutputDir:     filepath.Join(base, "output"),
		MaxFileSize:   1024,
		VideoFormats:  []string{"mp4", "mkv", "webm"},
	})
	require.NoError(t, m.EnsureDirs())
	return m
}

func TestSaveUploadAndFind(t *testing.T) {
	m := testManager(t)

	fileID, path, err := m.SaveUpload(strings.NewReader("fake video bytes"), "Holiday.Video.mp4")

	require.NoError(t, err)
	assert.NotEmpty(t, fileID)
	assert.True(t, FileExists(path))
	assert.Equal(t, ".mp4", filepath.Ext(path))

	found, err := m.Find(KindUpload, fileID)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestSaveUploadRejectsExtension(t *testing.T) {
	m := testManager(t)

	_, _, err := m.SaveUpload(strings.NewReader("x"), "document.pdf")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "File type 'pdf' is not allowed")
	assert.Contains(t, err.Error(), "mp4, mkv, webm")
}

func TestSaveUploadRejectsOversize(t *testing.T) {
	m := testManager(t)

	_, _, err := m.SaveUpload(strings.NewReader(strings.Repeat("a", 2048)), "big.mp4")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "maximum size")

	// the partial file must not linger
	entries, readErr := os.ReadDir(filepath.Dir(mustPath(t, m, KindUpload, "any", "mp4")))
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func mustPath(t *testing.T, m *Manager, kind Kind, id, ext string) string {
	t.Helper()
	p, err := m.Path(kind, id, ext)
	require.NoError(t, err)
	return p
}

func TestFindNotFound(t *testing.T) {
	m := testManager(t)

	_, err := m.Find(KindAudio, "missing-id")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
	assert.Contains(t, err.Error(), "missing-id")
}

func TestRemoveCleansAllKinds(t *testing.T) {
	m := testManager(t)
	fileID := m.NewFileID()
	for kind, ext := range map[Kind]string{KindUpload: "mp4", KindAudio: "wav", KindTranscript: "csv", KindOutput: "srt"} {
		path := mustPath(t, m, kind, fileID, ext)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	require.NoError(t, m.Remove(fileID))

	for _, kind := range []Kind{KindUpload, KindAudio, KindTranscript, KindOutput} {
		_, err := m.Find(kind, fileID)
		assert.True(t, errs.IsKind(err, errs.KindNotFound), "kind %s", kind)
	}
}

func TestResolveDestination(t *testing.T) {
	m := testManager(t)

	// explicit path wins
	path, err := m.ResolveDestination(Destination{Path: "/tmp/out.srt"}, KindOutput, "srt")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out.srt", path)

	// file ID resolves into the managed directory
	path, err = m.ResolveDestination(Destination{FileID: "abc"}, KindOutput, "srt")
	require.NoError(t, err)
	assert.Equal(t, mustPath(t, m, KindOutput, "abc", "srt"), path)

	// neither is an error
	_, err = m.ResolveDestination(Destination{}, KindOutput, "srt")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "Either output path or file ID must be provided")

	// both is also an error
	_, err = m.ResolveDestination(Destination{Path: "/tmp/x", FileID: "abc"}, KindOutput, "srt")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
}
