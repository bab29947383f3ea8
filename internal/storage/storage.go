// Package storage owns the on-disk layout for pipeline artifacts: uploaded
// videos, extracted audio, CSV transcripts, and generated subtitle output.
// Files are addressed by a generated file ID so no stage ever needs to know
// another stage's directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
)

// Kind selects one of the managed storage directories.
type Kind string

const (
	KindUpload     Kind = "upload"
	KindAudio      Kind = "audio"
	KindTranscript Kind = "transcript"
	KindOutput     Kind = "output"
)

// Config holds the storage directories and upload limits.
type Config struct {
	UploadDir     string   `json:"upload_dir"`
	AudioDir      string   `json:"audio_dir"`
	TranscriptDir string   `json:"transcript_dir"`
	OutputDir     string   `json:"output_dir"`
	MaxFileSize   int64    `json:"max_file_size"`
	VideoFormats  []string `json:"video_formats"`
}

// Manager resolves file IDs to paths and enforces upload limits.
type Manager struct {
	cfg  Config
	dirs map[Kind]string
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg: cfg,
		dirs: map[Kind]string{
			KindUpload:     cfg.UploadDir,
			KindAudio:      cfg.AudioDir,
			KindTranscript: cfg.TranscriptDir,
			KindOutput:     cfg.OutputDir,
		},
	}
}

// EnsureDirs creates all managed directories.
func (m *Manager) EnsureDirs() error {
	for kind, dir := range m.dirs {
		if dir == "" {
			return fmt.Errorf("storage directory for %s is not configured", kind)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s directory: %w", kind, err)
		}
	}
	return nil
}

// NewFileID generates a fresh upload identifier.
func (m *Manager) NewFileID() string {
	return uuid.NewString()
}

// FileExists reports whether a regular file is present at path.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Path resolves the artifact path for a file ID and kind. The path is
// deterministic; the file may not exist yet.
func (m *Manager) Path(kind Kind, fileID, ext string) (string, error) {
	dir, ok := m.dirs[kind]
	if !ok {
		return "", errs.InvalidArgument("Invalid storage kind: %s", kind)
	}
	ext = strings.TrimPrefix(ext, ".")
	return filepath.Join(dir, fileID+"."+ext), nil
}

// Find locates an existing artifact of the given kind by file ID, whatever
// its extension. Fails with NotFound when no artifact exists.
func (m *Manager) Find(kind Kind, fileID string) (string, error) {
	dir, ok := m.dirs[kind]
	if !ok {
		return "", errs.InvalidArgument("Invalid storage kind: %s", kind)
	}

	matches, err := filepath.Glob(filepath.Join(dir, fileID+".*"))
	if err != nil {
		return "", errs.InvalidArgument("Invalid file ID: %s", fileID)
	}
	for _, match := range matches {
		if FileExists(match) {
			return match, nil
		}
	}
	return "", errs.NotFound("No %s file found for ID %s", kind, fileID)
}

// SaveUpload validates and stores an uploaded video, returning its file ID
// and stored path. The extension allow-list and size cap are enforced here,
// before anything downstream sees the file.
func (m *Manager) SaveUpload(r io.Reader, filename string) (string, string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" || !slices.Contains(m.cfg.VideoFormats, ext) {
		return "", "", errs.InvalidArgument("File type '%s' is not allowed. Allowed formats: %s",
			ext, strings.Join(m.cfg.VideoFormats, ", "))
	}

	fileID := m.NewFileID()
	path, err := m.Path(KindUpload, fileID, ext)
	if err != nil {
		return "", "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	// read one byte past the cap to tell "exactly at cap" from "over cap"
	written, err := io.Copy(f, io.LimitReader(r, m.cfg.MaxFileSize+1))
	if err != nil {
		_ = os.Remove(path)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}
	if written > m.cfg.MaxFileSize {
		_ = os.Remove(path)
		return "", "", errs.InvalidArgument("File exceeds maximum size of %d MB", m.cfg.MaxFileSize/(1024*1024))
	}

	return fileID, path, nil
}

// Remove deletes every artifact associated with a file ID across all kinds.
// Missing artifacts are not an error; the first real failure is returned.
func (m *Manager) Remove(fileID string) error {
	var firstErr error
	for kind := range m.dirs {
		path, err := m.Find(kind, fileID)
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Destination selects where an artifact should be written: an explicit path,
// or a file ID resolved against the managed directories. Exactly one of the
// two must be set.
type Destination struct {
	Path   string
	FileID string
}

// ResolveDestination turns a Destination into a concrete path for the given
// kind and extension.
func (m *Manager) ResolveDestination(d Destination, kind Kind, ext string) (string, error) {
	switch {
	case d.Path != "" && d.FileID != "":
		return "", errs.InvalidArgument("Either output path or file ID must be provided, not both")
	case d.Path != "":
		return d.Path, nil
	case d.FileID != "":
		return m.Path(kind, d.FileID, ext)
	default:
		return "", errs.InvalidArgument("Either output path or file ID must be provided")
	}
}
