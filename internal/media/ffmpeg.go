// Package media wraps the FFmpeg binaries for audio extraction and duration
// probing. The pipeline treats both as black boxes: input video in, mono
// 16 kHz PCM WAV out.
package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/storage"
)

// CheckFFmpegInstalled reports whether the ffmpeg binary is on PATH.
func CheckFFmpegInstalled() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Extractor shells out to ffmpeg/ffprobe. Command names are fields so tests
// can substitute stand-ins.
type Extractor struct {
	ffmpegCmd  string
	ffprobeCmd string
	store      *storage.Manager
}

func NewExtractor(store *storage.Manager) *Extractor {
	return &Extractor{
		ffmpegCmd:  "ffmpeg",
		ffprobeCmd: "ffprobe",
		store:      store,
	}
}

// ExtractAudio converts a video into a speech-recognition-friendly WAV:
// mono, 16 kHz, 16-bit PCM. The destination is an explicit path or a file ID
// resolved into the audio directory.
func (e *Extractor) ExtractAudio(ctx context.Context, videoPath string, dest storage.Destination) (string, error) {
	if !storage.FileExists(videoPath) {
		return "", errs.NotFound("Video file not found: %s", videoPath)
	}

	outputPath, err := e.store.ResolveDestination(dest, storage.KindAudio, "wav")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", errs.UpstreamFailure(err, "Failed to create audio output directory")
	}

	cmdPath, err := exec.LookPath(e.ffmpegCmd)
	if err != nil {
		return "", errs.UpstreamFailure(err, "ffmpeg is not installed")
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdPath, e.extractArgs(videoPath, outputPath)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errs.UpstreamFailure(err, "FFmpeg failed to extract audio: %s", stderrTail(stderr.String()))
	}

	if !storage.FileExists(outputPath) {
		return "", errs.UpstreamFailure(nil, "FFmpeg completed but output file was not created")
	}
	return outputPath, nil
}

// ExtractAudioWithDuration extracts audio and probes its duration.
func (e *Extractor) ExtractAudioWithDuration(ctx context.Context, videoPath string, dest storage.Destination) (string, float64, error) {
	audioPath, err := e.ExtractAudio(ctx, videoPath, dest)
	if err != nil {
		return "", 0, err
	}

	duration, err := e.AudioDuration(ctx, audioPath)
	if err != nil {
		return "", 0, err
	}
	return audioPath, duration, nil
}

// AudioDuration returns the duration of an audio file in seconds.
func (e *Extractor) AudioDuration(ctx context.Context, audioPath string) (float64, error) {
	if !storage.FileExists(audioPath) {
		return 0, errs.NotFound("Audio file not found: %s", audioPath)
	}

	cmdPath, err := exec.LookPath(e.ffprobeCmd)
	if err != nil {
		return 0, errs.UpstreamFailure(err, "ffprobe is not installed")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cmdPath, e.durationArgs(audioPath)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, errs.UpstreamFailure(err, "FFprobe failed to get audio duration: %s", stderrTail(stderr.String()))
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, errs.UpstreamFailure(err, "Failed to parse duration from FFprobe output: %q", stdout.String())
	}
	return duration, nil
}

func (e *Extractor) extractArgs(videoPath, outputPath string) []string {
	return []string{
		"-i", videoPath,
		"-vn", // drop the video stream
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		outputPath,
	}
}

func (e *Extractor) durationArgs(audioPath string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	}
}

// stderrTail keeps error messages readable; ffmpeg writes a banner plus
// progress lines before the actual failure.
func stderrTail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
