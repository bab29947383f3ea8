package subtitle

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
)

// FormatTimestamp renders seconds as an SRT timestamp (HH:MM:SS,mmm).
// Milliseconds are rounded, not truncated, so 3665.123 formats as
// "01:01:05,123" regardless of float representation.
func FormatTimestamp(seconds float64) string {
	totalMillis := int64(math.Round(seconds * 1000))
	if totalMillis < 0 {
		totalMillis = 0
	}

	hours := totalMillis / 3600000
	minutes := (totalMillis % 3600000) / 60000
	secs := (totalMillis % 60000) / 1000
	millis := totalMillis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// GenerateSRT renders segments as SRT content: 1-based sequential indices,
// a timing line, the text, and a blank separator per block.
//
// useTranslated selects the translated text field; generation fails if any
// segment is missing its timing or the selected text.
func GenerateSRT(segments []segment.Segment, useTranslated bool) (string, error) {
	if len(segments) == 0 {
		return "", errs.InvalidArgument("Cannot generate SRT from empty segments")
	}

	textField := "text"
	if useTranslated {
		textField = "translated_text"
	}

	for i, seg := range segments {
		if seg.Start < 0 || seg.End < seg.Start {
			return "", errs.InvalidArgument("Segment %d missing 'start' or 'end' field", i)
		}
		if selectedText(seg, useTranslated) == "" {
			return "", errs.InvalidArgument("Segment %d missing '%s' field", i, textField)
		}
	}

	var sb strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End))
		fmt.Fprintf(&sb, "%s\n\n", selectedText(seg, useTranslated))
	}
	return sb.String(), nil
}

func selectedText(seg segment.Segment, useTranslated bool) string {
	if useTranslated {
		return seg.TranslatedText
	}
	return seg.Text
}

// SaveSRT generates SRT content and writes it as a UTF-8 file.
func SaveSRT(segments []segment.Segment, path string, useTranslated bool) error {
	content, err := GenerateSRT(segments, useTranslated)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.SerializationFailure(err, "Failed to create output directory for %s", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errs.SerializationFailure(err, "Failed to save SRT file %s", path)
	}
	return nil
}

// GenerateSRTFromCSV reads a CSV artifact and writes the corresponding SRT
// file. With useTranslated it expects a translation CSV, otherwise a plain
// transcript CSV.
func GenerateSRTFromCSV(csvPath, outputPath string, useTranslated bool) error {
	var (
		segments []segment.Segment
		err      error
	)
	if useTranslated {
		segments, err = ReadTranslationCSV(csvPath)
	} else {
		segments, err = ReadTranscriptCSV(csvPath)
	}
	if err != nil {
		return err
	}
	return SaveSRT(segments, outputPath, useTranslated)
}

// Timing line grammar, tolerant of '.' as the millisecond separator.
var srtTimingPattern = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[,.](\d{1,3}) --> (\d{2}):(\d{2}):(\d{2})[,.](\d{1,3})`)

// ParseSRT parses SRT content back into segments. The parser is a small
// state machine over the standard grammar: index line, time-range line, one
// or more text lines, blank separator. Multi-line text is joined with "\n".
func ParseSRT(content string) ([]segment.Segment, error) {
	var segments []segment.Segment

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	current := segment.Segment{}
	state := "index"
	var textLines []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch state {
		case "index":
			if line == "" {
				continue
			}
			if _, err := strconv.Atoi(line); err != nil {
				continue // skip stray non-index lines
			}
			state = "time"

		case "time":
			if line == "" {
				continue
			}
			start, end, err := parseTimingLine(line)
			if err != nil {
				return nil, errs.SerializationFailure(err, "Failed to parse SRT content")
			}
			current.Start = start
			current.End = end
			state = "text"
			textLines = textLines[:0]

		case "text":
			if line == "" {
				if len(textLines) > 0 {
					current.Text = strings.Join(textLines, "\n")
					segments = append(segments, current)
					current = segment.Segment{}
				}
				state = "index"
				textLines = textLines[:0]
			} else {
				textLines = append(textLines, line)
			}
		}
	}

	// last block may end without a trailing blank line
	if state == "text" && len(textLines) > 0 {
		current.Text = strings.Join(textLines, "\n")
		segments = append(segments, current)
	}

	if err := scanner.Err(); err != nil {
		return nil, errs.SerializationFailure(err, "Failed to read SRT content")
	}
	return segments, nil
}

// LoadSRT reads and parses an SRT file.
func LoadSRT(path string) ([]segment.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.NotFound("SRT file not found: %s", path)
		}
		return nil, errs.SerializationFailure(err, "Failed to read SRT file %s", path)
	}
	return ParseSRT(string(data))
}

func parseTimingLine(line string) (float64, float64, error) {
	matches := srtTimingPattern.FindStringSubmatch(line)
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf("invalid time format: %s", line)
	}

	start := timestampSeconds(matches[1], matches[2], matches[3], matches[4])
	end := timestampSeconds(matches[5], matches[6], matches[7], matches[8])
	return start, end, nil
}

func timestampSeconds(hours, minutes, seconds, millis string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	// "5" means 500ms: fraction digits, not an integer millisecond count
	for len(millis) < 3 {
		millis += "0"
	}
	ms, _ := strconv.Atoi(millis)

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000
}
