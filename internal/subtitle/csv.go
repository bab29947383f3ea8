package subtitle

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
)

// CSV artifact schemas. The transcript form is what a user may inspect and
// edit between transcription and translation; the translation form carries
// both texts so the SRT step never needs to re-read the transcript.
var (
	transcriptHeader  = []string{"start_time", "end_time", "text"}
	translationHeader = []string{"start_time", "end_time", "original_text", "translated_text"}
)

// formatSeconds renders a float so that write→read round trips are lossless
// and whole seconds still carry a decimal point ("3.0", not "3").
func formatSeconds(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// WriteTranscriptCSV saves segments as a transcript CSV.
func WriteTranscriptCSV(segments []segment.Segment, path string) error {
	if len(segments) == 0 {
		return errs.InvalidArgument("Cannot save empty transcript")
	}

	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{formatSeconds(seg.Start), formatSeconds(seg.End), seg.Text})
	}
	return writeCSV(path, transcriptHeader, rows)
}

// ReadTranscriptCSV loads a transcript CSV back into segments.
func ReadTranscriptCSV(path string) ([]segment.Segment, error) {
	records, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	segments := make([]segment.Segment, 0, len(records))
	for i, record := range records {
		seg, err := recordToSegment(record, columns, "text")
		if err != nil {
			return nil, errs.SerializationFailure(err, "Failed to load transcript from CSV: row %d", i+1)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// WriteTranslationCSV saves translated segments. original_text is always the
// untranslated text field.
func WriteTranslationCSV(segments []segment.Segment, path string) error {
	if len(segments) == 0 {
		return errs.InvalidArgument("Cannot save empty translated segments")
	}

	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			seg.Text,
			seg.TranslatedText,
		})
	}
	return writeCSV(path, translationHeader, rows)
}

// ReadTranslationCSV loads a translation CSV back into segments.
func ReadTranslationCSV(path string) ([]segment.Segment, error) {
	records, columns, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	segments := make([]segment.Segment, 0, len(records))
	for i, record := range records {
		seg, err := recordToSegment(record, columns, "original_text")
		if err != nil {
			return nil, errs.SerializationFailure(err, "Failed to load translation from CSV: row %d", i+1)
		}
		if idx, ok := columns["translated_text"]; ok && idx < len(record) {
			seg.TranslatedText = record[idx]
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func recordToSegment(record []string, columns map[string]int, textColumn string) (segment.Segment, error) {
	var seg segment.Segment

	field := func(name string) (string, error) {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return "", fmt.Errorf("missing column %q", name)
		}
		return record[idx], nil
	}

	startRaw, err := field("start_time")
	if err != nil {
		return seg, err
	}
	endRaw, err := field("end_time")
	if err != nil {
		return seg, err
	}
	text, err := field(textColumn)
	if err != nil {
		return seg, err
	}

	if seg.Start, err = strconv.ParseFloat(startRaw, 64); err != nil {
		return seg, fmt.Errorf("invalid start_time %q: %w", startRaw, err)
	}
	if seg.End, err = strconv.ParseFloat(endRaw, 64); err != nil {
		return seg, fmt.Errorf("invalid end_time %q: %w", endRaw, err)
	}
	seg.Text = text
	return seg, nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.SerializationFailure(err, "Failed to create output directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errs.SerializationFailure(err, "Failed to create CSV file %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return errs.SerializationFailure(err, "Failed to write CSV header to %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		return errs.SerializationFailure(err, "Failed to write CSV rows to %s", path)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errs.SerializationFailure(err, "Failed to flush CSV file %s", path)
	}
	return nil
}

// readCSV returns the data records and a header-name to column-index map.
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errs.NotFound("CSV file not found: %s", path)
		}
		return nil, nil, errs.SerializationFailure(err, "Failed to open CSV file %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errs.SerializationFailure(err, "Failed to read CSV file %s", path)
	}
	if len(all) == 0 {
		return nil, map[string]int{}, nil
	}

	columns := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		columns[strings.TrimSpace(name)] = i
	}
	return all[1:], columns, nil
}
