package subtitle

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0.0, "00:00:00,000"},
		{3661.5, "01:01:01,500"},
		{65.123, "00:01:05,123"},
		{3665.123, "01:01:05,123"},
		{0.9996, "00:00:01,000"},
		{7325.042, "02:02:05,042"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func translatedSegments() []segment.Segment {
	return []segment.Segment{
		{Start: 0.0, End: 3.0, Text: "Hello", TranslatedText: "Hola"},
		{Start: 3.0, End: 6.0, Text: "World", TranslatedText: "Mundo"},
	}
}

func TestGenerateSRTTranslated(t *testing.T) {
	content, err := GenerateSRT(translatedSegments(), true)

	require.NoError(t, err)
	assert.Contains(t, content, "1\n00:00:00,000 --> 00:00:03,000\nHola\n\n")
	assert.Contains(t, content, "2\n00:00:03,000 --> 00:00:06,000\nMundo\n\n")
}

func TestGenerateSRTOriginalText(t *testing.T) {
	content, err := GenerateSRT(translatedSegments(), false)

	require.NoError(t, err)
	assert.Contains(t, content, "Hello")
	assert.NotContains(t, content, "Hola")
}

func TestGenerateSRTEmpty(t *testing.T) {
	_, err := GenerateSRT(nil, true)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "Cannot generate SRT from empty segments")
}

func TestGenerateSRTMissingTiming(t *testing.T) {
	// End before Start reads as a missing end time.
	segments := []segment.Segment{
		{Start: 0.0, End: 3.0, Text: "ok"},
		{Start: 3.0, End: 0.0, Text: "broken"},
	}

	_, err := GenerateSRT(segments, false)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "Segment 1 missing 'start' or 'end' field")
}

func TestGenerateSRTMissingText(t *testing.T) {
	segments := []segment.Segment{{Start: 0.0, End: 3.0, Text: "Hello"}}

	_, err := GenerateSRT(segments, true)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInvalidArgument))
	assert.Contains(t, err.Error(), "Segment 0 missing 'translated_text' field")

	_, err = GenerateSRT([]segment.Segment{{Start: 0, End: 1}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Segment 0 missing 'text' field")
}

func TestSRTRoundTrip(t *testing.T) {
	segments := []segment.Segment{
		{Start: 0.0, End: 2.5, Text: "First line"},
		{Start: 2.5, End: 65.123, Text: "Second line"},
		{Start: 3661.5, End: 3700.0, Text: "Third line"},
	}

	content, err := GenerateSRT(segments, false)
	require.NoError(t, err)

	parsed, err := ParseSRT(content)
	require.NoError(t, err)

	require.Len(t, parsed, len(segments))
	for i := range segments {
		assert.InDelta(t, segments[i].Start, parsed[i].Start, 0.001, "segment %d start", i)
		assert.InDelta(t, segments[i].End, parsed[i].End, 0.001, "segment %d end", i)
		assert.Equal(t, segments[i].Text, parsed[i].Text, "segment %d text", i)
	}
}

func TestParseSRTMultilineAndDotSeparator(t *testing.T) {
	content := "1\n00:00:00.500 --> 00:00:02,000\nline one\nline two\n\n2\n00:00:02,000 --> 00:00:04,000\nlast block without trailing blank"

	parsed, err := ParseSRT(content)

	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.InDelta(t, 0.5, parsed[0].Start, 1e-9)
	assert.Equal(t, "line one\nline two", parsed[0].Text)
	assert.Equal(t, "last block without trailing blank", parsed[1].Text)
}

func TestParseSRTInvalidTiming(t *testing.T) {
	_, err := ParseSRT("1\nnot a timing line\n")

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSerializationFailure))
}

func TestSaveAndLoadSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "video.srt")

	require.NoError(t, SaveSRT(translatedSegments(), path, true))

	loaded, err := LoadSRT(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Hola", loaded[0].Text)
}

func TestLoadSRTMissing(t *testing.T) {
	_, err := LoadSRT(filepath.Join(t.TempDir(), "nope.srt"))

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestGenerateSRTFromCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "translation.csv")
	srtPath := filepath.Join(dir, "out.srt")
	require.NoError(t, WriteTranslationCSV(translatedSegments(), csvPath))

	require.NoError(t, GenerateSRTFromCSV(csvPath, srtPath, true))

	data, err := os.ReadFile(srtPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hola")
	assert.Contains(t, string(data), "00:00:03,000 --> 00:00:06,000")
}

func TestTimestampRoundTripTolerance(t *testing.T) {
	// Formatting then parsing stays within one millisecond.
	for _, sec := range []float64{0.0, 0.001, 1.9994, 59.999, 3599.5, 86399.001} {
		start, _, err := parseTimingLine(FormatTimestamp(sec) + " --> " + FormatTimestamp(sec))
		require.NoError(t, err)
		assert.LessOrEqual(t, math.Abs(start-sec), 0.001, "seconds=%v", sec)
	}
}
