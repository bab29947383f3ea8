package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleSegments() []Segment {
	return []Segment{
		{Start: 0.0, End: 2.5, Text: "Hello world"},
		{Start: 2.5, End: 5.0, Text: "This is a test"},
		{Start: 5.0, End: 7.5, Text: "Testing transcription"},
	}
}

func TestFullText(t *testing.T) {
	assert.Equal(t, "Hello world This is a test Testing transcription", FullText(sampleSegments()))
	assert.Equal(t, "", FullText(nil))
	assert.Equal(t, "", FullText([]Segment{}))
}

func TestSpan(t *testing.T) {
	assert.InDelta(t, 7.5, Span(sampleSegments()), 1e-9)
	assert.Equal(t, 0.0, Span(nil))

	// Span uses first start, not zero.
	offset := []Segment{
		{Start: 10.0, End: 12.0, Text: "a"},
		{Start: 12.0, End: 22.0, Text: "b"},
	}
	assert.InDelta(t, 12.0, Span(offset), 1e-9)
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 8, WordCount(sampleSegments()))
	assert.Equal(t, 0, WordCount(nil))
}

func TestCloneDoesNotShareBacking(t *testing.T) {
	original := sampleSegments()

	cloned := Clone(original)
	cloned[0].TranslatedText = "Hola mundo"

	assert.Equal(t, "", original[0].TranslatedText)
	assert.Equal(t, "Hola mundo", cloned[0].TranslatedText)
	assert.Nil(t, Clone(nil))
}
