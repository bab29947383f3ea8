package segment

import "strings"

// Segment is one timed span of transcript text. Times are seconds from the
// start of the media. TranslatedText is empty until the translation stage
// fills it.
type Segment struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Text           string  `json:"text"`
	TranslatedText string  `json:"translated_text,omitempty"`
}

// FullText joins segment texts with single spaces, in list order.
func FullText(segments []Segment) string {
	if len(segments) == 0 {
		return ""
	}
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// Span is the covered duration in seconds: last end minus first start.
// Segment lists keep their insertion order, so no scanning for extremes.
func Span(segments []Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End - segments[0].Start
}

// WordCount counts whitespace-separated words across all segments.
func WordCount(segments []Segment) int {
	return len(strings.Fields(FullText(segments)))
}

// Clone returns a copy of the list so downstream stages can attach
// translations without mutating the caller's slice.
func Clone(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}
