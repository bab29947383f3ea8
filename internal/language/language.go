package language

import (
	"slices"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
)

var defaultCodes = []string{
	"en", "zh", "hi", "es", "ar", "fr", "bn", "pt", "ru", "ur",
	"id", "de", "ja", "mr", "te", "tr", "ta", "vi", "ko", "sw",
}

// DefaultCodes returns the default allow-list of ISO 639-1 codes, roughly
// the twenty most spoken languages. Callers get a fresh copy.
func DefaultCodes() []string {
	return slices.Clone(defaultCodes)
}

// Set is an ordered allow-list of language codes. Every pipeline stage that
// accepts a source or target language validates against a Set before doing
// any external work.
type Set struct {
	codes []string
}

func NewSet(codes []string) Set {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" || slices.Contains(cleaned, code) {
			continue
		}
		cleaned = append(cleaned, code)
	}
	return Set{codes: cleaned}
}

func DefaultSet() Set {
	return NewSet(DefaultCodes())
}

func (s Set) Contains(code string) bool {
	return slices.Contains(s.codes, code)
}

// Codes returns the allow-list in its configured order.
func (s Set) Codes() []string {
	return append([]string(nil), s.codes...)
}

func (s Set) supportedList() string {
	return strings.Join(s.codes, ", ")
}

// Validate checks a bare language code, as used by transcription.
func (s Set) Validate(code string) error {
	if !s.Contains(code) {
		return errs.InvalidArgument("Language '%s' is not supported. Supported languages: %s",
			code, s.supportedList())
	}
	return nil
}

// ValidateSource and ValidateTarget carry distinct messages so callers can
// tell which side of a translation request was rejected.
func (s Set) ValidateSource(code string) error {
	if !s.Contains(code) {
		return errs.InvalidArgument("Source language '%s' is not supported. Supported languages: %s",
			code, s.supportedList())
	}
	return nil
}

func (s Set) ValidateTarget(code string) error {
	if !s.Contains(code) {
		return errs.InvalidArgument("Target language '%s' is not supported. Supported languages: %s",
			code, s.supportedList())
	}
	return nil
}

// Info describes one allow-listed language for API listings.
type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Describe returns the allow-list with English display names.
func (s Set) Describe() []Info {
	ret := make([]Info, 0, len(s.codes))
	for _, code := range s.codes {
		ret = append(ret, Info{Code: code, Name: DisplayName(code)})
	}
	return ret
}

// DisplayName returns the English display name for an ISO 639-1 code, or the
// code itself when it cannot be parsed.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

// Detect guesses the ISO 639-1 code of text. Returns "" when detection is
// unreliable or the text is empty.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
