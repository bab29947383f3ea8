// Package provider presents transcription and translation as two operations,
// each implementable by one of two interchangeable LLM backends. Provider
// selection and the fixed prompt contracts live here so no caller ever
// branches on a provider name.
package provider

import (
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
)

// Provider identifies one of the two known LLM backends. The set is closed:
// anything outside Parse's cases is rejected before any network activity.
type Provider string

const (
	OpenAI Provider = "openai"
	Gemini Provider = "gemini"
)

// Parse maps a provider name to its Provider value.
// Fails with InvalidArgument for anything outside the known set.
func Parse(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case OpenAI:
		return OpenAI, nil
	case Gemini:
		return Gemini, nil
	default:
		return "", errs.InvalidArgument("Unknown provider: %s", name)
	}
}

func (p Provider) String() string {
	return string(p)
}

// DisplayName is the capitalized form used in user-facing error messages.
func (p Provider) DisplayName() string {
	switch p {
	case OpenAI:
		return "OpenAI"
	case Gemini:
		return "Gemini"
	default:
		return string(p)
	}
}

// Names lists the valid provider identifiers.
func Names() []string {
	return []string{string(OpenAI), string(Gemini)}
}
