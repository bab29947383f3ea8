package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmorelli/video-sub-pipeline/internal/errs"
	"github.com/jmorelli/video-sub-pipeline/internal/genai"
	"github.com/jmorelli/video-sub-pipeline/internal/llm"
	"github.com/jmorelli/video-sub-pipeline/internal/segment"
)

// backend is the uniform surface both providers implement. Implementations
// normalize their heterogeneous transcription shapes into ordered Segment
// lists and wrap their own failures as UpstreamFailure.
type backend interface {
	configured() bool
	transcribe(ctx context.Context, audioPath, language string) ([]segment.Segment, error)
	chat(ctx context.Context, prompt string) (string, error)
}

// Gateway dispatches transcription and translation calls to one of the two
// backends, selected by name or by the configured default. Backends are
// created once and reused read-only, so a Gateway is safe for concurrent use.
type Gateway struct {
	defaultProvider Provider
	backends        map[Provider]backend
}

// NewGateway builds a gateway over already-constructed provider clients.
// Either client may be unconfigured (empty API key); the corresponding
// operations fail lazily at call time with ProviderUnavailable.
func NewGateway(defaultProvider Provider, openaiClient *llm.Client, geminiClient *genai.Client) *Gateway {
	return &Gateway{
		defaultProvider: defaultProvider,
		backends: map[Provider]backend{
			OpenAI: &openaiBackend{client: openaiClient},
			Gemini: &geminiBackend{client: geminiClient},
		},
	}
}

// DefaultProvider returns the provider used when a caller passes "".
func (g *Gateway) DefaultProvider() Provider {
	return g.defaultProvider
}

// SetDefaultProvider changes the default used for empty provider arguments.
// Called when runtime settings are updated.
func (g *Gateway) SetDefaultProvider(p Provider) {
	g.defaultProvider = p
}

// Configured reports whether the named provider has a credential.
func (g *Gateway) Configured(p Provider) bool {
	b, ok := g.backends[p]
	return ok && b.configured()
}

// Resolve maps a caller-supplied provider name to a usable backend.
// An empty name selects the configured default. The credential check happens
// here, before any network activity.
func (g *Gateway) resolve(name string) (Provider, backend, error) {
	p := g.defaultProvider
	if name != "" {
		parsed, err := Parse(name)
		if err != nil {
			return "", nil, err
		}
		p = parsed
	}

	b, ok := g.backends[p]
	if !ok {
		return "", nil, errs.InvalidArgument("Unknown provider: %s", p)
	}
	if !b.configured() {
		return "", nil, errs.ProviderUnavailable("%s API key not configured", p.DisplayName())
	}
	return p, b, nil
}

// Transcribe converts audio into an ordered list of timestamped segments.
// If the selected backend yields no usable segmentation it falls back to a
// single segment spanning the whole input rather than failing.
func (g *Gateway) Transcribe(ctx context.Context, audioPath, language, providerName string) ([]segment.Segment, error) {
	_, b, err := g.resolve(providerName)
	if err != nil {
		return nil, err
	}
	return b.transcribe(ctx, audioPath, language)
}

// Translate renders the fixed translation prompt and sends it through the
// selected backend. The response is passed through trim-only: a backend that
// ignores the "return only the translated text" instruction leaks its
// commentary straight to the caller.
func (g *Gateway) Translate(ctx context.Context, text, sourceLanguage, targetLanguage, contextStr, providerName string) (string, error) {
	p, b, err := g.resolve(providerName)
	if err != nil {
		return "", err
	}

	translated, err := b.chat(ctx, translationPrompt(text, sourceLanguage, targetLanguage, contextStr))
	if err != nil {
		return "", errs.UpstreamFailure(err, "%s translation failed: %v", p.DisplayName(), err)
	}
	return strings.TrimSpace(translated), nil
}

// Complete sends a free-form prompt through the selected backend and returns
// the trimmed response. Used for context summarization, where the prompt is
// owned by the caller.
func (g *Gateway) Complete(ctx context.Context, prompt, providerName string) (string, error) {
	p, b, err := g.resolve(providerName)
	if err != nil {
		return "", err
	}

	response, err := b.chat(ctx, prompt)
	if err != nil {
		return "", errs.UpstreamFailure(err, "%s completion failed: %v", p.DisplayName(), err)
	}
	return strings.TrimSpace(response), nil
}

const translatorRole = "You are a professional translator."

// translationPrompt is the fixed template shared by both backends.
func translationPrompt(text, sourceLanguage, targetLanguage, contextStr string) string {
	return fmt.Sprintf(`%s

Context about the full content: %s

Translate the following text from %s to %s.
Maintain professional tone, cultural nuances, and technical accuracy.
Only return the translated text, no explanations.

Text to translate:
"%s"

Translation:`, translatorRole, contextStr, sourceLanguage, targetLanguage, text)
}
