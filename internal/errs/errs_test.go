package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	// Arrange
	err := InvalidArgument("Cannot translate empty segments").
		WithContext("source_language", "en")

	// Act
	msg := err.Error()

	// Assert
	assert.Contains(t, msg, "[InvalidArgument]")
	assert.Contains(t, msg, "Cannot translate empty segments")
	assert.Contains(t, msg, "source_language=en")
}

func TestKindOfWrappedError(t *testing.T) {
	cause := errors.New("connection refused")
	err := UpstreamFailure(cause, "OpenAI translation failed: %v", cause)

	wrapped := fmt.Errorf("translate segment 3: %w", err)

	assert.Equal(t, KindUpstreamFailure, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindUpstreamFailure))
	assert.False(t, IsKind(wrapped, KindNotFound))
	assert.ErrorIs(t, wrapped, cause)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindNotFound))
}

func TestProviderUnavailableKind(t *testing.T) {
	err := ProviderUnavailable("Gemini API key not configured")

	assert.True(t, IsKind(err, KindProviderUnavailable))
	assert.Equal(t, "Gemini API key not configured", err.Message)
	assert.Nil(t, err.Unwrap())
}
