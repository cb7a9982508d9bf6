package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Kind(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{"validation", Validationf("bad %s", "field"), KindValidation, "bad field"},
		{"backend", NewBackendError("Client error occurred: boom", cause), KindBackend, "Client error occurred: boom"},
		{"generation", GenerationFailuref("Image generation error. Error: %s", "blocked"), KindGeneration, "Image generation error. Error: blocked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.Equal(t, tt.kind, KindOf(wrapped))
			assert.True(t, IsKind(wrapped, tt.kind))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}

	t.Run("種別なしのエラーは0なのだ", func(t *testing.T) {
		assert.Equal(t, Kind(0), KindOf(cause))
	})

	t.Run("Unwrap で原因を辿れるのだ", func(t *testing.T) {
		err := NewBackendError("x", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("メッセージが空なら原因の文字列を使うのだ", func(t *testing.T) {
		err := &Error{Kind: KindBackend, Err: cause}
		assert.Equal(t, "connection reset", err.Error())
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ValidationError", KindValidation.String())
	assert.Equal(t, "BackendError", KindBackend.String())
	assert.Equal(t, "GenerationFailure", KindGeneration.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
