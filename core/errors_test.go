package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineErrorKinds(t *testing.T) {
	t.Run("KindOf", func(t *testing.T) {
		cause := errors.New("missing access")
		err := NewPipelineError(ErrorKindAccessDenied, cause)

		kind, ok := KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, ErrorKindAccessDenied, kind)
	})

	t.Run("KindSurvivesWrapping", func(t *testing.T) {
		err := NewPipelineError(ErrorKindTransient, errors.New("connection reset"))
		wrapped := fmt.Errorf("failed to fetch messages: %w", err)

		assert.True(t, IsTransient(wrapped))
		assert.False(t, IsAccessDenied(wrapped))
	})

	t.Run("UnwrapExposesCause", func(t *testing.T) {
		cause := errors.New("duplicate key value violates unique constraint")
		err := NewPipelineError(ErrorKindStorageFault, cause)

		assert.True(t, errors.Is(err, cause))
		assert.True(t, IsStorageFault(err))
	})

	t.Run("UntaggedError", func(t *testing.T) {
		err := errors.New("plain error")

		_, ok := KindOf(err)
		assert.False(t, ok)
		assert.False(t, IsAccessDenied(err))
		assert.False(t, IsStorageFault(err))
	})

	t.Run("NotFoundSentinel", func(t *testing.T) {
		err := fmt.Errorf("failed to get latest message: %w", ErrNotFound)
		assert.True(t, IsNotFoundError(err))
		assert.False(t, IsNotFoundError(nil))
	})
}
