package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeRateLimited, CodeOf(ErrRateLimited))
	assert.Equal(t, CodeInvalidMessage, CodeOf(ErrInvalidMessage.WithDetail("too long")))
	assert.Zero(t, CodeOf(errors.New("plain")))
	assert.Zero(t, CodeOf(nil))
}

func TestWithDetailKeepsIdentity(t *testing.T) {
	err := ErrInvalidMessage.WithDetail("empty content")

	assert.True(t, errors.Is(err, ErrInvalidMessage))
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.Contains(t, err.Error(), "empty content")

	// The original sentinel is untouched.
	assert.Empty(t, ErrInvalidMessage.Detail)
}
