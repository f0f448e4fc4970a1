package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "cannot open page", New(Navigation, "cannot open page").Error())
	assert.Equal(t, "cannot open page: connection refused", Wrap(Navigation, "cannot open page", cause).Error())
	assert.Equal(t, "connection refused", Wrap(Navigation, "", cause).Error())
	assert.Equal(t, "io", (&Error{Code: IO}).Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Internal, CodeOf(nil))
	assert.Equal(t, Internal, CodeOf(errors.New("plain")))
	assert.Equal(t, ElementNotFound, CodeOf(New(ElementNotFound, "no match")))

	wrapped := fmt.Errorf("step failed: %w", Wrap(Capture, "screenshot", errors.New("x")))
	assert.Equal(t, Capture, CodeOf(wrapped))
	assert.True(t, Is(wrapped, Capture))
	assert.False(t, Is(wrapped, IO))
	assert.False(t, Is(nil, Internal))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IO, "write capture", cause)
	assert.True(t, errors.Is(err, cause))
}
