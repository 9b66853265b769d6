package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := New(KindScan, "unsupported file type: .zip")
	assert.Equal(t, "scan: unsupported file type: .zip", err.Error())

	wrapped := Wrap(errors.New("permission denied"), KindExport, "writing out.csv")
	assert.Equal(t, "export: writing out.csv: permission denied", wrapped.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, KindQuery, "execute failed")
	require.ErrorIs(t, err, cause)
}

func TestIsKind(t *testing.T) {
	err := Newf(KindValidation, "query text is empty")
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(err, KindQuery))

	// Kind survives fmt wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsKind(wrapped, KindValidation))

	assert.False(t, IsKind(errors.New("plain"), KindValidation))
	assert.False(t, IsKind(nil, KindValidation))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSheet, KindOf(New(KindSheet, "unknown sheet")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "query text is empty", UserMessage(New(KindValidation, "query text is empty")))
	assert.Equal(t, "writing out.csv: disk full",
		UserMessage(Wrap(errors.New("disk full"), KindExport, "writing out.csv")))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Equal(t, "", UserMessage(nil))
}
