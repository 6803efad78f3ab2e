package syncerrs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncError_IsMatchesByKind(t *testing.T) {
	// Given: two distinct errors of the same kind and one of a different kind
	a := ScanError("walk failed", nil)
	b := ScanError("different walk failed", assert.AnError)
	c := ProtocolError("bad frame", nil)

	// Then: errors.Is matches on Kind regardless of message/cause
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestSyncError_UnwrapExposesCause(t *testing.T) {
	// Given: a wrapped cause
	cause := assert.AnError
	err := ProjectInitError("could not read ignore file", cause)

	// Then: errors.Unwrap reaches the cause
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestSyncError_WithDetail(t *testing.T) {
	// Given: an error with an attached detail
	err := BadRequest("unknown command", nil).WithDetail(`tag="frobnicate"`)

	// Then: the detail appears in the formatted message
	assert.Contains(t, err.Error(), "frobnicate")
}
