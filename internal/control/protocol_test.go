package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/syncd/internal/watcher"
)

func TestDecode_OpenRoundTrip(t *testing.T) {
	cmd := watcher.Command{Kind: watcher.CommandOpen, Path: "/tmp/r"}
	payload, err := Encode(cmd)
	require.NoError(t, err)

	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, cmd, got)
}

func TestDecode_CloseRoundTrip(t *testing.T) {
	cmd := watcher.Command{Kind: watcher.CommandClose, Path: "/tmp/r"}
	payload, err := Encode(cmd)
	require.NoError(t, err)

	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, cmd, got)
}

func TestDecode_ShutdownRoundTrip(t *testing.T) {
	cmd := watcher.Command{Kind: watcher.CommandShutdown, Caller: "test"}
	payload, err := Encode(cmd)
	require.NoError(t, err)

	got, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, cmd, got)
}

func TestDecode_UnknownVariantIsProtocolError(t *testing.T) {
	_, err := Decode([]byte(`{"Frobnicate": {"path": "/tmp/r"}}`))
	assert.Error(t, err)
}

func TestDecode_MissingFieldIsProtocolError(t *testing.T) {
	_, err := Decode([]byte(`{"Open": {}}`))
	assert.Error(t, err)
}

func TestDecode_MultipleVariantsIsProtocolError(t *testing.T) {
	_, err := Decode([]byte(`{"Open": {"path": "/a"}, "Close": {"path": "/b"}}`))
	assert.Error(t, err)
}

func TestDecode_MultipleCommandsInOneConnectionIsProtocolError(t *testing.T) {
	_, err := Decode([]byte(`{"Open": {"path": "/a"}}{"Close": {"path": "/a"}}`))
	assert.Error(t, err)
}

func TestDecode_EmptyPayloadIsProtocolError(t *testing.T) {
	_, err := Decode([]byte(``))
	assert.Error(t, err)
}
