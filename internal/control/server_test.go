package control

import (
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/syncd/internal/watcher"
)

func TestServer_AcceptsOneCommandPerConnection(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "syncd.sock")
	s, err := Start(sock)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	require.NoError(t, Send(sock, watcher.Command{Kind: watcher.CommandOpen, Path: "/tmp/r"}))

	select {
	case cmd := <-s.Queue():
		assert.Equal(t, watcher.CommandOpen, cmd.Kind)
		assert.Equal(t, "/tmp/r", cmd.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queued command")
	}
}

func TestServer_RemovesStaleSocketOnStart(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "syncd.sock")
	s1, err := Start(sock)
	require.NoError(t, err)
	// Simulate a crash: the listener goroutine stops but the socket file
	// is left behind (Shutdown is never called on s1, and the listener is
	// told not to unlink the file when it closes).
	s1.listener.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = s1.listener.Close()

	s2, err := Start(sock)
	require.NoError(t, err)
	t.Cleanup(s2.Shutdown)

	require.NoError(t, Send(sock, watcher.Command{Kind: watcher.CommandShutdown, Caller: "t"}))
	select {
	case cmd := <-s2.Queue():
		assert.Equal(t, watcher.CommandShutdown, cmd.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queued command")
	}
}

func TestServer_ShutdownClosesQueueAndRemovesSocket(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "syncd.sock")
	s, err := Start(sock)
	require.NoError(t, err)

	s.Shutdown()

	_, ok := <-s.Queue()
	assert.False(t, ok)
	assert.False(t, IsRunning(sock))
}

func TestServer_MalformedConnectionDoesNotAffectListener(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "syncd.sock")
	s, err := Start(sock)
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)

	assert.True(t, IsRunning(sock))
	// A well-formed command sent right after a malformed one must still
	// be queued: the listener keeps accepting.
	require.NoError(t, Send(sock, watcher.Command{Kind: watcher.CommandOpen, Path: "/x"}))

	select {
	case cmd := <-s.Queue():
		assert.Equal(t, "/x", cmd.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queued command")
	}
}
