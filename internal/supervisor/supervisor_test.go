package supervisor

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/syncd/internal/config"
	"github.com/aman-cerp/syncd/internal/control"
	"github.com/aman-cerp/syncd/internal/watcher"
)

func testPackageName(t *testing.T) string {
	t.Helper()
	name := "syncdtest-" + strings.ReplaceAll(t.Name(), "/", "-")
	t.Cleanup(func() { _ = os.RemoveAll(DerivePaths(name).Dir) })
	return name
}

func TestDropPrivileges_NoOpForRegularUser(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; drop would actually change credentials")
	}
	assert.NoError(t, dropPrivileges())
}

func TestSupervisor_StartupWritesPidAndSocket(t *testing.T) {
	cfg := config.Default()
	cfg.Package = testPackageName(t)
	cfg.PollInterval = 20 * time.Millisecond

	sup, err := New(cfg)
	require.NoError(t, err)

	_, statErr := os.Stat(sup.Paths().Pid)
	assert.NoError(t, statErr)
	assert.True(t, control.IsRunning(sup.Paths().Socket))

	require.NoError(t, sup.shutdown())
}

func TestSupervisor_SecondInstanceFailsLock(t *testing.T) {
	cfg := config.Default()
	cfg.Package = testPackageName(t)

	sup, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = sup.shutdown() }()

	_, err = New(cfg)
	assert.Error(t, err)
}

// A Shutdown command must be orderly: it stops the control channel,
// closes the watcher fan-in channel, removes the pid file, and Run returns
// a nil error.
func TestSupervisor_ShutdownCommandIsOrderly(t *testing.T) {
	cfg := config.Default()
	cfg.Package = testPackageName(t)
	cfg.PollInterval = 20 * time.Millisecond

	sup, err := New(cfg)
	require.NoError(t, err)

	sock := sup.Paths().Socket
	pidPath := sup.Paths().Pid

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background()) }()

	require.NoError(t, control.Send(sock, watcher.Command{Kind: watcher.CommandShutdown, Caller: "test"}))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not shut down")
	}

	assert.False(t, control.IsRunning(sock))
	_, statErr := os.Stat(pidPath)
	assert.True(t, os.IsNotExist(statErr), "pid file should be removed on orderly shutdown")
}

func TestSupervisor_OpenAndCloseCommandsDriveEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Package = testPackageName(t)
	cfg.PollInterval = 20 * time.Millisecond

	sup, err := New(cfg)
	require.NoError(t, err)

	sock := sup.Paths().Socket
	root := t.TempDir()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background()) }()

	require.NoError(t, control.Send(sock, watcher.Command{Kind: watcher.CommandOpen, Path: root}))
	require.Eventually(t, func() bool {
		return len(sup.Engine().Roots()) == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, control.Send(sock, watcher.Command{Kind: watcher.CommandClose, Path: root}))
	require.Eventually(t, func() bool {
		return len(sup.Engine().Roots()) == 0
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, control.Send(sock, watcher.Command{Kind: watcher.CommandShutdown, Caller: "test"}))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not shut down")
	}
}
