package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	pf := New(filepath.Join(t.TempDir(), "run", "factoryd.pid"))

	require.NoError(t, pf.Acquire())
	pid, err := pf.PID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, pf.Release())
	_, err = os.Stat(pf.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire_RejectsLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factoryd.pid")
	// the test process itself is alive
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644))

	err := New(path).Acquire()
	var running *ErrRunning
	require.True(t, errors.As(err, &running))
	assert.Equal(t, os.Getpid(), running.PID)
}

func TestAcquire_ReplacesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factoryd.pid")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	pf := New(path)
	require.NoError(t, pf.Acquire())
	pid, err := pf.PID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRelease_LeavesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factoryd.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	require.NoError(t, New(path).Release())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestKillExisting_MissingFile(t *testing.T) {
	assert.NoError(t, New(filepath.Join(t.TempDir(), "none.pid")).KillExisting(time.Second))
}

func TestRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factoryd.pid")
	pf := New(path)

	_, running := pf.Running()
	assert.False(t, running, "missing file")

	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o644))
	pid, running := pf.Running()
	assert.True(t, running)
	assert.Equal(t, os.Getppid(), pid)

	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644))
	_, running = pf.Running()
	assert.False(t, running, "own pid")
}
