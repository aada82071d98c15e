// Package pidfile keeps a single factoryd instance per PID file.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrRunning is returned by Acquire when a live process holds the file
type ErrRunning struct {
	PID int
}

func (e *ErrRunning) Error() string {
	return fmt.Sprintf("daemon is already running (PID %d)", e.PID)
}

// PIDFile manages a process ID file
type PIDFile struct {
	path string
}

func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

func (p *PIDFile) Path() string { return p.path }

// Acquire writes the current PID. A stale or unreadable file is replaced;
// a file naming a live process yields *ErrRunning.
func (p *PIDFile) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil {
				return fmt.Errorf("failed to write PID file: %w", werr)
			}
			return cerr
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create PID file: %w", err)
		}

		pid, rerr := p.PID()
		if rerr == nil && isProcessRunning(pid) {
			return &ErrRunning{PID: pid}
		}
		// stale
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale PID file: %w", err)
		}
	}
	return fmt.Errorf("failed to acquire PID file %s", p.path)
}

// PID reads the process ID stored in the file
func (p *PIDFile) PID() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file contents: %w", err)
	}
	return pid, nil
}

// Running reports the recorded PID when it names a live process other than this one
func (p *PIDFile) Running() (int, bool) {
	pid, err := p.PID()
	if err != nil || pid == os.Getpid() {
		return 0, false
	}
	return pid, isProcessRunning(pid)
}

// Release removes the file if it still names this process
func (p *PIDFile) Release() error {
	pid, err := p.PID()
	if err == nil && pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// KillExisting sends SIGTERM to the recorded process and waits up to timeout
// for it to exit before removing the file.
func (p *PIDFile) KillExisting(timeout time.Duration) error {
	pid, err := p.PID()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if pid == os.Getpid() || !isProcessRunning(pid) {
		return p.forceRemove()
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("failed to signal PID %d: %w", pid, err)
	}
	deadline := time.Now().Add(timeout)
	for isProcessRunning(pid) {
		if time.Now().After(deadline) {
			return fmt.Errorf("process %d did not exit within %s", pid, timeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
	return p.forceRemove()
}

func (p *PIDFile) forceRemove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	// Signal 0 only checks existence and permissions
	err := syscall.Kill(pid, syscall.Signal(0))
	return err == nil || err == syscall.EPERM
}
