// Package instance implements the PID-file guard that keeps at most one
// spotbeam instance running per user.
package instance

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

type Guard struct {
	pidFile string
}

func New(pidFile string) *Guard {
	return &Guard{pidFile: pidFile}
}

// TryToRun attempts to acquire the guard. On success acquired is true and
// the PID file holds our PID. Otherwise pid identifies the instance that
// already owns the guard.
func (g *Guard) TryToRun() (acquired bool, pid int, err error) {
	running, pid, err := g.IsRunning()
	if err != nil {
		return false, 0, err
	}
	if running {
		return false, pid, nil
	}

	if err := g.writePID(); err != nil {
		return false, 0, err
	}
	return true, os.Getpid(), nil
}

func (g *Guard) writePID() error {
	pid := os.Getpid()
	return os.WriteFile(g.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644)
}

func (g *Guard) readPID() (int, error) {
	data, err := os.ReadFile(g.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}

	return pid, nil
}

// Release removes the PID file. Safe to call when the guard was never
// acquired.
func (g *Guard) Release() error {
	if err := os.Remove(g.pidFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// IsRunning reports whether a live process owns the guard. A PID file
// pointing at a dead process is treated as stale and removed.
func (g *Guard) IsRunning() (bool, int, error) {
	pid, err := g.readPID()
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	if pid == os.Getpid() {
		return true, pid, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	err = process.Signal(syscall.Signal(0))
	if err != nil {
		g.Release()
		return false, 0, nil
	}

	return true, pid, nil
}

// Stop sends SIGTERM to the running instance, if any.
func (g *Guard) Stop() error {
	running, pid, err := g.IsRunning()
	if err != nil {
		return fmt.Errorf("error checking instance status: %w", err)
	}

	if !running {
		return fmt.Errorf("no running instance or PID file is stale")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err.Error() == "os: process already finished" {
			_ = g.Release()
			return fmt.Errorf("instance already terminated")
		}
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	return nil
}
