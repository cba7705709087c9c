// Package pid guards against running two daemons at once via a PID
// file in the system temp directory.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/mutker/disktempd/internal/errors"
)

const pidFile = "disktempd.pid"

// Write writes the current process ID to the PID file. It fails with
// ErrAlreadyRunning if the file names a process that is still alive;
// a stale file left by a crashed daemon is overwritten.
func Write() error {
	errFactory := errors.New()
	path := filepath.Join(os.TempDir(), pidFile)

	if bytes, err := os.ReadFile(path); err == nil {
		oldPID, err := strconv.Atoi(string(bytes))
		if err == nil {
			if process, err := os.FindProcess(oldPID); err == nil {
				if process.Signal(syscall.Signal(0)) == nil {
					return errFactory.WithData(errors.ErrAlreadyRunning, oldPID)
				}
			}
		}
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	errFactory := errors.New()
	path := filepath.Join(os.TempDir(), pidFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}
