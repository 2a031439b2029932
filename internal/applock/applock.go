// Package applock serializes eject operations across ejectd processes.
//
// udisksctl tolerates concurrent callers poorly; holding a file lock for the
// duration of an eject keeps two ejectd invocations from racing on the same
// device.
package applock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock guards eject operations with a file lock.
type Lock struct {
	fl *flock.Flock
}

// New creates a lock backed by the given file path. The file is created on
// first acquisition.
func New(path string) *Lock {
	return &Lock{fl: flock.New(path)}
}

// Acquire takes the lock, failing immediately when another process holds it.
func (l *Lock) Acquire() error {
	ok, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("acquire eject lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another ejectd instance is ejecting (lock held at %s)", l.fl.Path())
	}
	return nil
}

// Release drops the lock. Safe to call when the lock was never acquired.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release eject lock: %w", err)
	}
	return nil
}
