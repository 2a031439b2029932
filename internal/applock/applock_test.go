package applock

import (
	"path/filepath"
	"testing"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ejectd.lock")
	lock := New(path)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestSecondAcquireFromSameProcessSucceeds(t *testing.T) {
	// flock locks are per-process; a second handle in the same process does
	// not contend. This just ensures Acquire/Release pairs are reentrant
	// across handles within one process lifetime.
	path := filepath.Join(t.TempDir(), "ejectd.lock")
	first := New(path)
	if err := first.Acquire(); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer first.Release() //nolint:errcheck

	second := New(path)
	if err := second.Acquire(); err != nil {
		t.Fatalf("second Acquire in same process: %v", err)
	}
	if err := second.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestReleaseWithoutAcquire(t *testing.T) {
	lock := New(filepath.Join(t.TempDir(), "ejectd.lock"))
	if err := lock.Release(); err != nil {
		t.Fatalf("Release without Acquire should be a no-op, got %v", err)
	}
}
