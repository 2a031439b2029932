package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ejectd/internal/drive"
)

type sessionHarness struct {
	session    *session
	out        *bytes.Buffer
	builds     int
	ejected    []drive.Record
	pauses     int
	catalogFor func(build int) []drive.Record
}

func newSessionHarness(input string, catalog []drive.Record) *sessionHarness {
	h := &sessionHarness{out: &bytes.Buffer{}}
	h.catalogFor = func(int) []drive.Record { return catalog }
	h.session = &session{
		in:       bufio.NewScanner(strings.NewReader(input)),
		out:      h.out,
		colorize: false,
		buildCatalog: func(context.Context) []drive.Record {
			h.builds++
			return h.catalogFor(h.builds)
		},
		eject: func(_ context.Context, record drive.Record) {
			h.ejected = append(h.ejected, record)
		},
		pause: func(time.Duration) { h.pauses++ },
	}
	return h
}

func testCatalog(paths ...string) []drive.Record {
	records := make([]drive.Record, 0, len(paths))
	for _, path := range paths {
		records = append(records, drive.Record{DevicePath: path, Transport: "usb"})
	}
	return records
}

func TestSessionQuitIsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"q\n", "Q\n", "  Q  \n"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			h := newSessionHarness(input, testCatalog("/dev/sdb"))
			if err := h.session.run(context.Background()); err != nil {
				t.Fatalf("run: %v", err)
			}
			if len(h.ejected) != 0 {
				t.Fatalf("quit must not eject, got %v", h.ejected)
			}
		})
	}
}

func TestSessionEndOfInputTerminatesCleanly(t *testing.T) {
	h := newSessionHarness("", testCatalog("/dev/sdb"))
	if err := h.session.run(context.Background()); err != nil {
		t.Fatalf("run on EOF: %v", err)
	}
}

func TestSessionInvalidSelectionsKeepLoopAlive(t *testing.T) {
	invalid := []string{"0", "-1", "2", "", "abc"}
	input := strings.Join(invalid, "\n") + "\nq\n"
	h := newSessionHarness(input, testCatalog("/dev/sdb"))

	if err := h.session.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(h.ejected) != 0 {
		t.Fatalf("invalid selections must never eject, got %v", h.ejected)
	}
	if h.pauses != len(invalid) {
		t.Fatalf("expected %d pauses, got %d", len(invalid), h.pauses)
	}
	// One catalog rebuild per iteration: each invalid input plus the quit.
	if h.builds != len(invalid)+1 {
		t.Fatalf("expected %d catalog builds, got %d", len(invalid)+1, h.builds)
	}
	if !strings.Contains(h.out.String(), "Invalid selection") {
		t.Fatal("missing invalid-selection notice")
	}
}

func TestSessionEmptyCatalogExitsWithCodeOne(t *testing.T) {
	h := newSessionHarness("q\n", nil)
	err := h.session.run(context.Background())

	var code exitCodeError
	if !errors.As(err, &code) || int(code) != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !strings.Contains(h.out.String(), "No external drives found") {
		t.Fatalf("missing no-drives notice:\n%s", h.out.String())
	}
	if strings.Contains(h.out.String(), "Your choice") {
		t.Fatal("input loop must not start on an empty catalog")
	}
}

func TestSessionEjectsSelectedDriveAndRebuildsCatalog(t *testing.T) {
	// Input: select drive 2, press Enter at the continue prompt, then quit.
	h := newSessionHarness("2\n\nq\n", testCatalog("/dev/sdb", "/dev/sdc"))

	if err := h.session.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(h.ejected) != 1 || h.ejected[0].DevicePath != "/dev/sdc" {
		t.Fatalf("expected /dev/sdc ejected, got %v", h.ejected)
	}
	if h.builds != 2 {
		t.Fatalf("catalog must be rebuilt after an eject, builds = %d", h.builds)
	}
}

func TestSessionRefreshRebuildsWithoutEjecting(t *testing.T) {
	h := newSessionHarness("r\nq\n", testCatalog("/dev/sdb"))
	if err := h.session.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.builds != 2 {
		t.Fatalf("expected 2 catalog builds, got %d", h.builds)
	}
	if len(h.ejected) != 0 {
		t.Fatalf("refresh must not eject, got %v", h.ejected)
	}
}

func TestSessionEmptyCatalogAfterEject(t *testing.T) {
	// The drive disappears after ejection; the rebuilt catalog is empty and
	// the program exits with code 1 instead of showing a stale entry.
	h := newSessionHarness("1\n\n", testCatalog("/dev/sdb"))
	h.catalogFor = func(build int) []drive.Record {
		if build == 1 {
			return testCatalog("/dev/sdb")
		}
		return nil
	}

	err := h.session.run(context.Background())
	var code exitCodeError
	if !errors.As(err, &code) || int(code) != 1 {
		t.Fatalf("expected exit code 1 after drive vanished, got %v", err)
	}
	if len(h.ejected) != 1 {
		t.Fatalf("expected one eject, got %v", h.ejected)
	}
}
