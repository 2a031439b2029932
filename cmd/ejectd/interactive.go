package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"ejectd/internal/drive"
)

// invalidSelectionPause gives the operator time to read the notice before
// the screen is redrawn.
const invalidSelectionPause = 2 * time.Second

// session drives the interactive menu loop. Catalog building and ejection
// are injected so the loop's selection logic can be tested without devices.
type session struct {
	in       *bufio.Scanner
	out      io.Writer
	colorize bool
	clear    bool

	buildCatalog func(context.Context) []drive.Record
	eject        func(context.Context, drive.Record)
	pause        func(time.Duration)
}

func runInteractive(ctx context.Context, cmdCtx *commandContext, in io.Reader, out io.Writer) error {
	cfg := cmdCtx.configValue()
	colorize := shouldColorize(cfg, out)

	store := cmdCtx.openHistory()
	if store != nil {
		defer store.Close()
	}

	lister := cmdCtx.lister()
	s := &session{
		in:           bufio.NewScanner(in),
		out:          out,
		colorize:     colorize,
		clear:        isTerminalWriter(out),
		buildCatalog: lister.Catalog,
		eject: func(ctx context.Context, record drive.Record) {
			performEject(ctx, cmdCtx, store, out, record, colorize)
		},
		pause: time.Sleep,
	}
	return s.run(ctx)
}

// run loops until the operator quits or input ends. The catalog is rebuilt
// on every iteration, including immediately after an eject or an invalid
// selection, so an unplugged drive never lingers on screen.
func (s *session) run(ctx context.Context) error {
	for {
		records := s.buildCatalog(ctx)

		s.clearScreen()
		s.header()

		if len(records) == 0 {
			renderNoDrives(s.out, s.colorize)
			return exitCodeError(1)
		}

		renderDrives(s.out, records, s.colorize)
		s.options(len(records))

		line, ok := s.readLine()
		if !ok {
			s.goodbye()
			return nil
		}

		input := strings.ToLower(strings.TrimSpace(line))
		switch input {
		case "q":
			s.goodbye()
			return nil
		case "r":
			continue
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(records) {
				fmt.Fprintln(s.out)
				fmt.Fprintln(s.out, paint(s.colorize, text.Colors{text.FgRed}, iconError+" Invalid selection."))
				s.pause(invalidSelectionPause)
				continue
			}
			s.eject(ctx, records[n-1])
			s.waitForEnter()
		}
	}
}

func (s *session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *session) clearScreen() {
	if s.clear {
		fmt.Fprint(s.out, "\x1b[2J\x1b[H")
	}
}

func (s *session) header() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, paint(s.colorize, text.Colors{text.Bold, text.FgMagenta}, "Ejectd "+iconEject+" External Drive Ejector"))
	fmt.Fprintln(s.out, paint(s.colorize, text.Colors{text.Faint}, "Safe removal tool for external drives"))
	fmt.Fprintln(s.out)
}

func (s *session) options(count int) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, paint(s.colorize, text.Colors{text.Bold, text.FgCyan}, "Options:"))
	fmt.Fprintf(s.out, "  %s Select a drive to eject\n", paint(s.colorize, text.Colors{text.FgYellow}, fmt.Sprintf("[1-%d]", count)))
	fmt.Fprintf(s.out, "  %s Refresh drive list\n", paint(s.colorize, text.Colors{text.FgYellow}, "[r]"))
	fmt.Fprintf(s.out, "  %s Quit\n\n", paint(s.colorize, text.Colors{text.FgYellow}, "[q]"))
	fmt.Fprint(s.out, paint(s.colorize, text.Colors{text.Bold, text.FgGreen}, "Your choice: "))
}

func (s *session) waitForEnter() {
	fmt.Fprint(s.out, "Press Enter to continue...")
	s.in.Scan()
}

func (s *session) goodbye() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, paint(s.colorize, text.Colors{text.FgCyan}, "Goodbye!"))
}

func isTerminalWriter(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
