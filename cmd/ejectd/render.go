package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ejectd/internal/config"
	"ejectd/internal/drive"
)

const (
	iconEject     = "⏏️"
	iconDrive     = "💾"
	iconMounted   = "📌"
	iconUnmounted = "⭕"
	iconSuccess   = "✅"
	iconError     = "❌"
	iconWarning   = "⚠️"
)

const separatorLine = "────────────────────────────────────────────────────────────"

// inlineMountLimit is the most mount points shown as individual lines; above
// it the listing collapses to a location count.
const inlineMountLimit = 3

var titleCaser = cases.Title(language.English)

// statfs is swapped out in tests.
var statfs = unix.Statfs

func shouldColorize(cfg *config.Config, writer io.Writer) bool {
	if cfg != nil {
		switch cfg.Display.Color {
		case "always":
			return true
		case "never":
			return false
		}
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(colorize bool, colors text.Colors, value string) string {
	if !colorize {
		return value
	}
	return colors.Sprint(value)
}

// friendlyName composes a display name from vendor and model, title-casing
// all-caps tokens the way vendors tend to report them.
func friendlyName(record drive.Record) string {
	vendor := tidyToken(record.Vendor)
	model := tidyToken(record.Model)
	switch {
	case vendor != "" && model != "":
		return vendor + " " + model
	case vendor != "":
		return vendor
	case model != "":
		return model
	default:
		return "Unknown Drive"
	}
}

func tidyToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if token == strings.ToUpper(token) && token != strings.ToLower(token) {
		return titleCaser.String(strings.ToLower(token))
	}
	return token
}

func transportGlyph(class drive.TransportClass) string {
	switch class {
	case drive.TransportSATA:
		return "💿"
	case drive.TransportNVMe:
		return "⚡"
	default:
		return "🔌"
	}
}

// renderDrives writes the numbered drive listing.
func renderDrives(out io.Writer, records []drive.Record, colorize bool) {
	fmt.Fprintln(out, paint(colorize, text.Colors{text.Bold, text.FgGreen}, "Available Drives:"))
	fmt.Fprintln(out, paint(colorize, text.Colors{text.Faint}, separatorLine))
	fmt.Fprintln(out)

	for i, record := range records {
		class := drive.ClassifyTransport(record.Transport)

		index := paint(colorize, text.Colors{text.Bold, text.FgYellow}, fmt.Sprintf("[%d]", i+1))
		name := paint(colorize, text.Colors{text.Bold}, friendlyName(record))
		fmt.Fprintf(out, "%s %s %s\n", index, transportGlyph(class), name)
		fmt.Fprintf(out, "    ├─ %s %s\n", paint(colorize, text.Colors{text.FgCyan}, "Device:"), record.DevicePath)
		fmt.Fprintf(out, "    ├─ %s %s\n", paint(colorize, text.Colors{text.FgCyan}, "Size:"), record.SizeLabel)
		fmt.Fprintf(out, "    ├─ %s %s\n", paint(colorize, text.Colors{text.FgCyan}, "Type:"), class.Label())
		fmt.Fprintf(out, "    └─ %s %s\n", paint(colorize, text.Colors{text.FgCyan}, "Status:"), mountStatus(record, colorize))

		if n := len(record.MountPoints); n > 0 && n <= inlineMountLimit {
			for _, mountPoint := range record.MountPoints {
				fmt.Fprintf(out, "       → %s%s\n", mountPoint, mountDetail(mountPoint))
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, paint(colorize, text.Colors{text.Faint}, separatorLine))
}

func mountStatus(record drive.Record, colorize bool) string {
	if !record.Mounted() {
		return paint(colorize, text.Colors{text.Faint}, iconUnmounted+" Not mounted")
	}
	status := paint(colorize, text.Colors{text.FgGreen}, iconMounted+" Mounted")
	if n := len(record.MountPoints); n > inlineMountLimit {
		status += fmt.Sprintf(" (%d locations)", n)
	}
	return status
}

// mountDetail annotates a mount point with its remaining capacity when the
// filesystem can be queried.
func mountDetail(mountPoint string) string {
	var st unix.Statfs_t
	if err := statfs(mountPoint, &st); err != nil {
		return ""
	}
	free := st.Bavail * uint64(st.Bsize)
	return fmt.Sprintf(" (%s free)", humanize.IBytes(free))
}

func renderNoDrives(out io.Writer, colorize bool) {
	fmt.Fprintln(out, paint(colorize, text.Colors{text.FgRed}, iconError+" No external drives found."))
}
