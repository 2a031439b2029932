package drive

import (
	"bufio"
	"strings"
)

// Commands names the external utilities the package invokes. Zero values
// fall back to the bare binary names resolved through PATH.
type Commands struct {
	Lsblk     string
	Findmnt   string
	Udisksctl string
}

// DefaultCommands returns the standard utility names.
func DefaultCommands() Commands {
	return Commands{Lsblk: "lsblk", Findmnt: "findmnt", Udisksctl: "udisksctl"}
}

func (c Commands) lsblk() string {
	if c.Lsblk != "" {
		return c.Lsblk
	}
	return "lsblk"
}

func (c Commands) findmnt() string {
	if c.Findmnt != "" {
		return c.Findmnt
	}
	return "findmnt"
}

func (c Commands) udisksctl() string {
	if c.Udisksctl != "" {
		return c.Udisksctl
	}
	return "udisksctl"
}

// parseRows splits captured utility output into whitespace-delimited rows,
// one per non-empty line. This is the single parsing helper every lsblk call
// site shares; lsblk's column mode emits exactly this shape.
func parseRows(output string) [][]string {
	var rows [][]string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

// firstRecord returns the fields of the first non-empty output line, padded
// with empty strings to the requested arity. Absent trailing columns (lsblk
// omits them rather than printing placeholders) become empty fields.
func firstRecord(output string, arity int) []string {
	record := make([]string, arity)
	rows := parseRows(output)
	if len(rows) == 0 {
		return record
	}
	for i := 0; i < arity && i < len(rows[0]); i++ {
		record[i] = rows[0][i]
	}
	return record
}

// nonEmptyLines returns trimmed non-empty output lines in order.
func nonEmptyLines(output string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
