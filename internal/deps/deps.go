// Package deps reports the availability of the external utilities ejectd
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"ejectd/internal/config"
)

// Requirement defines an external dependency ejectd relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the utilities the configured commands resolve to.
func Requirements(cfg *config.Config) []Requirement {
	cmds := config.Default().Commands
	if cfg != nil {
		cmds = cfg.Commands
	}
	return []Requirement{
		{
			Name:        "lsblk",
			Command:     cmds.Lsblk,
			Description: "block device enumeration and attribute queries",
		},
		{
			Name:        "findmnt",
			Command:     cmds.Findmnt,
			Description: "root filesystem source lookup",
		},
		{
			Name:        "udisksctl",
			Command:     cmds.Udisksctl,
			Description: "partition unmount and device power-off",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
