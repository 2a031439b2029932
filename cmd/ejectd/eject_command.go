package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ejectd/internal/drive"
)

func newEjectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "eject <device>",
		Short: "Unmount and power off a drive without the menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			devicePath := strings.TrimSpace(args[0])
			if !strings.HasPrefix(devicePath, "/dev/") {
				return fmt.Errorf("device path must start with /dev/, got %q", devicePath)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(ctx.configValue(), out)

			record, found := findDrive(ctx, cmd, devicePath)
			if !found {
				return fmt.Errorf("%s is not an external drive (check `ejectd list`)", devicePath)
			}

			store := ctx.openHistory()
			if store != nil {
				defer store.Close()
			}

			result, ok := performEject(cmd.Context(), ctx, store, out, record, colorize)
			if !ok || result.Outcome != drive.OutcomeEjected {
				return exitCodeError(1)
			}
			return nil
		},
	}
}

// findDrive resolves the requested device against a fresh catalog so the
// root disk can never be ejected by path.
func findDrive(ctx *commandContext, cmd *cobra.Command, devicePath string) (drive.Record, bool) {
	for _, record := range ctx.lister().Catalog(cmd.Context()) {
		if record.DevicePath == devicePath {
			return record, true
		}
	}
	return drive.Record{}, false
}
