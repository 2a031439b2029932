package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ejectd/internal/drive"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var tree bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List external drives and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			records := ctx.lister().Catalog(cmd.Context())
			if len(records) == 0 {
				renderNoDrives(out, shouldColorize(ctx.configValue(), out))
				return exitCodeError(1)
			}

			if tree {
				renderDrives(out, records, shouldColorize(ctx.configValue(), out))
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.DevicePath,
					friendlyName(record),
					record.SizeLabel,
					drive.ClassifyTransport(record.Transport).Label(),
					mountSummary(record.MountPoints),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Device", "Name", "Size", "Type", "Mounted At"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tree, "tree", false, "Use the interactive tree layout instead of a table")
	return cmd
}

func mountSummary(mountPoints []string) string {
	if len(mountPoints) == 0 {
		return "-"
	}
	if len(mountPoints) > inlineMountLimit {
		return fmt.Sprintf("%d locations", len(mountPoints))
	}
	return strings.Join(mountPoints, ", ")
}
