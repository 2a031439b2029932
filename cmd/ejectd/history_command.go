package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent eject attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if !cfg.History.Enabled {
				return fmt.Errorf("history is disabled in the configuration")
			}

			store := ctx.openHistory()
			if store == nil {
				return fmt.Errorf("history store unavailable")
			}
			defer store.Close()

			if limit <= 0 {
				limit = cfg.History.DisplayLimit
			}
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No eject attempts recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				detail := ""
				if len(entry.FailedPartitions) > 0 {
					detail = "failed: " + strings.Join(entry.FailedPartitions, ", ")
				}
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					entry.DevicePath,
					entry.Label,
					entry.Outcome,
					detail,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Device", "Name", "Outcome", "Detail"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum rows to show (default from config)")
	return cmd
}
