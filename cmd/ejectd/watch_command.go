package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"ejectd/internal/hotplug"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream drive attach and detach events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(ctx.configValue(), out)

			watchCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			monitor := hotplug.NewMonitor(ctx.logger(), func(event hotplug.Event) {
				switch event.Action {
				case "add":
					fmt.Fprintf(out, "%s attached %s\n",
						paint(colorize, text.Colors{text.FgGreen}, "+"), event.DevicePath)
				case "remove":
					fmt.Fprintf(out, "%s detached %s\n",
						paint(colorize, text.Colors{text.FgRed}, "-"), event.DevicePath)
				}
			})

			if err := monitor.Start(watchCtx); err != nil {
				return fmt.Errorf("start hotplug monitor (needs netlink access): %w", err)
			}
			defer monitor.Stop()

			fmt.Fprintln(out, "Watching for drive events. Press Ctrl-C to stop.")
			<-watchCtx.Done()
			fmt.Fprintln(out)
			return nil
		},
	}
}
