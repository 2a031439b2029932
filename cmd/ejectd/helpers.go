package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"ejectd/internal/applock"
	"ejectd/internal/drive"
	"ejectd/internal/history"
	"ejectd/internal/logging"
)

// performEject runs the unmount-then-power-off sequence for one drive,
// narrating progress to out and recording the attempt in the history store
// when one is available. The second return value is false when the eject
// never started (another instance holds the eject lock).
func performEject(ctx context.Context, cmdCtx *commandContext, store *history.Store, out io.Writer, record drive.Record, colorize bool) (drive.Result, bool) {
	cfg := cmdCtx.configValue()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s Selected: %s\n", paint(colorize, text.Colors{text.Bold, text.FgYellow}, iconWarning), record.DevicePath)
	fmt.Fprintln(out)

	if err := cfg.EnsureDirectories(); err == nil {
		lock := applock.New(cfg.LockFilePath())
		if err := lock.Acquire(); err != nil {
			fmt.Fprintln(out, paint(colorize, text.Colors{text.FgRed}, iconError+" "+err.Error()))
			return drive.Result{}, false
		}
		defer lock.Release() //nolint:errcheck
	}

	fmt.Fprintln(out, paint(colorize, text.Colors{text.FgCyan}, iconDrive+" Unmounting all partitions..."))
	fmt.Fprintln(out)

	ejector := cmdCtx.ejector()
	ejector.OnPartition = func(status drive.PartitionStatus) {
		if status.Unmounted {
			fmt.Fprintf(out, "  → Unmounting %s (%s)... %s\n", status.DevicePath, status.MountPoint,
				paint(colorize, text.Colors{text.FgGreen}, iconSuccess+" ok"))
		} else {
			fmt.Fprintf(out, "  → Unmounting %s (%s)... %s\n", status.DevicePath, status.MountPoint,
				paint(colorize, text.Colors{text.FgRed}, iconError+" failed"))
		}
	}

	result := ejector.Eject(ctx, record.DevicePath)
	reportOutcome(out, result, colorize)

	if store != nil {
		if err := store.Record(ctx, result, friendlyName(record)); err != nil {
			cmdCtx.logger().Warn("history record failed", logging.Error(err))
		}
	}
	return result, true
}

func reportOutcome(out io.Writer, result drive.Result, colorize bool) {
	fmt.Fprintln(out)
	switch result.Outcome {
	case drive.OutcomeEjected:
		fmt.Fprintf(out, "%s Drive %s has been safely ejected!\n",
			paint(colorize, text.Colors{text.FgGreen}, iconSuccess), result.DevicePath)
		fmt.Fprintln(out, paint(colorize, text.Colors{text.FgGreen}, iconSuccess+" You can now safely remove the drive."))
	case drive.OutcomeUnmountFailed:
		fmt.Fprintln(out, paint(colorize, text.Colors{text.FgRed}, iconError+" Some partitions failed to unmount."))
		fmt.Fprintln(out, paint(colorize, text.Colors{text.FgYellow}, iconWarning+" The drive may still be in use."))
	case drive.OutcomePoweroffFailed:
		fmt.Fprintln(out, paint(colorize, text.Colors{text.FgRed}, iconError+" Failed to power off the drive."))
		fmt.Fprintln(out, paint(colorize, text.Colors{text.FgYellow}, iconWarning+" All partitions were unmounted; removal is usually still safe."))
	}
	fmt.Fprintln(out)
}
