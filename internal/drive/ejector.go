package drive

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ejectd/internal/cmdexec"
	"ejectd/internal/logging"
)

// Outcome is the terminal state of one eject attempt.
type Outcome int

const (
	// OutcomeEjected means every partition was unmounted and the device
	// powered off; it is safe to unplug.
	OutcomeEjected Outcome = iota
	// OutcomeUnmountFailed means at least one partition refused to unmount.
	// Power-off is never attempted in this state.
	OutcomeUnmountFailed
	// OutcomePoweroffFailed means all partitions are unmounted but the OS
	// declined to release the device. Physical removal is usually still
	// safe; remediation differs from an unmount failure.
	OutcomePoweroffFailed
)

// String returns a stable lowercase token for logs and history rows.
func (o Outcome) String() string {
	switch o {
	case OutcomeEjected:
		return "ejected"
	case OutcomeUnmountFailed:
		return "unmount_failed"
	case OutcomePoweroffFailed:
		return "poweroff_failed"
	default:
		return "unknown"
	}
}

// PartitionStatus records the unmount attempt for one mounted partition.
type PartitionStatus struct {
	DevicePath string
	MountPoint string
	Unmounted  bool
}

// Result describes a completed eject attempt.
type Result struct {
	// OperationID is a fresh UUID identifying this attempt in logs and the
	// history store.
	OperationID string
	DevicePath  string
	Outcome     Outcome
	// Partitions holds one entry per partition that was mounted when the
	// attempt started, in processing order.
	Partitions []PartitionStatus
}

// Ejector unmounts a device's partitions and powers the device off.
type Ejector struct {
	exec   cmdexec.Executor
	logger *slog.Logger
	cmds   Commands

	// OnPartition, when set, is called after each partition's unmount
	// attempt so interactive callers can show per-partition progress.
	OnPartition func(PartitionStatus)
}

// NewEjector constructs an Ejector. A nil logger is replaced with a no-op one.
func NewEjector(exec cmdexec.Executor, logger *slog.Logger, cmds Commands) *Ejector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Ejector{exec: exec, logger: logger, cmds: cmds}
}

// Eject unmounts every mounted partition of devicePath and, only when all of
// them unmounted cleanly, powers the whole device off. A single partition
// failure never short-circuits the remaining partitions: each one gets its
// attempt so as much of the device as possible is released, but any failure
// forbids the power-off.
func (e *Ejector) Eject(ctx context.Context, devicePath string) Result {
	result := Result{
		OperationID: uuid.NewString(),
		DevicePath:  devicePath,
	}
	logger := e.logger.With(
		slog.String("operation_id", result.OperationID),
		slog.String("device", devicePath),
	)

	unmountFailed := false
	for _, partition := range e.partitions(ctx, devicePath) {
		mountPoint := e.mountPoint(ctx, partition)
		if mountPoint == "" {
			continue
		}

		status := PartitionStatus{DevicePath: partition, MountPoint: mountPoint}
		err := e.exec.Run(ctx, e.cmds.udisksctl(), "unmount", "-b", partition)
		status.Unmounted = err == nil
		if err != nil {
			unmountFailed = true
			logger.Warn("partition unmount failed",
				logging.Error(err),
				slog.String("partition", partition),
				slog.String("mount_point", mountPoint),
				slog.Int("exit_status", cmdexec.ExitStatus(err)),
			)
		} else {
			logger.Info("partition unmounted",
				slog.String("partition", partition),
				slog.String("mount_point", mountPoint),
			)
		}

		result.Partitions = append(result.Partitions, status)
		if e.OnPartition != nil {
			e.OnPartition(status)
		}
	}

	if unmountFailed {
		result.Outcome = OutcomeUnmountFailed
		logger.Warn("eject aborted before power-off", slog.String("outcome", result.Outcome.String()))
		return result
	}

	if err := e.exec.Run(ctx, e.cmds.udisksctl(), "power-off", "-b", devicePath); err != nil {
		result.Outcome = OutcomePoweroffFailed
		logger.Warn("device power-off failed",
			logging.Error(err),
			slog.Int("exit_status", cmdexec.ExitStatus(err)),
		)
		return result
	}

	result.Outcome = OutcomeEjected
	logger.Info("device ejected", slog.Int("partitions", len(result.Partitions)))
	return result
}

// partitions lists the partition device paths of devicePath. The first
// listed row is the device itself and is skipped. A device with no partition
// table legally returns nothing; listing failures are treated the same way
// so the attempt proceeds straight to power-off.
func (e *Ejector) partitions(ctx context.Context, devicePath string) []string {
	output, err := e.exec.Output(ctx, e.cmds.lsblk(), "-lno", "NAME", devicePath)
	if err != nil {
		e.logger.Debug("partition listing failed", logging.Error(err), slog.String("device", devicePath))
		return nil
	}

	lines := nonEmptyLines(string(output))
	if len(lines) <= 1 {
		return nil
	}

	partitions := make([]string, 0, len(lines)-1)
	for _, name := range lines[1:] {
		partitions = append(partitions, "/dev/"+name)
	}
	return partitions
}

// mountPoint returns the partition's current mount point, or "" when it is
// not mounted or the query failed.
func (e *Ejector) mountPoint(ctx context.Context, partitionPath string) string {
	output, err := e.exec.Output(ctx, e.cmds.lsblk(), "-no", "MOUNTPOINT", partitionPath)
	if err != nil {
		return ""
	}
	lines := nonEmptyLines(string(output))
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "/") {
		return ""
	}
	return lines[0]
}
