package drive

import (
	"context"
	"log/slog"
	"strings"

	"ejectd/internal/cmdexec"
	"ejectd/internal/logging"
)

// Lister builds catalog snapshots of external drives.
type Lister struct {
	exec   cmdexec.Executor
	logger *slog.Logger
	cmds   Commands
}

// NewLister constructs a Lister. A nil logger is replaced with a no-op one.
func NewLister(exec cmdexec.Executor, logger *slog.Logger, cmds Commands) *Lister {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Lister{exec: exec, logger: logger, cmds: cmds}
}

// RootDevice resolves the name of the disk backing the root filesystem, e.g.
// "nvme0n1". An empty string means resolution failed and no device should be
// excluded from the catalog.
func (l *Lister) RootDevice(ctx context.Context) string {
	source, err := l.exec.Output(ctx, l.cmds.findmnt(), "-n", "-o", "SOURCE", "/")
	if err != nil {
		l.logger.Debug("root source lookup failed", logging.Error(err))
		return ""
	}
	src := strings.TrimSpace(string(source))
	if src == "" {
		return ""
	}

	parent, err := l.exec.Output(ctx, l.cmds.lsblk(), "-no", "PKNAME", src)
	if err != nil {
		l.logger.Debug("root parent lookup failed", logging.Error(err), slog.String("source", src))
		return ""
	}
	lines := nonEmptyLines(string(parent))
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// Catalog enumerates every disk-type block device except the one backing the
// root filesystem and returns a fresh snapshot. It never fails the caller:
// total discovery failure yields an empty catalog, and a device whose
// attribute or mount queries fail is still listed with empty fields.
func (l *Lister) Catalog(ctx context.Context) []Record {
	root := l.RootDevice(ctx)

	listing, err := l.exec.Output(ctx, l.cmds.lsblk(), "-dno", "NAME,TYPE")
	if err != nil {
		l.logger.Warn("block device enumeration failed", logging.Error(err))
		return nil
	}

	var records []Record
	for _, row := range parseRows(string(listing)) {
		if len(row) < 2 || row[1] != "disk" {
			continue
		}
		name := row[0]
		if root != "" && name == root {
			continue
		}
		records = append(records, l.describe(ctx, "/dev/"+name))
	}

	l.logger.Debug("catalog built", slog.Int("drives", len(records)), slog.String("root_device", root))
	return records
}

func (l *Lister) describe(ctx context.Context, devicePath string) Record {
	record := Record{DevicePath: devicePath}

	attrs, err := l.exec.Output(ctx, l.cmds.lsblk(), "-no", "SIZE,MODEL,VENDOR,TRAN", devicePath)
	if err != nil {
		l.logger.Debug("attribute query failed", logging.Error(err), slog.String("device", devicePath))
	} else {
		fields := firstRecord(string(attrs), 4)
		record.SizeLabel = fields[0]
		record.Model = fields[1]
		record.Vendor = fields[2]
		record.Transport = fields[3]
	}

	record.MountPoints = l.mountPoints(ctx, devicePath)
	return record
}

// mountPoints collects the mounted paths for a device and all of its
// partitions, preserving discovery order and capping at MountPointCap.
func (l *Lister) mountPoints(ctx context.Context, devicePath string) []string {
	output, err := l.exec.Output(ctx, l.cmds.lsblk(), "-no", "MOUNTPOINT", devicePath)
	if err != nil {
		l.logger.Debug("mount point query failed", logging.Error(err), slog.String("device", devicePath))
		return nil
	}

	var mounts []string
	for _, line := range nonEmptyLines(string(output)) {
		if !strings.HasPrefix(line, "/") {
			continue
		}
		mounts = append(mounts, line)
		if len(mounts) == MountPointCap {
			break
		}
	}
	return mounts
}
