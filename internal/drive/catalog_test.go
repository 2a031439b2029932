package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeExecutor resolves commands against canned outputs keyed by the full
// command line.
type fakeExecutor struct {
	outputs map[string]string
	errs    map[string]error
	runErrs map[string]error
	runs    []string
}

func commandKey(binary string, args ...string) string {
	return strings.Join(append([]string{binary}, args...), " ")
}

func (f *fakeExecutor) Output(_ context.Context, binary string, args ...string) ([]byte, error) {
	key := commandKey(binary, args...)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, fmt.Errorf("unexpected command: %s", key)
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args ...string) error {
	key := commandKey(binary, args...)
	f.runs = append(f.runs, key)
	return f.runErrs[key]
}

func (f *fakeExecutor) ranCommand(key string) bool {
	for _, run := range f.runs {
		if run == key {
			return true
		}
	}
	return false
}

func newCatalogFake() *fakeExecutor {
	return &fakeExecutor{
		outputs: map[string]string{
			"findmnt -n -o SOURCE /":          "/dev/nvme0n1p2\n",
			"lsblk -no PKNAME /dev/nvme0n1p2": "nvme0n1\n",
			"lsblk -dno NAME,TYPE":            "nvme0n1 disk\nsda     disk\nsr0     rom\n",
			"lsblk -no SIZE,MODEL,VENDOR,TRAN /dev/sda": "57.3G Ultra SanDisk usb\n",
			"lsblk -no MOUNTPOINT /dev/sda":             "\n/run/media/usb\n",
		},
		errs:    map[string]error{},
		runErrs: map[string]error{},
	}
}

func TestCatalogExcludesRootDevice(t *testing.T) {
	exec := newCatalogFake()
	lister := NewLister(exec, nil, DefaultCommands())

	records := lister.Catalog(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d: %v", len(records), records)
	}
	for _, record := range records {
		if record.DevicePath == "/dev/nvme0n1" {
			t.Fatal("root device leaked into catalog")
		}
	}

	record := records[0]
	if record.DevicePath != "/dev/sda" {
		t.Fatalf("DevicePath = %q, want /dev/sda", record.DevicePath)
	}
	if record.SizeLabel != "57.3G" || record.Model != "Ultra" || record.Vendor != "SanDisk" || record.Transport != "usb" {
		t.Fatalf("unexpected attributes: %+v", record)
	}
	if len(record.MountPoints) != 1 || record.MountPoints[0] != "/run/media/usb" {
		t.Fatalf("MountPoints = %v", record.MountPoints)
	}
	if !record.Mounted() {
		t.Fatal("expected record to report mounted")
	}
}

func TestCatalogNoRootResolutionMeansNoExclusion(t *testing.T) {
	exec := newCatalogFake()
	exec.errs["findmnt -n -o SOURCE /"] = errors.New("findmnt missing")
	exec.outputs["lsblk -no SIZE,MODEL,VENDOR,TRAN /dev/nvme0n1"] = "931.5G SN770 WDC nvme\n"
	exec.outputs["lsblk -no MOUNTPOINT /dev/nvme0n1"] = "/\n/boot\n"

	lister := NewLister(exec, nil, DefaultCommands())
	records := lister.Catalog(context.Background())
	if len(records) != 2 {
		t.Fatalf("expected both disks without root resolution, got %d", len(records))
	}
}

func TestCatalogKeepsDeviceWhenQueriesFail(t *testing.T) {
	exec := newCatalogFake()
	exec.errs["lsblk -no SIZE,MODEL,VENDOR,TRAN /dev/sda"] = errors.New("device vanished")
	exec.errs["lsblk -no MOUNTPOINT /dev/sda"] = errors.New("device vanished")

	lister := NewLister(exec, nil, DefaultCommands())
	records := lister.Catalog(context.Background())
	if len(records) != 1 {
		t.Fatalf("device with failed queries must still be listed, got %d records", len(records))
	}

	record := records[0]
	if record.SizeLabel != "" || record.Model != "" || record.Vendor != "" || record.Transport != "" {
		t.Fatalf("failed queries should yield empty fields: %+v", record)
	}
	if record.Mounted() {
		t.Fatal("record without mount data should report not mounted")
	}
}

func TestCatalogEnumerationFailureYieldsEmpty(t *testing.T) {
	exec := newCatalogFake()
	exec.errs["lsblk -dno NAME,TYPE"] = errors.New("lsblk missing")

	lister := NewLister(exec, nil, DefaultCommands())
	if records := lister.Catalog(context.Background()); len(records) != 0 {
		t.Fatalf("expected empty catalog on enumeration failure, got %v", records)
	}
}

func TestCatalogNoExternalDisks(t *testing.T) {
	exec := newCatalogFake()
	exec.outputs["lsblk -dno NAME,TYPE"] = "nvme0n1 disk\n"

	lister := NewLister(exec, nil, DefaultCommands())
	if records := lister.Catalog(context.Background()); len(records) != 0 {
		t.Fatalf("expected empty catalog, got %v", records)
	}
}

func TestMountPointCollectionCapsAtLimit(t *testing.T) {
	exec := newCatalogFake()
	var lines []string
	for i := 1; i <= MountPointCap+4; i++ {
		lines = append(lines, fmt.Sprintf("/mnt/part%d", i))
	}
	lines = append(lines, "[SWAP]") // non-path line, always skipped
	exec.outputs["lsblk -no MOUNTPOINT /dev/sda"] = strings.Join(lines, "\n") + "\n"

	lister := NewLister(exec, nil, DefaultCommands())
	records := lister.Catalog(context.Background())
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	mounts := records[0].MountPoints
	if len(mounts) != MountPointCap {
		t.Fatalf("mount points = %d, want cap %d", len(mounts), MountPointCap)
	}
	if mounts[0] != "/mnt/part1" || mounts[MountPointCap-1] != fmt.Sprintf("/mnt/part%d", MountPointCap) {
		t.Fatalf("mount point order not preserved: %v", mounts)
	}
}

func TestRootDeviceTrimsOutput(t *testing.T) {
	exec := newCatalogFake()
	lister := NewLister(exec, nil, DefaultCommands())
	if got := lister.RootDevice(context.Background()); got != "nvme0n1" {
		t.Fatalf("RootDevice = %q, want nvme0n1", got)
	}
}
