package hotplug

import (
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestExtractDeviceName(t *testing.T) {
	tests := []struct {
		name   string
		uevent netlink.UEvent
		want   string
	}{
		{
			name:   "devname bare",
			uevent: netlink.UEvent{Env: map[string]string{"DEVNAME": "sdb"}},
			want:   "/dev/sdb",
		},
		{
			name:   "devname absolute",
			uevent: netlink.UEvent{Env: map[string]string{"DEVNAME": "/dev/sdb"}},
			want:   "/dev/sdb",
		},
		{
			name:   "devpath fallback",
			uevent: netlink.UEvent{Env: map[string]string{"DEVPATH": "/devices/pci0000:00/usb1/block/sdc"}},
			want:   "/dev/sdc",
		},
		{
			name:   "no identifiers",
			uevent: netlink.UEvent{Env: map[string]string{}},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDeviceName(tt.uevent); got != tt.want {
				t.Fatalf("extractDeviceName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleEventFiltersPartitions(t *testing.T) {
	var events []Event
	monitor := NewMonitor(nil, func(event Event) { events = append(events, event) })

	monitor.handleEvent(netlink.UEvent{
		Action: netlink.ADD,
		Env:    map[string]string{"DEVTYPE": "partition", "DEVNAME": "sdb1"},
	})
	monitor.handleEvent(netlink.UEvent{
		Action: netlink.ADD,
		Env:    map[string]string{"DEVTYPE": "disk", "DEVNAME": "sdb"},
	})
	monitor.handleEvent(netlink.UEvent{
		Action: netlink.REMOVE,
		Env:    map[string]string{"DEVTYPE": "disk", "DEVNAME": "sdb"},
	})

	if len(events) != 2 {
		t.Fatalf("expected 2 disk events, got %d: %v", len(events), events)
	}
	if events[0].Action != "add" || events[0].DevicePath != "/dev/sdb" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Action != "remove" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestRunningBeforeStart(t *testing.T) {
	monitor := NewMonitor(nil, nil)
	if monitor.Running() {
		t.Fatal("monitor should not report running before Start")
	}
	monitor.Stop() // no-op when never started
}
