// Package hotplug watches udev netlink events for block device add and
// remove, so `ejectd watch` can report drives being plugged and unplugged
// without polling lsblk.
package hotplug

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"ejectd/internal/logging"
)

// Event describes one block device appearing or disappearing.
type Event struct {
	// Action is "add" or "remove".
	Action string
	// DevicePath is the device node, e.g. /dev/sdb.
	DevicePath string
	// DevType distinguishes whole disks from partitions.
	DevType string
}

// Monitor listens for udev netlink events and forwards whole-disk add and
// remove events to a handler.
type Monitor struct {
	logger  *slog.Logger
	handler func(Event)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewMonitor creates a monitor delivering events to handler.
func NewMonitor(logger *slog.Logger, handler func(Event)) *Monitor {
	return &Monitor{
		logger:  logging.NewComponentLogger(logger, "hotplug"),
		handler: handler,
	}
}

// Start begins listening for udev netlink events. Connecting requires
// permission to open netlink sockets; failure is returned to the caller
// rather than degraded silently, since watch mode has no other event source.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		return err
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("hotplug monitor started")
	return nil
}

// Stop shuts down the monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("hotplug monitor stopped")
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error", logging.Error(err))
		}
	}
}

// buildMatcher matches SUBSYSTEM=block events for device add and remove.
func buildMatcher() netlink.Matcher {
	rules := &netlink.RuleDefinitions{}
	for _, action := range []string{"add", "remove"} {
		action := action
		rules.AddRule(netlink.RuleDefinition{
			Action: &action,
			Env: map[string]string{
				"SUBSYSTEM": "block",
			},
		})
	}
	return rules
}

func (m *Monitor) handleEvent(uevent netlink.UEvent) {
	// Partition events accompany every disk event; only whole disks matter
	// for catalog membership.
	if uevent.Env["DEVTYPE"] != "disk" {
		return
	}

	devname := extractDeviceName(uevent)
	if devname == "" {
		m.logger.Debug("ignoring event without device name",
			slog.String("action", string(uevent.Action)),
			slog.String("kobj", uevent.KObj),
		)
		return
	}

	event := Event{
		Action:     string(uevent.Action),
		DevicePath: devname,
		DevType:    uevent.Env["DEVTYPE"],
	}

	m.logger.Debug("block device event",
		slog.String("action", event.Action),
		slog.String("device", event.DevicePath),
	)

	if m.handler != nil {
		m.handler(event)
	}
}

// extractDeviceName gets the device path from a uevent.
func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if strings.HasPrefix(devname, "/") {
			return devname
		}
		return "/dev/" + devname
	}

	// Fall back to the last DEVPATH segment (e.g. /devices/.../block/sdb).
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return "/dev/" + parts[len(parts)-1]
}
