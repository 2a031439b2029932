package drive

// MountPointCap bounds how many mount points a single catalog record keeps.
// Additional mount points reported by the OS are silently dropped; this is a
// documented display limit, not an error.
const MountPointCap = 8

// Record describes one external block device at catalog-build time. Records
// are immutable snapshots: every refresh produces a fresh list and the
// previous one is discarded.
type Record struct {
	// DevicePath is the device node, e.g. /dev/sdb. Unique within a snapshot.
	DevicePath string
	// SizeLabel is the human-readable capacity exactly as the OS reports it,
	// unit suffix included. Empty when the query yielded nothing.
	SizeLabel string
	Model     string
	Vendor    string
	// Transport is the connection token reported by the OS (usb, sata,
	// nvme, ...), passed through verbatim.
	Transport string
	// MountPoints lists absolute paths mounted from the device or its
	// partitions, in discovery order, capped at MountPointCap.
	MountPoints []string
}

// Mounted reports whether any partition of the device is currently mounted.
func (r Record) Mounted() bool {
	return len(r.MountPoints) > 0
}

// TransportClass is the display category derived from a transport token.
type TransportClass int

const (
	// TransportUSB is the default class: any token that is not an exact
	// lowercase "sata" or "nvme" lands here, including unknown transports.
	TransportUSB TransportClass = iota
	TransportSATA
	TransportNVMe
)

// Label returns the display label for the class.
func (c TransportClass) Label() string {
	switch c {
	case TransportSATA:
		return "SATA"
	case TransportNVMe:
		return "NVMe"
	default:
		return "USB"
	}
}

// ClassifyTransport maps a transport token to its display class. Matching is
// case-sensitive against the lowercase tokens the OS emits.
func ClassifyTransport(token string) TransportClass {
	switch token {
	case "sata":
		return TransportSATA
	case "nvme":
		return TransportNVMe
	default:
		return TransportUSB
	}
}
