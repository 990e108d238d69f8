package domain

// DeviceType classifies a network device by its role.
type DeviceType string

const (
	DeviceTypeRouter   DeviceType = "router"
	DeviceTypeSwitch   DeviceType = "switch"
	DeviceTypeFirewall DeviceType = "firewall"
	DeviceTypeUnknown  DeviceType = "unknown"
)

// ParseDeviceType maps an engine-reported device type string to a DeviceType,
// falling back to unknown for anything unrecognized.
func ParseDeviceType(s string) DeviceType {
	switch DeviceType(s) {
	case DeviceTypeRouter, DeviceTypeSwitch, DeviceTypeFirewall:
		return DeviceType(s)
	default:
		return DeviceTypeUnknown
	}
}

// GraphNode represents a network device in the rendered topology graph.
// Identity is the hostname, unique within a snapshot. Position fields are
// mutated continuously by the force simulation while it is active, or pinned
// through FX/FY during a drag gesture.
type GraphNode struct {
	Hostname       string     `json:"hostname"`
	DeviceType     DeviceType `json:"device_type"`
	Vendor         string     `json:"vendor,omitempty"`
	Model          string     `json:"model,omitempty"`
	ConfigFormat   string     `json:"config_format,omitempty"`
	InterfaceCount int        `json:"interfaces_count"`

	// Simulation state
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`

	// Fixed position while dragging; nil when unpinned
	FX *float64 `json:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty"`
}

// NewGraphNode creates a graph node for the given hostname.
func NewGraphNode(hostname string, deviceType DeviceType) *GraphNode {
	return &GraphNode{
		Hostname:   hostname,
		DeviceType: deviceType,
	}
}

// Pin fixes the node at the given coordinates for the duration of a drag.
func (n *GraphNode) Pin(x, y float64) {
	n.FX = &x
	n.FY = &y
}

// Unpin releases a pinned node back to the simulation.
func (n *GraphNode) Unpin() {
	n.FX = nil
	n.FY = nil
}

// Pinned reports whether the node is currently held at a fixed position.
func (n *GraphNode) Pinned() bool {
	return n.FX != nil && n.FY != nil
}
