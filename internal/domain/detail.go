package domain

import (
	"fmt"
	"time"
)

// NodeStatus is the operational status reported for a device.
type NodeStatus string

const (
	NodeStatusActive   NodeStatus = "active"
	NodeStatusInactive NodeStatus = "inactive"
	NodeStatusUnknown  NodeStatus = "unknown"
)

// Interface is a network interface nested in a NodeDetail. It has no
// identity beyond its position in the owning detail's list.
type Interface struct {
	Name          string   `json:"name"`
	Active        bool     `json:"active"`
	IPAddresses   []string `json:"ip_addresses"`
	Description   string   `json:"description,omitempty"`
	VLAN          *int     `json:"vlan,omitempty"`
	BandwidthMbps *int     `json:"bandwidth_mbps,omitempty"`
	MTU           *int     `json:"mtu,omitempty"`
}

// Validate checks interface field constraints.
func (i *Interface) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("interface name must not be empty")
	}
	if i.VLAN != nil && (*i.VLAN < 1 || *i.VLAN > 4094) {
		return fmt.Errorf("interface %s: vlan %d out of range 1-4094", i.Name, *i.VLAN)
	}
	if i.BandwidthMbps != nil && *i.BandwidthMbps <= 0 {
		return fmt.Errorf("interface %s: bandwidth must be positive", i.Name)
	}
	if i.MTU != nil && (*i.MTU < 68 || *i.MTU > 9216) {
		return fmt.Errorf("interface %s: mtu %d out of range 68-9216", i.Name, *i.MTU)
	}
	return nil
}

// DeviceMetadata describes the snapshot a detail was derived from.
type DeviceMetadata struct {
	SnapshotName   string    `json:"snapshot_name"`
	LastUpdated    time.Time `json:"last_updated"`
	ConfigFilePath string    `json:"config_file_path,omitempty"`
}

// NodeDetail is the aggregated device detail fetched on demand when the
// detail panel opens. It is discarded when the panel closes or switches to
// another node; details are always re-fetched, never cached.
type NodeDetail struct {
	Hostname       string         `json:"hostname"`
	DeviceType     string         `json:"device_type,omitempty"`
	Vendor         string         `json:"vendor,omitempty"`
	Model          string         `json:"model,omitempty"`
	OSVersion      string         `json:"os_version,omitempty"`
	ConfigFormat   string         `json:"config_format,omitempty"`
	Status         NodeStatus     `json:"status"`
	InterfaceCount int            `json:"interface_count"`
	Interfaces     []Interface    `json:"interfaces"`
	Metadata       DeviceMetadata `json:"metadata"`
}

// Validate checks the detail aggregate, including the invariant that
// interface_count matches the interface list length.
func (d *NodeDetail) Validate() error {
	if d.Hostname == "" {
		return fmt.Errorf("node detail hostname must not be empty")
	}
	if d.InterfaceCount != len(d.Interfaces) {
		return fmt.Errorf("node %s: interface_count %d does not match %d interfaces",
			d.Hostname, d.InterfaceCount, len(d.Interfaces))
	}
	for i := range d.Interfaces {
		if err := d.Interfaces[i].Validate(); err != nil {
			return err
		}
	}
	switch d.Status {
	case NodeStatusActive, NodeStatusInactive, NodeStatusUnknown:
	default:
		return fmt.Errorf("node %s: invalid status %q", d.Hostname, d.Status)
	}
	return nil
}
