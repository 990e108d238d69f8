package panel

import (
	"fmt"
	"strings"
	"time"

	"topoview/internal/domain"
)

// Literal texts the panel shows for absent data.
const (
	TextNotAvailable  = "N/A"
	TextNoIPAssigned  = "No IP assigned"
	TextNoInterfaces  = "No interfaces configured"
	textActiveState   = "active"
	textInactiveState = "inactive"
)

// RenderedInterface is one interface row in the open panel.
type RenderedInterface struct {
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	StateLabel string `json:"state_label"`
	IPSummary  string `json:"ip_summary"`

	// Optional fields, empty when absent
	Description string `json:"description,omitempty"`
	VLAN        string `json:"vlan,omitempty"`
	Bandwidth   string `json:"bandwidth,omitempty"`
	MTU         string `json:"mtu,omitempty"`
}

// RenderedDetail is the display model for the open panel: metadata fields
// verbatim when present, "N/A" when absent.
type RenderedDetail struct {
	Hostname       string              `json:"hostname"`
	DeviceType     string              `json:"device_type"`
	Vendor         string              `json:"vendor"`
	Model          string              `json:"model"`
	OSVersion      string              `json:"os_version"`
	Status         string              `json:"status"`
	InterfaceCount int                 `json:"interface_count"`
	Interfaces     []RenderedInterface `json:"interfaces"`
	// EmptyMessage replaces the interface list when it has zero entries.
	EmptyMessage   string `json:"empty_message,omitempty"`
	SnapshotName   string `json:"snapshot_name"`
	LastUpdated    string `json:"last_updated"`
	ConfigFilePath string `json:"config_file_path,omitempty"`
}

// RenderDetail builds the display model for a fetched node detail.
func RenderDetail(d *domain.NodeDetail) *RenderedDetail {
	out := &RenderedDetail{
		Hostname:       d.Hostname,
		DeviceType:     orNA(d.DeviceType),
		Vendor:         orNA(d.Vendor),
		Model:          orNA(d.Model),
		OSVersion:      orNA(d.OSVersion),
		Status:         string(d.Status),
		InterfaceCount: d.InterfaceCount,
		SnapshotName:   d.Metadata.SnapshotName,
		ConfigFilePath: d.Metadata.ConfigFilePath,
	}
	if !d.Metadata.LastUpdated.IsZero() {
		out.LastUpdated = d.Metadata.LastUpdated.Format(time.RFC3339)
	}

	if len(d.Interfaces) == 0 {
		out.EmptyMessage = TextNoInterfaces
		out.Interfaces = []RenderedInterface{}
		return out
	}

	out.Interfaces = make([]RenderedInterface, 0, len(d.Interfaces))
	for i := range d.Interfaces {
		out.Interfaces = append(out.Interfaces, renderInterface(&d.Interfaces[i]))
	}
	return out
}

func renderInterface(i *domain.Interface) RenderedInterface {
	r := RenderedInterface{
		Name:        i.Name,
		Active:      i.Active,
		Description: i.Description,
	}

	if i.Active {
		r.StateLabel = textActiveState
	} else {
		r.StateLabel = textInactiveState
	}

	if len(i.IPAddresses) == 0 {
		r.IPSummary = TextNoIPAssigned
	} else {
		r.IPSummary = strings.Join(i.IPAddresses, ", ")
	}

	if i.VLAN != nil {
		r.VLAN = fmt.Sprintf("VLAN %d", *i.VLAN)
	}
	if i.BandwidthMbps != nil {
		r.Bandwidth = fmt.Sprintf("%d Mbps", *i.BandwidthMbps)
	}
	if i.MTU != nil {
		r.MTU = fmt.Sprintf("MTU %d", *i.MTU)
	}

	return r
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return TextNotAvailable
	}
	return s
}
