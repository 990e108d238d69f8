package domain

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func validDetail() *NodeDetail {
	return &NodeDetail{
		Hostname:       "router-01",
		DeviceType:     "router",
		Vendor:         "Cisco",
		Model:          "ISR4451",
		OSVersion:      "IOS XE 17.3.4a",
		Status:         NodeStatusActive,
		InterfaceCount: 1,
		Interfaces: []Interface{
			{Name: "GigabitEthernet0/0/0", Active: true, IPAddresses: []string{"192.168.1.1/24"}},
		},
		Metadata: DeviceMetadata{
			SnapshotName: "prod",
			LastUpdated:  time.Now(),
		},
	}
}

func TestNodeDetailValidate(t *testing.T) {
	t.Run("accepts valid detail", func(t *testing.T) {
		if err := validDetail().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects empty hostname", func(t *testing.T) {
		d := validDetail()
		d.Hostname = ""
		if err := d.Validate(); err == nil {
			t.Error("expected error for empty hostname")
		}
	})

	t.Run("rejects interface count mismatch", func(t *testing.T) {
		d := validDetail()
		d.InterfaceCount = 3
		if err := d.Validate(); err == nil {
			t.Error("expected error for interface_count mismatch")
		}
	})

	t.Run("accepts zero interfaces with matching count", func(t *testing.T) {
		d := validDetail()
		d.Interfaces = nil
		d.InterfaceCount = 0
		if err := d.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		d := validDetail()
		d.Status = "flapping"
		if err := d.Validate(); err == nil {
			t.Error("expected error for invalid status")
		}
	})
}

func TestInterfaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		iface   Interface
		wantErr bool
	}{
		{"minimal valid", Interface{Name: "eth0", Active: true}, false},
		{"empty name", Interface{Name: ""}, true},
		{"vlan lower bound", Interface{Name: "eth0", VLAN: intPtr(1)}, false},
		{"vlan upper bound", Interface{Name: "eth0", VLAN: intPtr(4094)}, false},
		{"vlan zero", Interface{Name: "eth0", VLAN: intPtr(0)}, true},
		{"vlan too large", Interface{Name: "eth0", VLAN: intPtr(4095)}, true},
		{"mtu lower bound", Interface{Name: "eth0", MTU: intPtr(68)}, false},
		{"mtu upper bound", Interface{Name: "eth0", MTU: intPtr(9216)}, false},
		{"mtu too small", Interface{Name: "eth0", MTU: intPtr(67)}, true},
		{"mtu too large", Interface{Name: "eth0", MTU: intPtr(9217)}, true},
		{"negative bandwidth", Interface{Name: "eth0", BandwidthMbps: intPtr(-1)}, true},
		{"zero bandwidth", Interface{Name: "eth0", BandwidthMbps: intPtr(0)}, true},
		{"positive bandwidth", Interface{Name: "eth0", BandwidthMbps: intPtr(1000)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.iface.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDeviceType(t *testing.T) {
	tests := []struct {
		in   string
		want DeviceType
	}{
		{"router", DeviceTypeRouter},
		{"switch", DeviceTypeSwitch},
		{"firewall", DeviceTypeFirewall},
		{"host", DeviceTypeUnknown},
		{"", DeviceTypeUnknown},
	}

	for _, tt := range tests {
		if got := ParseDeviceType(tt.in); got != tt.want {
			t.Errorf("ParseDeviceType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
