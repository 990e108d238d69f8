package hover

import (
	"strings"
	"testing"

	"topoview/internal/domain"
)

func TestPlaceFlipsAtEdges(t *testing.T) {
	const viewW, viewH = 800.0, 600.0
	const w, h = 150.0, 80.0

	t.Run("default placement is right and below cursor", func(t *testing.T) {
		x, y := Place(100, 100, w, h, viewW, viewH)
		if x <= 100 || y <= 100 {
			t.Errorf("expected placement right/below cursor, got (%f, %f)", x, y)
		}
	})

	t.Run("flips left near right edge", func(t *testing.T) {
		x, _ := Place(viewW-10, 100, w, h, viewW, viewH)
		if x >= viewW-10 {
			t.Errorf("expected flip to left of cursor, got x=%f", x)
		}
		if x+w > viewW {
			t.Errorf("tooltip still overflows right edge: x=%f w=%f", x, w)
		}
	})

	t.Run("flips up near bottom edge", func(t *testing.T) {
		_, y := Place(100, viewH-10, w, h, viewW, viewH)
		if y >= viewH-10 {
			t.Errorf("expected flip above cursor, got y=%f", y)
		}
		if y+h > viewH {
			t.Errorf("tooltip still overflows bottom edge: y=%f h=%f", y, h)
		}
	})

	t.Run("flips both near corner", func(t *testing.T) {
		x, y := Place(viewW-5, viewH-5, w, h, viewW, viewH)
		if x+w > viewW || y+h > viewH {
			t.Errorf("tooltip overflows at corner: (%f, %f)", x, y)
		}
	})
}

func TestTooltipNodeContent(t *testing.T) {
	tip := New()
	node := &domain.GraphNode{
		Hostname:       "r1",
		DeviceType:     domain.DeviceTypeRouter,
		Vendor:         "Cisco",
		InterfaceCount: 4,
	}

	tip.ShowNode(node, 100, 100, 800, 600)
	view := tip.View()

	if !view.Visible {
		t.Fatal("expected tooltip visible")
	}
	joined := strings.Join(view.Lines, "\n")
	for _, want := range []string{"r1", "router", "Cisco", "Interfaces: 4"} {
		if !strings.Contains(joined, want) {
			t.Errorf("tooltip missing %q:\n%s", want, joined)
		}
	}
	// Absent model and config format render as N/A.
	if !strings.Contains(joined, "Model: N/A") || !strings.Contains(joined, "Config: N/A") {
		t.Errorf("expected N/A for missing fields:\n%s", joined)
	}
}

func TestTooltipEdgeContent(t *testing.T) {
	tip := New()
	edge := &domain.GraphEdge{
		SourceHostname:  "r1",
		TargetHostname:  "r2",
		SourceInterface: "ge0/0",
		TargetInterface: "ge0/1",
		SourceIP:        "10.0.0.1/30",
		Protocol:        "ospf",
	}

	tip.ShowEdge(edge, 100, 100, 800, 600)
	joined := strings.Join(tip.View().Lines, "\n")

	for _, want := range []string{"r1 <-> r2", "ge0/0 - ge0/1", "10.0.0.1/30", "ospf"} {
		if !strings.Contains(joined, want) {
			t.Errorf("edge tooltip missing %q:\n%s", want, joined)
		}
	}
}

func TestTooltipHide(t *testing.T) {
	tip := New()
	tip.ShowNode(&domain.GraphNode{Hostname: "r1"}, 0, 0, 800, 600)
	tip.Hide()

	view := tip.View()
	if view.Visible {
		t.Error("expected tooltip hidden after pointer leave")
	}
	if len(view.Lines) != 0 {
		t.Error("expected content cleared on hide")
	}
}
