package viewport

import (
	"math"
	"testing"
)

func TestViewportZoomClamping(t *testing.T) {
	t.Run("clamps at max scale", func(t *testing.T) {
		v := New(0.1, 4.0)
		for i := 0; i < 20; i++ {
			v.ZoomBy(2, 400, 300)
		}
		if got := v.Transform().Scale; got != 4.0 {
			t.Errorf("expected scale clamped to 4.0, got %f", got)
		}
	})

	t.Run("clamps at min scale", func(t *testing.T) {
		v := New(0.1, 4.0)
		for i := 0; i < 20; i++ {
			v.ZoomBy(0.5, 400, 300)
		}
		if got := v.Transform().Scale; math.Abs(got-0.1) > 1e-9 {
			t.Errorf("expected scale clamped to 0.1, got %f", got)
		}
	})

	t.Run("zoom keeps focal point fixed", func(t *testing.T) {
		v := New(0.1, 4.0)
		v.Pan(50, -20)

		wx, wy := v.ToWorld(400, 300)
		v.ZoomBy(1.5, 400, 300)
		wx2, wy2 := v.ToWorld(400, 300)

		if math.Abs(wx-wx2) > 1e-9 || math.Abs(wy-wy2) > 1e-9 {
			t.Errorf("focal point drifted: (%f,%f) -> (%f,%f)", wx, wy, wx2, wy2)
		}
	})
}

func TestViewportPan(t *testing.T) {
	v := New(0.1, 4.0)
	v.Pan(100, 50)
	v.Pan(-30, 10)

	tf := v.Transform()
	if tf.TranslateX != 70 || tf.TranslateY != 60 {
		t.Errorf("expected translate (70, 60), got (%f, %f)", tf.TranslateX, tf.TranslateY)
	}
}

func TestViewportCoordinateRoundTrip(t *testing.T) {
	v := New(0.1, 4.0)
	v.ZoomBy(2.5, 120, 80)
	v.Pan(-15, 33)

	sx, sy := v.ToScreen(v.ToWorld(200, 150))
	if math.Abs(sx-200) > 1e-9 || math.Abs(sy-150) > 1e-9 {
		t.Errorf("round trip drifted to (%f, %f)", sx, sy)
	}
}

func TestTransformSVGString(t *testing.T) {
	tf := Transform{TranslateX: 10.5, TranslateY: -3, Scale: 2}
	if got := tf.SVGString(); got != "translate(10.5,-3) scale(2)" {
		t.Errorf("unexpected transform string %q", got)
	}
}

// fakePinner records pin/unpin/reheat calls.
type fakePinner struct {
	pins    []string
	unpins  []string
	reheats []float64
	lastX   float64
	lastY   float64
}

func (f *fakePinner) Pin(hostname string, x, y float64) {
	f.pins = append(f.pins, hostname)
	f.lastX, f.lastY = x, y
}
func (f *fakePinner) Unpin(hostname string) { f.unpins = append(f.unpins, hostname) }
func (f *fakePinner) Reheat(target float64) { f.reheats = append(f.reheats, target) }

func TestDragGestureClickVsDrag(t *testing.T) {
	t.Run("down and up with no movement is a click", func(t *testing.T) {
		p := &fakePinner{}
		g := NewDragGesture(New(0.1, 4.0), p, 3)

		g.Down("r1", 100, 100)
		if dragged := g.Up(); dragged {
			t.Error("expected click, got drag")
		}
		if len(p.pins) != 0 || len(p.unpins) != 0 {
			t.Error("click must not touch the simulation")
		}
	})

	t.Run("movement below threshold is still a click", func(t *testing.T) {
		p := &fakePinner{}
		g := NewDragGesture(New(0.1, 4.0), p, 3)

		g.Down("r1", 100, 100)
		g.Move(101, 101)
		if dragged := g.Up(); dragged {
			t.Error("sub-threshold movement must not count as drag")
		}
	})

	t.Run("movement beyond threshold suppresses the click", func(t *testing.T) {
		p := &fakePinner{}
		g := NewDragGesture(New(0.1, 4.0), p, 3)

		g.Down("r1", 100, 100)
		g.Move(130, 140)
		if !g.Dragging() {
			t.Error("expected gesture to be a drag")
		}
		if dragged := g.Up(); !dragged {
			t.Error("expected drag to be reported on release")
		}

		if len(p.pins) == 0 || p.pins[0] != "r1" {
			t.Errorf("expected r1 pinned during drag, got %v", p.pins)
		}
		if len(p.unpins) != 1 || p.unpins[0] != "r1" {
			t.Errorf("expected r1 unpinned on release, got %v", p.unpins)
		}
		// Reheat on drag start, cooldown restored on release.
		if len(p.reheats) != 2 || p.reheats[0] != 0.3 || p.reheats[1] != 0 {
			t.Errorf("unexpected reheat sequence %v", p.reheats)
		}
	})

	t.Run("drag pins at world coordinates", func(t *testing.T) {
		p := &fakePinner{}
		v := New(0.1, 4.0)
		v.Pan(100, 0)
		g := NewDragGesture(v, p, 3)

		g.Down("r1", 200, 50)
		g.Move(260, 50)
		g.Up()

		wantX, wantY := v.ToWorld(260, 50)
		if p.lastX != wantX || p.lastY != wantY {
			t.Errorf("pinned at (%f,%f), want (%f,%f)", p.lastX, p.lastY, wantX, wantY)
		}
	})

	t.Run("move without down is ignored", func(t *testing.T) {
		p := &fakePinner{}
		g := NewDragGesture(New(0.1, 4.0), p, 3)

		g.Move(500, 500)
		if g.Up() {
			t.Error("expected no gesture")
		}
		if len(p.pins) != 0 {
			t.Error("expected no pins")
		}
	})
}
