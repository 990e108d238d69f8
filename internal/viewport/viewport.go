// Package viewport manages the zoom/pan transform applied to the rendered
// graph and the drag gesture used to reposition individual nodes. It is
// independent of graph data: zooming and panning only change one affine
// transform on the root drawing group, never node coordinates.
package viewport

import (
	"fmt"
	"sync"
)

// Transform is the affine transform of the root drawing group.
type Transform struct {
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Scale      float64 `json:"scale"`
}

// SVGString renders the transform as an SVG transform attribute value.
func (t Transform) SVGString() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.TranslateX, t.TranslateY, t.Scale)
}

// Viewport clamps zoom to a configured scale range and converts between
// screen and world coordinates.
type Viewport struct {
	mu       sync.Mutex
	tf       Transform
	minScale float64
	maxScale float64
}

// New creates a viewport with the identity transform and the given scale
// clamp range.
func New(minScale, maxScale float64) *Viewport {
	return &Viewport{
		tf:       Transform{Scale: 1},
		minScale: minScale,
		maxScale: maxScale,
	}
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tf
}

// Pan shifts the view by the given screen-space deltas.
func (v *Viewport) Pan(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tf.TranslateX += dx
	v.tf.TranslateY += dy
}

// ZoomBy multiplies the scale by factor, keeping the screen point (fx, fy)
// fixed. The resulting scale is clamped to the configured range.
func (v *Viewport) ZoomBy(factor, fx, fy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	scale := v.tf.Scale * factor
	if scale < v.minScale {
		scale = v.minScale
	}
	if scale > v.maxScale {
		scale = v.maxScale
	}
	applied := scale / v.tf.Scale

	// Keep the focal point stationary on screen.
	v.tf.TranslateX = fx - (fx-v.tf.TranslateX)*applied
	v.tf.TranslateY = fy - (fy-v.tf.TranslateY)*applied
	v.tf.Scale = scale
}

// ToWorld converts a screen point to world (graph) coordinates.
func (v *Viewport) ToWorld(sx, sy float64) (float64, float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return (sx - v.tf.TranslateX) / v.tf.Scale, (sy - v.tf.TranslateY) / v.tf.Scale
}

// ToScreen converts a world point to screen coordinates.
func (v *Viewport) ToScreen(wx, wy float64) (float64, float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return wx*v.tf.Scale + v.tf.TranslateX, wy*v.tf.Scale + v.tf.TranslateY
}

// Reset restores the identity transform.
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tf = Transform{Scale: 1}
}
