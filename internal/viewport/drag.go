package viewport

import (
	"math"
	"sync"
)

// DefaultDragThreshold is the pointer travel, in screen pixels, below which
// a down/up pair still counts as a click.
const DefaultDragThreshold = 3.0

// NodePinner is the simulation surface a drag gesture drives: pin while the
// pointer moves, unpin on release, reheat so the rest of the graph reacts.
type NodePinner interface {
	Pin(hostname string, x, y float64)
	Unpin(hostname string)
	Reheat(target float64)
}

// DragGesture tracks one node drag from pointer-down to pointer-up and
// disambiguates clicks from drags. A gesture that traveled beyond the
// threshold marks itself as a performed drag, which suppresses the click
// that would otherwise fire on release.
type DragGesture struct {
	mu        sync.Mutex
	threshold float64
	pinner    NodePinner
	view      *Viewport

	active   bool
	hostname string
	startX   float64
	startY   float64
	moved    bool
}

// NewDragGesture creates a gesture handler that pins nodes through pinner
// and converts pointer coordinates through view.
func NewDragGesture(view *Viewport, pinner NodePinner, threshold float64) *DragGesture {
	if threshold <= 0 {
		threshold = DefaultDragThreshold
	}
	return &DragGesture{threshold: threshold, pinner: pinner, view: view}
}

// Down begins a potential drag on the given node at screen coordinates.
func (g *DragGesture) Down(hostname string, sx, sy float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = true
	g.hostname = hostname
	g.startX, g.startY = sx, sy
	g.moved = false
}

// Move updates an active gesture. Once the pointer travels beyond the
// threshold the gesture becomes a drag: the node is pinned at the cursor's
// world position and the simulation is reheated so neighbors react.
func (g *DragGesture) Move(sx, sy float64) {
	g.mu.Lock()
	if !g.active {
		g.mu.Unlock()
		return
	}

	if !g.moved && math.Hypot(sx-g.startX, sy-g.startY) > g.threshold {
		g.moved = true
		g.mu.Unlock()
		g.pinner.Reheat(0.3)
	} else {
		g.mu.Unlock()
	}

	g.mu.Lock()
	moved, hostname := g.moved, g.hostname
	g.mu.Unlock()

	if moved {
		wx, wy := g.view.ToWorld(sx, sy)
		g.pinner.Pin(hostname, wx, wy)
	}
}

// Up ends the gesture. It returns true when an actual drag occurred, in
// which case the caller must suppress the click that fires on release, or
// every drag would also select the node.
func (g *DragGesture) Up() bool {
	g.mu.Lock()
	if !g.active {
		g.mu.Unlock()
		return false
	}
	g.active = false
	moved, hostname := g.moved, g.hostname
	g.hostname = ""
	g.mu.Unlock()

	if moved {
		g.pinner.Unpin(hostname)
		g.pinner.Reheat(0)
	}
	return moved
}

// Dragging reports whether a drag (past the threshold) is in progress.
func (g *DragGesture) Dragging() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active && g.moved
}
