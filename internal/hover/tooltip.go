// Package hover manages the tooltip shown when the pointer rests on a node
// or link: content assembly, show/hide state, and placement that avoids
// clipping at the viewport edges.
package hover

import (
	"fmt"
	"strings"
	"sync"

	"topoview/internal/domain"
)

// Default tooltip geometry used for placement. Placement only needs a
// conservative estimate of the rendered box, not exact text metrics.
const (
	cursorOffset  = 12.0
	lineHeight    = 18.0
	approxCharW   = 7.2
	boxPadding    = 16.0
	minTooltipDim = 40.0
)

// Tooltip is the current hover info state.
type Tooltip struct {
	mu      sync.Mutex
	visible bool
	lines   []string
	x       float64
	y       float64
}

// New creates a hidden tooltip.
func New() *Tooltip {
	return &Tooltip{}
}

// View is the rendered tooltip state sent to clients.
type View struct {
	Visible bool     `json:"visible"`
	Lines   []string `json:"lines,omitempty"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
}

// ShowNode displays device info near the cursor.
func (t *Tooltip) ShowNode(node *domain.GraphNode, cursorX, cursorY, viewW, viewH float64) {
	lines := []string{
		node.Hostname,
		fmt.Sprintf("Type: %s", node.DeviceType),
		fmt.Sprintf("Vendor: %s", orNA(node.Vendor)),
		fmt.Sprintf("Model: %s", orNA(node.Model)),
		fmt.Sprintf("Interfaces: %d", node.InterfaceCount),
		fmt.Sprintf("Config: %s", orNA(node.ConfigFormat)),
	}
	t.show(lines, cursorX, cursorY, viewW, viewH)
}

// ShowEdge displays link info near the cursor.
func (t *Tooltip) ShowEdge(edge *domain.GraphEdge, cursorX, cursorY, viewW, viewH float64) {
	lines := []string{
		fmt.Sprintf("%s <-> %s", edge.SourceHostname, edge.TargetHostname),
		fmt.Sprintf("%s - %s", edge.SourceInterface, edge.TargetInterface),
	}
	if edge.SourceIP != "" || edge.TargetIP != "" {
		lines = append(lines, fmt.Sprintf("%s - %s", orNA(edge.SourceIP), orNA(edge.TargetIP)))
	}
	if edge.Protocol != "" {
		lines = append(lines, fmt.Sprintf("Protocol: %s", edge.Protocol))
	}
	t.show(lines, cursorX, cursorY, viewW, viewH)
}

// Hide hides the tooltip on pointer-leave.
func (t *Tooltip) Hide() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = false
	t.lines = nil
}

// View snapshots the tooltip state.
func (t *Tooltip) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := make([]string, len(t.lines))
	copy(lines, t.lines)
	return View{Visible: t.visible, Lines: lines, X: t.x, Y: t.y}
}

func (t *Tooltip) show(lines []string, cursorX, cursorY, viewW, viewH float64) {
	w, h := estimateSize(lines)
	x, y := Place(cursorX, cursorY, w, h, viewW, viewH)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = true
	t.lines = lines
	t.x = x
	t.y = y
}

// Place positions a box of size (w, h) near the cursor, flipping to the
// opposite side when default placement would overflow the right or bottom
// viewport edge.
func Place(cursorX, cursorY, w, h, viewW, viewH float64) (float64, float64) {
	x := cursorX + cursorOffset
	if x+w > viewW {
		x = cursorX - cursorOffset - w
	}

	y := cursorY + cursorOffset
	if y+h > viewH {
		y = cursorY - cursorOffset - h
	}

	return x, y
}

func estimateSize(lines []string) (float64, float64) {
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	w := float64(longest)*approxCharW + boxPadding
	h := float64(len(lines))*lineHeight + boxPadding
	if w < minTooltipDim {
		w = minTooltipDim
	}
	if h < minTooltipDim {
		h = minTooltipDim
	}
	return w, h
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
