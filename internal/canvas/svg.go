package canvas

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	nodeRadius      = 18.0
	edgeStrokeWidth = 1.5
	labelOffsetY    = nodeRadius + 14
)

// nodeFill maps device types to the palette used for node circles.
var nodeFill = map[string]string{
	"router":   "#4f86f7",
	"switch":   "#34a853",
	"firewall": "#ea4335",
	"unknown":  "#9aa0a6",
}

// RenderSVG serializes the current view as a standalone SVG document: edges
// first so nodes paint above them, nodes in paint order with the selected
// one last, and the whole graph wrapped in the viewport transform group.
func (c *Canvas) RenderSVG() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>`+"\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		c.width, c.height, c.width, c.height)
	fmt.Fprintf(&b, `  <rect class="background" width="%g" height="%g" fill="#ffffff"/>`+"\n", c.width, c.height)

	if !c.loaded || len(c.nodes) == 0 {
		fmt.Fprintf(&b, `  <text class="empty-state" x="%g" y="%g" text-anchor="middle" font-size="16" fill="#5f6368">%s</text>`+"\n",
			c.width/2, c.height/2, xmlEscape(EmptyStateMessage))
		b.WriteString("</svg>\n")
		return b.String()
	}

	fmt.Fprintf(&b, `  <g class="viewport" transform="%s">`+"\n", c.view.Transform().SVGString())

	// Coordinates go through the simulation's lock; the run loop mutates the
	// node structs while it is live.
	pos := c.livePositionsLocked()

	for i := range c.edges {
		e := &c.edges[i]
		src := pos[e.SourceHostname]
		dst := pos[e.TargetHostname]
		fmt.Fprintf(&b, `    <line class="edge" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#b0b7c3" stroke-width="%g" data-source="%s" data-target="%s"/>`+"\n",
			src.X, src.Y, dst.X, dst.Y, edgeStrokeWidth,
			xmlEscape(e.SourceHostname), xmlEscape(e.TargetHostname))
	}

	for _, h := range c.order {
		n := c.nodes[h]
		p := pos[h]
		selected := h == c.selected
		class := "node"
		if selected {
			class = "node selected"
		}
		fill, ok := nodeFill[string(n.DeviceType)]
		if !ok {
			fill = nodeFill["unknown"]
		}

		fmt.Fprintf(&b, `    <g class="%s" data-hostname="%s">`+"\n", class, xmlEscape(h))
		if selected {
			fmt.Fprintf(&b, `      <circle class="selection-ring" cx="%.2f" cy="%.2f" r="%g" fill="none" stroke="#fbbc04" stroke-width="3"/>`+"\n",
				p.X, p.Y, nodeRadius+4)
		}
		fmt.Fprintf(&b, `      <circle cx="%.2f" cy="%.2f" r="%g" fill="%s"/>`+"\n", p.X, p.Y, nodeRadius, fill)
		fmt.Fprintf(&b, `      <text x="%.2f" y="%.2f" text-anchor="middle" font-size="12" fill="#202124">%s</text>`+"\n",
			p.X, p.Y+labelOffsetY, xmlEscape(h))
		b.WriteString("    </g>\n")
	}

	b.WriteString("  </g>\n</svg>\n")
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
