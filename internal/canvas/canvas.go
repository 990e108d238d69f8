// Package canvas owns the rendered topology graph: the node/edge model for
// the loaded snapshot, the live force simulation, the viewport transform,
// hover state, and the single selected node. Pointer gestures enter here;
// a confirmed node click raises the selection signal consumed by the detail
// panel.
package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"topoview/internal/domain"
	"topoview/internal/engine"
	"topoview/internal/hover"
	"topoview/internal/layout"
	"topoview/internal/service"
	"topoview/internal/viewport"
)

// EmptyStateMessage is rendered instead of the graph when a loaded snapshot
// has zero nodes. An empty snapshot is a valid state, not an error.
const EmptyStateMessage = "No devices in this snapshot"

// EngineClient is the topology query surface of the analysis engine.
type EngineClient interface {
	Nodes(ctx context.Context, snapshot, network string) ([]engine.NodeRecord, error)
	Edges(ctx context.Context, snapshot, network string) ([]engine.EdgeRecord, error)
}

// PositionStore persists manually arranged node positions per snapshot.
type PositionStore interface {
	Positions(ctx context.Context, network, snapshot string) (map[string]domain.NodePosition, error)
	SavePositions(ctx context.Context, network, snapshot string, positions []domain.NodePosition) error
}

// Options configures a Canvas.
type Options struct {
	Width    float64
	Height   float64
	MinScale float64
	MaxScale float64
	Layout   layout.Config
	// OnSelect receives the hostname of a clicked node (after drag
	// suppression). Wired to the detail panel's Open.
	OnSelect func(hostname string)
	Log      zerolog.Logger
}

// Canvas is the interactive topology view for one loaded snapshot.
type Canvas struct {
	mu     sync.Mutex
	engine EngineClient
	store  PositionStore
	bus    *service.EventBus
	log    zerolog.Logger

	width     float64
	height    float64
	layoutCfg layout.Config

	view *viewport.Viewport
	tip  *hover.Tooltip
	drag *viewport.DragGesture

	nodes map[string]*domain.GraphNode
	order []string // paint order; the selected node is kept last
	edges []domain.GraphEdge

	sim       *layout.Simulation
	simCancel context.CancelFunc

	snapshot string
	network  string
	selected string
	loaded   bool

	pressHostname string
	onSelect      func(string)
}

// New creates an empty canvas. Load must be called before it renders
// anything beyond the empty state.
func New(ec EngineClient, store PositionStore, bus *service.EventBus, opts Options) *Canvas {
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.Height <= 0 {
		opts.Height = 800
	}
	if opts.MinScale <= 0 {
		opts.MinScale = 0.1
	}
	if opts.MaxScale <= 0 {
		opts.MaxScale = 4.0
	}
	if opts.Layout.TickInterval == 0 {
		opts.Layout = layout.DefaultConfig(opts.Width, opts.Height)
	}

	c := &Canvas{
		engine:    ec,
		store:     store,
		bus:       bus,
		log:       opts.Log.With().Str("component", "canvas").Logger(),
		width:     opts.Width,
		height:    opts.Height,
		layoutCfg: opts.Layout,
		view:      viewport.New(opts.MinScale, opts.MaxScale),
		tip:       hover.New(),
		nodes:     make(map[string]*domain.GraphNode),
		onSelect:  opts.OnSelect,
	}
	return c
}

// Load fetches the topology for a snapshot, rebuilds the node/edge model,
// and (re)starts the force simulation. Previously persisted positions are
// restored so manual arrangements survive a reload.
func (c *Canvas) Load(ctx context.Context, snapshot, network string) (*domain.Graph, error) {
	records, err := c.engine.Nodes(ctx, snapshot, network)
	if err != nil {
		return nil, err
	}
	edgeRecords, err := c.engine.Edges(ctx, snapshot, network)
	if err != nil {
		return nil, err
	}

	var saved map[string]domain.NodePosition
	if c.store != nil {
		saved, err = c.store.Positions(ctx, network, snapshot)
		if err != nil {
			c.log.Warn().Err(err).Msg("could not restore saved positions")
			saved = nil
		}
	}

	c.mu.Lock()

	if c.simCancel != nil {
		c.simCancel()
		c.simCancel = nil
	}

	c.snapshot = snapshot
	c.network = network
	c.selected = ""
	c.loaded = true
	c.nodes = make(map[string]*domain.GraphNode, len(records))
	c.order = c.order[:0]
	c.edges = c.edges[:0]
	c.view.Reset()
	c.tip.Hide()

	for _, r := range records {
		n := domain.NewGraphNode(r.Hostname, domain.ParseDeviceType(r.DeviceType))
		n.Vendor = r.Vendor
		n.Model = r.Model
		n.ConfigFormat = r.ConfigFormat
		n.InterfaceCount = r.InterfacesCount
		if pos, ok := saved[r.Hostname]; ok {
			n.X, n.Y = pos.X, pos.Y
			if pos.Pinned {
				n.Pin(pos.X, pos.Y)
			}
		}
		c.nodes[r.Hostname] = n
		c.order = append(c.order, r.Hostname)
	}

	for _, r := range edgeRecords {
		if _, ok := c.nodes[r.SourceHostname]; !ok {
			c.log.Warn().Str("source", r.SourceHostname).Msg("edge references unknown source node, dropped")
			continue
		}
		if _, ok := c.nodes[r.TargetHostname]; !ok {
			c.log.Warn().Str("target", r.TargetHostname).Msg("edge references unknown target node, dropped")
			continue
		}
		c.edges = append(c.edges, domain.GraphEdge{
			SourceHostname:  r.SourceHostname,
			TargetHostname:  r.TargetHostname,
			SourceInterface: r.SourceInterface,
			TargetInterface: r.TargetInterface,
			SourceIP:        r.SourceIP,
			TargetIP:        r.TargetIP,
			Protocol:        r.Protocol,
		})
	}

	if len(c.nodes) == 0 {
		c.sim = nil
		c.drag = nil
		c.mu.Unlock()
		c.log.Info().Str("snapshot", snapshot).Msg("snapshot has no nodes, rendering empty state")
		c.publish(service.EventTopologyLoaded, map[string]interface{}{
			"snapshot": snapshot, "network": network, "nodes": 0, "edges": 0,
		})
		return c.Graph(), nil
	}

	nodeList := make([]*domain.GraphNode, 0, len(c.order))
	for _, h := range c.order {
		nodeList = append(nodeList, c.nodes[h])
	}
	c.sim = layout.New(nodeList, c.edges, c.layoutCfg)
	c.drag = viewport.NewDragGesture(c.view, c, viewport.DefaultDragThreshold)
	c.startSimLocked()
	nodeCount, edgeCount := len(c.nodes), len(c.edges)

	c.mu.Unlock()

	c.log.Info().
		Str("snapshot", snapshot).
		Str("network", network).
		Int("nodes", nodeCount).
		Int("edges", edgeCount).
		Msg("topology loaded")

	c.publish(service.EventTopologyLoaded, map[string]interface{}{
		"snapshot": snapshot, "network": network, "nodes": nodeCount, "edges": edgeCount,
	})

	return c.Graph(), nil
}

// startSimLocked starts the run loop for the current simulation and the
// goroutine that forwards its frames. Caller holds c.mu.
func (c *Canvas) startSimLocked() {
	if c.simCancel != nil {
		c.simCancel()
	}
	simCtx, cancel := context.WithCancel(context.Background())
	c.simCancel = cancel
	frames := c.sim.Run(simCtx)
	go c.pumpFrames(simCtx, frames, c.sim, c.snapshot, c.network)
}

// pumpFrames forwards simulation frames to the event bus and, once the
// layout settles, persists the final arrangement. A run canceled by a
// reload or Destroy ends without a settled event.
func (c *Canvas) pumpFrames(ctx context.Context, frames <-chan layout.Frame, sim *layout.Simulation, snapshot, network string) {
	for f := range frames {
		c.publish(service.EventLayoutTick, f)
	}
	if ctx.Err() != nil {
		return
	}
	c.publish(service.EventLayoutSettled, map[string]string{"snapshot": snapshot})
	c.persistPositions(sim, snapshot, network)
}

func (c *Canvas) persistPositions(sim *layout.Simulation, snapshot, network string) {
	if c.store == nil || sim == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.SavePositions(ctx, network, snapshot, sim.Positions()); err != nil {
		c.log.Warn().Err(err).Msg("could not persist node positions")
	}
}

// Destroy stops the simulation and drops the graph model.
func (c *Canvas) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.simCancel != nil {
		c.simCancel()
		c.simCancel = nil
	}
	c.sim = nil
	c.drag = nil
	c.nodes = make(map[string]*domain.GraphNode)
	c.order = nil
	c.edges = nil
	c.selected = ""
	c.loaded = false
}

// Graph snapshots the current model for clients. While a run loop is live
// the node structs are mutated under the simulation's lock, so the copies
// come from the simulation rather than the shared pointers.
func (c *Canvas) Graph() *domain.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := domain.NewGraph()
	if c.sim != nil {
		byHost := make(map[string]domain.GraphNode, len(c.order))
		for _, n := range c.sim.Snapshot() {
			byHost[n.Hostname] = n
		}
		for _, h := range c.order {
			n := byHost[h]
			g.AddNode(n)
			g.Positions[h] = domain.NodePosition{Hostname: h, X: n.X, Y: n.Y, Pinned: n.Pinned()}
		}
	} else {
		for _, h := range c.order {
			g.AddNode(*c.nodes[h])
		}
	}
	g.Edges = append(g.Edges, c.edges...)
	return g
}

// livePositionsLocked snapshots node coordinates for rendering, going
// through the simulation's lock while a run loop may be stepping. Caller
// holds c.mu.
func (c *Canvas) livePositionsLocked() map[string]domain.NodePosition {
	out := make(map[string]domain.NodePosition, len(c.nodes))
	if c.sim != nil {
		for _, p := range c.sim.Positions() {
			out[p.Hostname] = p
		}
		return out
	}
	for h, n := range c.nodes {
		out[h] = domain.NodePosition{Hostname: h, X: n.X, Y: n.Y, Pinned: n.Pinned()}
	}
	return out
}

// Snapshot returns the currently loaded snapshot and network names.
func (c *Canvas) Snapshot() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.network
}

// Selected returns the hostname of the selected node, or "".
func (c *Canvas) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// PointerDown begins a potential drag or click on a node.
func (c *Canvas) PointerDown(hostname string, sx, sy float64) {
	c.mu.Lock()
	drag := c.drag
	if _, ok := c.nodes[hostname]; !ok {
		c.mu.Unlock()
		return
	}
	c.pressHostname = hostname
	c.mu.Unlock()

	if drag != nil {
		drag.Down(hostname, sx, sy)
	}
}

// PointerMove updates an active drag gesture.
func (c *Canvas) PointerMove(sx, sy float64) {
	c.mu.Lock()
	drag := c.drag
	c.mu.Unlock()
	if drag != nil {
		drag.Move(sx, sy)
	}
}

// PointerUp finishes the gesture. If an actual drag occurred the click is
// suppressed; otherwise the pressed node becomes the selection.
func (c *Canvas) PointerUp() {
	c.mu.Lock()
	drag := c.drag
	sim := c.sim
	hostname := c.pressHostname
	c.pressHostname = ""
	snapshot, network := c.snapshot, c.network
	c.mu.Unlock()

	dragged := false
	if drag != nil {
		dragged = drag.Up()
	}
	if dragged {
		// The gesture was a drag; persist the new arrangement instead of
		// treating the release as a click.
		c.persistPositions(sim, snapshot, network)
		return
	}
	if hostname != "" {
		c.Select(hostname)
	}
}

// Pin holds a node at a world position for the duration of a drag.
func (c *Canvas) Pin(hostname string, x, y float64) {
	c.mu.Lock()
	sim := c.sim
	c.mu.Unlock()
	if sim != nil {
		sim.Pin(hostname, x, y)
	}
}

// Unpin releases a dragged node back to the simulation.
func (c *Canvas) Unpin(hostname string) {
	c.mu.Lock()
	sim := c.sim
	c.mu.Unlock()
	if sim != nil {
		sim.Unpin(hostname)
	}
}

// Reheat raises the simulation's cooling target. A simulation whose run
// loop already settled is started again, otherwise the pinned drag position
// would never be stepped back into the layout.
func (c *Canvas) Reheat(target float64) {
	c.mu.Lock()
	sim := c.sim
	c.mu.Unlock()
	if sim == nil {
		return
	}
	if sim.Reheat(target) {
		c.mu.Lock()
		if c.sim == sim {
			c.startSimLocked()
		}
		c.mu.Unlock()
	}
}

// Select marks a node as selected: the previous indicator is cleared, the
// node is raised to the top of the paint order (SVG has no z-index), and
// the selection signal fires. It reports whether the hostname is part of
// the loaded graph.
func (c *Canvas) Select(hostname string) bool {
	c.mu.Lock()
	if _, ok := c.nodes[hostname]; !ok {
		c.mu.Unlock()
		return false
	}
	c.selected = hostname
	c.raiseLocked(hostname)
	onSelect := c.onSelect
	c.mu.Unlock()

	c.publish(service.EventNodeSelected, map[string]string{"hostname": hostname})
	if onSelect != nil {
		onSelect(hostname)
	}
	return true
}

// ClearSelection removes the selection indicator. Wired as the panel's
// OnClose callback so the highlight clears however the panel was closed.
func (c *Canvas) ClearSelection() {
	c.mu.Lock()
	had := c.selected != ""
	c.selected = ""
	c.mu.Unlock()

	if had {
		c.publish(service.EventSelectionClear, nil)
	}
}

// raiseLocked moves a hostname to the end of the paint order.
func (c *Canvas) raiseLocked(hostname string) {
	for i, h := range c.order {
		if h == hostname {
			c.order = append(append(c.order[:i:i], c.order[i+1:]...), hostname)
			return
		}
	}
}

// HoverNode shows the node tooltip near the cursor.
func (c *Canvas) HoverNode(hostname string, sx, sy float64) {
	c.mu.Lock()
	n, ok := c.nodes[hostname]
	c.mu.Unlock()
	if !ok {
		return
	}
	c.tip.ShowNode(n, sx, sy, c.width, c.height)
	c.publish(service.EventTooltipChanged, c.tip.View())
}

// HoverEdge shows the link tooltip near the cursor.
func (c *Canvas) HoverEdge(edgeID string, sx, sy float64) {
	c.mu.Lock()
	var found *domain.GraphEdge
	for i := range c.edges {
		if c.edges[i].ID() == edgeID {
			found = &c.edges[i]
			break
		}
	}
	c.mu.Unlock()
	if found == nil {
		return
	}
	c.tip.ShowEdge(found, sx, sy, c.width, c.height)
	c.publish(service.EventTooltipChanged, c.tip.View())
}

// HoverLeave hides the tooltip.
func (c *Canvas) HoverLeave() {
	c.tip.Hide()
	c.publish(service.EventTooltipChanged, c.tip.View())
}

// Zoom scales the view about a focal point, clamped to the configured range.
func (c *Canvas) Zoom(factor, fx, fy float64) {
	c.view.ZoomBy(factor, fx, fy)
	c.publish(service.EventViewChanged, c.view.Transform())
}

// Pan shifts the view.
func (c *Canvas) Pan(dx, dy float64) {
	c.view.Pan(dx, dy)
	c.publish(service.EventViewChanged, c.view.Transform())
}

func (c *Canvas) publish(t service.EventType, payload interface{}) {
	if c.bus != nil {
		c.bus.Publish(service.Event{Type: t, Payload: payload})
	}
}
