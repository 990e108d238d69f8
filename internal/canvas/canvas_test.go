package canvas

import (
	"context"
	"encoding/xml"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"topoview/internal/domain"
	"topoview/internal/engine"
	"topoview/internal/hover"
	"topoview/internal/layout"
	"topoview/internal/service"
)

type fakeEngine struct {
	nodes []engine.NodeRecord
	edges []engine.EdgeRecord
}

func (f *fakeEngine) Nodes(ctx context.Context, snapshot, network string) ([]engine.NodeRecord, error) {
	return f.nodes, nil
}

func (f *fakeEngine) Edges(ctx context.Context, snapshot, network string) ([]engine.EdgeRecord, error) {
	return f.edges, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved map[string]domain.NodePosition
	puts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]domain.NodePosition)}
}

func (f *fakeStore) Positions(ctx context.Context, network, snapshot string) (map[string]domain.NodePosition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.NodePosition, len(f.saved))
	for k, v := range f.saved {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SavePositions(ctx context.Context, network, snapshot string, positions []domain.NodePosition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	for _, p := range positions {
		f.saved[p.Hostname] = p
	}
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func (f *fakeStore) position(hostname string) domain.NodePosition {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[hostname]
}

func threeRouterTopology() *fakeEngine {
	return &fakeEngine{
		nodes: []engine.NodeRecord{
			{Hostname: "r1", DeviceType: "router", Vendor: "Cisco", InterfacesCount: 2},
			{Hostname: "r2", DeviceType: "router", Vendor: "Cisco", InterfacesCount: 2},
			{Hostname: "s1", DeviceType: "switch", Vendor: "Arista", InterfacesCount: 8},
		},
		edges: []engine.EdgeRecord{
			{SourceHostname: "r1", TargetHostname: "r2", SourceInterface: "ge0/0", TargetInterface: "ge0/0"},
			{SourceHostname: "r2", TargetHostname: "s1", SourceInterface: "ge0/1", TargetInterface: "eth1"},
		},
	}
}

// fastLayout settles in well under a second so tests can wait for it.
func fastLayout() layout.Config {
	cfg := layout.DefaultConfig(1200, 800)
	cfg.AlphaDecay = 0.3
	cfg.TickInterval = time.Millisecond
	return cfg
}

func testCanvas(t *testing.T, ec EngineClient, store PositionStore, bus *service.EventBus, onSelect func(string)) *Canvas {
	t.Helper()
	c := New(ec, store, bus, Options{
		Width:    1200,
		Height:   800,
		Layout:   fastLayout(),
		OnSelect: onSelect,
		Log:      zerolog.Nop(),
	})
	t.Cleanup(c.Destroy)
	return c
}

func mustLoad(t *testing.T, c *Canvas) *domain.Graph {
	t.Helper()
	g, err := c.Load(context.Background(), "prod", "default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return g
}

func TestCanvasLoadBuildsGraph(t *testing.T) {
	c := testCanvas(t, threeRouterTopology(), nil, nil, nil)
	g := mustLoad(t, c)

	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("expected 3 nodes and 2 edges, got %d/%d", len(g.Nodes), len(g.Edges))
	}
	if !g.EdgesValid() {
		t.Error("loaded edges must reference loaded nodes")
	}
	if n := g.NodeByHostname("s1"); n == nil || n.DeviceType != domain.DeviceTypeSwitch {
		t.Errorf("expected s1 as switch, got %+v", n)
	}
}

func TestCanvasDropsDanglingEdges(t *testing.T) {
	ec := threeRouterTopology()
	ec.edges = append(ec.edges, engine.EdgeRecord{
		SourceHostname: "r1", TargetHostname: "ghost", SourceInterface: "ge0/2", TargetInterface: "ge0/0",
	})

	c := testCanvas(t, ec, nil, nil, nil)
	g := mustLoad(t, c)

	if len(g.Edges) != 2 {
		t.Errorf("edge to unknown node must be dropped, got %d edges", len(g.Edges))
	}
	if !g.EdgesValid() {
		t.Error("graph must stay structurally valid after dropping dangling edges")
	}
}

func TestCanvasEmptySnapshot(t *testing.T) {
	c := testCanvas(t, &fakeEngine{}, nil, nil, nil)
	g := mustLoad(t, c)

	if len(g.Nodes) != 0 {
		t.Fatalf("expected empty graph, got %d nodes", len(g.Nodes))
	}

	svg := c.RenderSVG()
	if !strings.Contains(svg, EmptyStateMessage) {
		t.Error("empty snapshot must render the placeholder message")
	}
	if strings.Contains(svg, `class="node"`) || strings.Contains(svg, `class="edge"`) {
		t.Error("empty snapshot must not render graph elements")
	}
}

func TestCanvasClickSelectsNode(t *testing.T) {
	var selected []string
	c := testCanvas(t, threeRouterTopology(), nil, nil, func(h string) { selected = append(selected, h) })
	mustLoad(t, c)

	c.PointerDown("r2", 400, 300)
	c.PointerUp()

	if len(selected) != 1 || selected[0] != "r2" {
		t.Fatalf("expected one selection of r2, got %v", selected)
	}
	if c.Selected() != "r2" {
		t.Errorf("expected r2 selected, got %q", c.Selected())
	}

	svg := c.RenderSVG()
	if !strings.Contains(svg, `class="node selected" data-hostname="r2"`) {
		t.Error("selected node must carry the selection class")
	}
	// SVG has no z-index; the selected node must be painted last.
	if i, j := strings.Index(svg, `data-hostname="s1"`), strings.Index(svg, `data-hostname="r2"`); i > j {
		t.Error("selected node must be the last node element in document order")
	}
}

func TestCanvasSubThresholdMoveStillClicks(t *testing.T) {
	var selected []string
	c := testCanvas(t, threeRouterTopology(), nil, nil, func(h string) { selected = append(selected, h) })
	mustLoad(t, c)

	c.PointerDown("r1", 400, 300)
	c.PointerMove(401, 301)
	c.PointerUp()

	if len(selected) != 1 || selected[0] != "r1" {
		t.Errorf("a jitter below the threshold is still a click, got %v", selected)
	}
}

func TestCanvasDragSuppressesClick(t *testing.T) {
	var selected []string
	store := newFakeStore()
	c := testCanvas(t, threeRouterTopology(), store, nil, func(h string) { selected = append(selected, h) })
	mustLoad(t, c)

	c.PointerDown("r1", 400, 300)
	c.PointerMove(460, 360)
	c.PointerUp()

	if len(selected) != 0 {
		t.Errorf("a drag must not fire a selection, got %v", selected)
	}
	if c.Selected() != "" {
		t.Errorf("no node should be selected after a drag, got %q", c.Selected())
	}
	if store.saveCount() == 0 {
		t.Error("a finished drag must persist the new arrangement")
	}
}

func TestCanvasClearSelection(t *testing.T) {
	c := testCanvas(t, threeRouterTopology(), nil, nil, nil)
	mustLoad(t, c)

	c.Select("r1")
	c.ClearSelection()

	if c.Selected() != "" {
		t.Errorf("expected cleared selection, got %q", c.Selected())
	}
	if strings.Contains(c.RenderSVG(), "node selected") {
		t.Error("cleared selection must not render a highlight")
	}
}

func TestCanvasRestoresSavedPositions(t *testing.T) {
	store := newFakeStore()
	store.saved["r1"] = domain.NodePosition{Hostname: "r1", X: 111, Y: 222, Pinned: true}

	c := testCanvas(t, threeRouterTopology(), store, nil, nil)
	g := mustLoad(t, c)

	p, ok := g.Positions["r1"]
	if !ok {
		t.Fatal("expected a position entry for r1")
	}
	if p.X != 111 || p.Y != 222 || !p.Pinned {
		t.Errorf("saved pinned position must be restored, got %+v", p)
	}
}

func TestCanvasLayoutSettlesAndPersists(t *testing.T) {
	store := newFakeStore()
	events := make(chan service.Event, 1024)
	bus := service.NewEventBus()
	bus.Subscribe(events)

	c := testCanvas(t, threeRouterTopology(), store, bus, nil)
	mustLoad(t, c)

	deadline := time.After(5 * time.Second)
	var ticks int
	for {
		select {
		case ev := <-events:
			switch ev.Type {
			case service.EventLayoutTick:
				ticks++
			case service.EventLayoutSettled:
				if ticks == 0 {
					t.Error("expected layout ticks before settling")
				}
				waitForSaves(t, store)
				return
			}
		case <-deadline:
			t.Fatal("layout did not settle in time")
		}
	}
}

func waitEvent(t *testing.T, events <-chan service.Event, want service.EventType) service.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event before timeout", want)
		}
	}
}

func waitForSaves(t *testing.T, store *fakeStore) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if store.saveCount() > 0 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Error("settled layout must persist its positions")
}

func TestCanvasZoomPanPublishView(t *testing.T) {
	events := make(chan service.Event, 16)
	bus := service.NewEventBus()
	bus.Subscribe(events)

	c := testCanvas(t, threeRouterTopology(), nil, bus, nil)
	mustLoad(t, c)

	c.Zoom(2, 600, 400)
	c.Pan(30, -10)

	var views int
	for len(events) > 0 {
		if ev := <-events; ev.Type == service.EventViewChanged {
			views++
		}
	}
	if views != 2 {
		t.Errorf("expected 2 view-changed events, got %d", views)
	}

	if svg := c.RenderSVG(); !strings.Contains(svg, `transform="translate(`) {
		t.Error("rendered SVG must carry the viewport transform")
	}
}

func TestCanvasHoverTooltip(t *testing.T) {
	events := make(chan service.Event, 16)
	bus := service.NewEventBus()
	bus.Subscribe(events)

	c := testCanvas(t, threeRouterTopology(), nil, bus, nil)
	mustLoad(t, c)

	// Let the fast layout finish so ticks stop interleaving with hover events.
	waitEvent(t, events, service.EventLayoutSettled)
	for len(events) > 0 {
		<-events
	}

	c.HoverNode("r1", 200, 150)
	ev := waitEvent(t, events, service.EventTooltipChanged)
	view, ok := ev.Payload.(hover.View)
	if !ok || !view.Visible {
		t.Fatalf("expected a visible tooltip payload, got %+v", ev.Payload)
	}

	c.HoverLeave()
	ev = waitEvent(t, events, service.EventTooltipChanged)
	if view, ok := ev.Payload.(hover.View); !ok || view.Visible {
		t.Fatalf("expected a hidden tooltip payload, got %+v", ev.Payload)
	}

	// Hovering something that no longer exists is a no-op.
	c.HoverNode("ghost", 10, 10)
	if len(events) != 0 {
		t.Error("unknown hover target must not publish")
	}
}

// The exported document must be well-formed XML and contain exactly one
// element per node and per edge.
func TestCanvasRenderSVGElementCounts(t *testing.T) {
	c := testCanvas(t, threeRouterTopology(), nil, nil, nil)
	g := mustLoad(t, c)

	svg := c.RenderSVG()

	var doc struct {
		XMLName xml.Name `xml:"svg"`
	}
	if err := xml.Unmarshal([]byte(svg), &doc); err != nil {
		t.Fatalf("rendered SVG is not well-formed: %v", err)
	}

	if got := strings.Count(svg, `<g class="node`); got != len(g.Nodes) {
		t.Errorf("expected %d node elements, got %d", len(g.Nodes), got)
	}
	if got := strings.Count(svg, `<line class="edge"`); got != len(g.Edges) {
		t.Errorf("expected %d edge elements, got %d", len(g.Edges), got)
	}
}

func waitNodeAt(t *testing.T, c *Canvas, hostname string, x, y float64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p, ok := c.Graph().Positions[hostname]; ok && math.Hypot(p.X-x, p.Y-y) < 0.5 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("%s never reached (%g, %g)", hostname, x, y)
}

// A drag that begins after the layout settled must restart the run loop;
// otherwise the pinned position is never stepped into the layout and the
// release persists the stale arrangement.
func TestCanvasDragAfterSettle(t *testing.T) {
	store := newFakeStore()
	events := make(chan service.Event, 1024)
	bus := service.NewEventBus()
	bus.Subscribe(events)

	c := testCanvas(t, threeRouterTopology(), store, bus, nil)
	mustLoad(t, c)
	waitEvent(t, events, service.EventLayoutSettled)

	c.PointerDown("r1", 400, 300)
	c.PointerMove(100, 100)
	waitNodeAt(t, c, "r1", 100, 100)

	c.PointerUp()
	if p := store.position("r1"); math.Hypot(p.X-100, p.Y-100) > 50 {
		t.Errorf("release must persist the dragged position, got %+v", p)
	}

	// Release perturbs the layout; it must cool back down on its own.
	waitEvent(t, events, service.EventLayoutSettled)
}

// Rendering and graph snapshots while the run loop is stepping must not
// touch the node structs outside the simulation's lock.
func TestCanvasRenderDuringLayout(t *testing.T) {
	events := make(chan service.Event, 1024)
	bus := service.NewEventBus()
	bus.Subscribe(events)

	c := testCanvas(t, threeRouterTopology(), nil, bus, nil)
	mustLoad(t, c)

	deadline := time.After(5 * time.Second)
	for {
		c.RenderSVG()
		c.Graph()
		select {
		case ev := <-events:
			if ev.Type == service.EventLayoutSettled {
				return
			}
		case <-deadline:
			t.Fatal("layout did not settle in time")
		default:
		}
	}
}

func TestCanvasReloadResetsState(t *testing.T) {
	c := testCanvas(t, threeRouterTopology(), nil, nil, nil)
	mustLoad(t, c)

	c.Select("r1")
	c.Zoom(2, 0, 0)
	mustLoad(t, c)

	if c.Selected() != "" {
		t.Error("reload must clear the selection")
	}
	if !strings.Contains(c.RenderSVG(), `transform="translate(0,0) scale(1)"`) {
		t.Error("reload must reset the viewport transform")
	}
}
