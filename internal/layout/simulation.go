// Package layout computes 2D node positions with an iterative force
// simulation: link attraction, many-body repulsion, weak centering, and a
// collision constraint. Layouts are intentionally non-deterministic; the
// same input can settle differently depending on initial placement.
package layout

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"topoview/internal/domain"
)

// Config holds the force tuning knobs.
type Config struct {
	LinkDistance    float64 // target separation for connected pairs
	LinkStrength    float64
	ChargeStrength  float64 // negative repels
	CenterStrength  float64
	CollisionRadius float64 // minimum center-to-center distance
	CenterX         float64
	CenterY         float64
	AlphaMin        float64
	AlphaDecay      float64
	VelocityDecay   float64
	TickInterval    time.Duration
}

// DefaultConfig returns force defaults for a canvas of the given size.
func DefaultConfig(width, height float64) Config {
	return Config{
		LinkDistance:    150,
		LinkStrength:    0.7,
		ChargeStrength:  -350,
		CenterStrength:  0.05,
		CollisionRadius: 45,
		CenterX:         width / 2,
		CenterY:         height / 2,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:   0.4,
		TickInterval:    33 * time.Millisecond,
	}
}

// Frame is one emitted batch of position updates.
type Frame struct {
	Alpha     float64               `json:"alpha"`
	Positions []domain.NodePosition `json:"positions"`
}

// Simulation relaxes node positions step by step until alpha cools below
// AlphaMin. Pinning a node holds it at a fixed position and, combined with
// Reheat, keeps the simulation live while the user drags.
type Simulation struct {
	mu    sync.Mutex
	nodes []*domain.GraphNode
	edges []domain.GraphEdge
	index map[string]*domain.GraphNode

	cfg         Config
	alpha       float64
	alphaTarget float64
	running     bool
	rng         *rand.Rand
}

// New creates a simulation over the given nodes and edges. Nodes without a
// position are seeded on a phyllotaxis spiral around the canvas center so
// the initial state is already roughly spread out.
func New(nodes []*domain.GraphNode, edges []domain.GraphEdge, cfg Config) *Simulation {
	s := &Simulation{
		nodes: nodes,
		edges: edges,
		index: make(map[string]*domain.GraphNode, len(nodes)),
		cfg:   cfg,
		alpha: 1,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	const initialRadius = 30
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i, n := range nodes {
		s.index[n.Hostname] = n
		if n.X == 0 && n.Y == 0 {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * goldenAngle
			n.X = cfg.CenterX + r*math.Cos(a)
			n.Y = cfg.CenterY + r*math.Sin(a)
		}
	}

	return s
}

// Step advances the simulation by one tick and reports whether it is still
// hot. Once alpha decays below AlphaMin (and no reheat target holds it up)
// the layout is considered settled.
func (s *Simulation) Step() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLinkForce()
	s.applyChargeForce()
	s.applyCenterForce()

	for _, n := range s.nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= 1 - s.cfg.VelocityDecay
		n.VY *= 1 - s.cfg.VelocityDecay
		n.X += n.VX
		n.Y += n.VY
	}

	s.applyCollision()

	return s.alpha >= s.cfg.AlphaMin
}

// Run drives the simulation on a ticker and streams a frame of updated
// positions after every step. The channel closes when the layout settles or
// ctx is canceled.
func (s *Simulation) Run(ctx context.Context) <-chan Frame {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	frames := make(chan Frame, 8)

	go func() {
		defer close(frames)

		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.mu.Lock()
				s.running = false
				s.mu.Unlock()
				return
			case <-ticker.C:
				hot := s.Step()
				frame := Frame{Alpha: s.Alpha(), Positions: s.Positions()}
				select {
				case frames <- frame:
				default:
					// Consumer is behind; drop the frame rather than stall the ticker.
				}
				if !hot && s.cooled() {
					return
				}
			}
		}
	}()

	return frames
}

// cooled confirms the settle decision under the lock. A reheat that landed
// between the step and this check keeps the loop alive; exiting anyway would
// strand the raised alpha with nothing stepping it.
func (s *Simulation) cooled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alpha >= s.cfg.AlphaMin {
		return false
	}
	s.running = false
	return true
}

// Pin fixes a node at the given position for the duration of a drag gesture.
func (s *Simulation) Pin(hostname string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.index[hostname]; ok {
		n.Pin(x, y)
	}
}

// Unpin releases a dragged node back to the simulation.
func (s *Simulation) Unpin(hostname string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.index[hostname]; ok {
		n.Unpin()
	}
}

// Reheat raises the cooling target so the graph keeps reacting while a node
// is dragged. Passing 0 restores normal cooling and lets the layout settle.
// It reports that the run loop has already exited and the caller must start
// a new one for the raised alpha to have any effect.
func (s *Simulation) Reheat(target float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alphaTarget = target
	if s.alpha < target {
		s.alpha = target
	}
	if target == 0 && s.alpha < 0.3 {
		// Release perturbs the layout; give it room to re-settle.
		s.alpha = 0.3
	}
	if !s.running && s.alpha >= s.cfg.AlphaMin {
		// Reserve the restart so concurrent reheats start one loop at most.
		s.running = true
		return true
	}
	return false
}

// Alpha returns the current cooling factor.
func (s *Simulation) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

// Snapshot copies the node structs under the simulation lock. Callers must
// read through it instead of the shared node pointers while a run loop may
// be stepping.
func (s *Simulation) Snapshot() []domain.GraphNode {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.GraphNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	return out
}

// Positions snapshots the current node positions.
func (s *Simulation) Positions() []domain.NodePosition {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.NodePosition, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, domain.NodePosition{
			Hostname: n.Hostname,
			X:        n.X,
			Y:        n.Y,
			Pinned:   n.Pinned(),
		})
	}
	return out
}
