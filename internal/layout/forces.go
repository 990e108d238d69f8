package layout

import "math"

// applyLinkForce pulls connected pairs toward the configured separation.
func (s *Simulation) applyLinkForce() {
	for i := range s.edges {
		src, ok := s.index[s.edges[i].SourceHostname]
		if !ok {
			continue
		}
		dst, ok := s.index[s.edges[i].TargetHostname]
		if !ok {
			continue
		}

		dx := (dst.X + dst.VX) - (src.X + src.VX)
		dy := (dst.Y + dst.VY) - (src.Y + src.VY)
		d := math.Hypot(dx, dy)
		if d == 0 {
			dx, dy = s.jiggle(), s.jiggle()
			d = math.Hypot(dx, dy)
		}

		l := (d - s.cfg.LinkDistance) / d * s.alpha * s.cfg.LinkStrength
		dst.VX -= dx * l / 2
		dst.VY -= dy * l / 2
		src.VX += dx * l / 2
		src.VY += dy * l / 2
	}
}

// applyChargeForce repels every node pair; strength falls off with the
// square of the distance. O(n²) is fine at network-topology scale.
func (s *Simulation) applyChargeForce() {
	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]

			dx := b.X - a.X
			dy := b.Y - a.Y
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				dx, dy = s.jiggle(), s.jiggle()
				d2 = dx*dx + dy*dy
			}

			f := s.cfg.ChargeStrength * s.alpha / d2
			a.VX += dx * f
			a.VY += dy * f
			b.VX -= dx * f
			b.VY -= dy * f
		}
	}
}

// applyCenterForce weakly pulls every node toward the canvas center.
func (s *Simulation) applyCenterForce() {
	for _, n := range s.nodes {
		n.VX += (s.cfg.CenterX - n.X) * s.cfg.CenterStrength * s.alpha
		n.VY += (s.cfg.CenterY - n.Y) * s.cfg.CenterStrength * s.alpha
	}
}

// applyCollision enforces the minimum center-to-center distance by pushing
// overlapping pairs apart after integration. Pinned nodes do not move; their
// counterpart absorbs the whole correction.
func (s *Simulation) applyCollision() {
	min := s.cfg.CollisionRadius
	if min <= 0 {
		return
	}

	for i := 0; i < len(s.nodes); i++ {
		for j := i + 1; j < len(s.nodes); j++ {
			a, b := s.nodes[i], s.nodes[j]

			dx := b.X - a.X
			dy := b.Y - a.Y
			d := math.Hypot(dx, dy)
			if d >= min {
				continue
			}
			if d == 0 {
				dx, dy = s.jiggle(), s.jiggle()
				d = math.Hypot(dx, dy)
			}

			overlap := (min - d) / d
			switch {
			case a.Pinned() && b.Pinned():
				// Both held by the user; leave them alone.
			case a.Pinned():
				b.X += dx * overlap
				b.Y += dy * overlap
			case b.Pinned():
				a.X -= dx * overlap
				a.Y -= dy * overlap
			default:
				a.X -= dx * overlap / 2
				a.Y -= dy * overlap / 2
				b.X += dx * overlap / 2
				b.Y += dy * overlap / 2
			}
		}
	}
}

// jiggle breaks exact coincidence so force directions stay defined.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
