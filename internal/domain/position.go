package domain

// NodePosition is the persisted position and pinning state of a node,
// scoped to the snapshot it was arranged in.
type NodePosition struct {
	Hostname string  `json:"hostname"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pinned   bool    `json:"pinned"`
}

// NewNodePosition creates an unpinned position for a node.
func NewNodePosition(hostname string, x, y float64) *NodePosition {
	return &NodePosition{
		Hostname: hostname,
		X:        x,
		Y:        y,
	}
}
