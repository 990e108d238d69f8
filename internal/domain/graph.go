package domain

// Graph is the node/edge collection for one loaded snapshot, as served to
// clients and consumed by the layout engine. The canvas owns the collections;
// they are rebuilt wholesale on every topology load.
type Graph struct {
	Nodes     []GraphNode             `json:"nodes"`
	Edges     []GraphEdge             `json:"edges"`
	Positions map[string]NodePosition `json:"positions,omitempty"`
}

// NewGraph creates an empty graph with initialized collections.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make([]GraphNode, 0),
		Edges:     make([]GraphEdge, 0),
		Positions: make(map[string]NodePosition),
	}
}

// AddNode appends a node to the graph.
func (g *Graph) AddNode(node GraphNode) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge to the graph.
func (g *Graph) AddEdge(edge GraphEdge) {
	g.Edges = append(g.Edges, edge)
}

// NodeByHostname returns the node with the given hostname, or nil.
func (g *Graph) NodeByHostname(hostname string) *GraphNode {
	for i := range g.Nodes {
		if g.Nodes[i].Hostname == hostname {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EdgesValid reports whether every edge references nodes present in the graph.
func (g *Graph) EdgesValid() bool {
	known := make(map[string]struct{}, len(g.Nodes))
	for i := range g.Nodes {
		known[g.Nodes[i].Hostname] = struct{}{}
	}
	for i := range g.Edges {
		if _, ok := known[g.Edges[i].SourceHostname]; !ok {
			return false
		}
		if _, ok := known[g.Edges[i].TargetHostname]; !ok {
			return false
		}
	}
	return true
}
