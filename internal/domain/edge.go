package domain

import "fmt"

// GraphEdge represents a Layer 3 link between two device interfaces.
// Edges reference nodes by hostname; they do not own them. Identity is the
// (source, target, source interface, target interface) tuple.
type GraphEdge struct {
	SourceHostname  string `json:"source_hostname"`
	TargetHostname  string `json:"target_hostname"`
	SourceInterface string `json:"source_interface"`
	TargetInterface string `json:"target_interface"`
	SourceIP        string `json:"source_ip,omitempty"`
	TargetIP        string `json:"target_ip,omitempty"`
	Protocol        string `json:"protocol,omitempty"`
}

// ID returns the identity tuple as a single string, usable as a map key
// and as an SVG element id.
func (e *GraphEdge) ID() string {
	return fmt.Sprintf("%s:%s-%s:%s", e.SourceHostname, e.SourceInterface, e.TargetHostname, e.TargetInterface)
}
