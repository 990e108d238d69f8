// Package domain defines the core data model for the topology viewer:
// graph nodes and edges as returned by the analysis engine, on-demand
// node detail aggregates, and viewer-side node positions.
package domain
