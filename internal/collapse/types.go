// Package collapse turns a traversal engine's raw subgraph into the
// user-facing shape: passthrough nodes elided, paired X-axis edges folded
// into single logical steps.
package collapse

import (
	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/traversal"
)

// NodeSummary is one node in a collapsed response.
type NodeSummary struct {
	ID         string
	Type       string
	Properties map[string]any
}

// EdgeSummary is one physical edge in a collapsed response. Folding its
// two-edge pair into a single LogicalStep in Paths does not remove it;
// it is dropped only when an endpoint is hidden (a visible: false node
// type, or a transformer when transformers are not included).
type EdgeSummary struct {
	ID              string
	Name            string
	Source          string
	Destination     string
	SourceType      string
	DestinationType string
	SubType         string
	Direction       lineage.Direction
	Properties      map[string]any
}

// LogicalStep is one entry in a collapsed path. For X it may span two
// physical edges via a transformer; for Y and Z it spans one, or several
// when passthrough nodes between them were elided (their edge names are
// then joined with commas in a single EdgeNames entry).
type LogicalStep struct {
	Axis      lineage.Axis
	Direction string

	From string
	// To is "" for an unclosed X half-hop (a resource -> transformer edge
	// with no paired transformer -> resource edge on this path).
	To string

	// Via and ViaType identify the transformer mediating an X logical
	// step. Empty for Y and Z steps.
	Via     string
	ViaType string

	EdgeNames []string

	// HopGroup is "" for Y and Z steps and for X steps whose rule carries
	// none.
	HopGroup string
}

// LogicalPath is one path from the start node to a tip, in logical steps.
type LogicalPath []LogicalStep

// Result is the collapsed, user-facing traversal response.
type Result struct {
	StartNode NodeSummary
	Nodes     []NodeSummary
	Edges     []EdgeSummary
	Paths     []LogicalPath
	Metadata  traversal.Metadata
}
