// Package traversal implements the bounded breadth-first traversal engine
// that walks a lineage graph under the three-axis classification discipline
// reported by the taxonomy registry.
//
// The engine depends on nothing but the Adapter interface defined here; it
// never touches a concrete store.
package traversal

import (
	"context"

	"github.com/lineagehq/lineage-graph/internal/lineage"
)

// Adapter is the minimal adjacency contract the engine needs from a graph
// store. Implementations may back it with anything — an in-memory map, a
// key-value store, a remote service — as long as Neighbors is synchronous
// from the engine's point of view.
type Adapter interface {
	// Node returns the node with the given id, or ok=false if it does not
	// exist. An error is reserved for adapter-level failure (I/O, decode);
	// a missing node is reported via ok, not an error.
	Node(ctx context.Context, id string) (node lineage.Node, ok bool, err error)

	// Neighbors returns every edge incident to id, in adapter-chosen but
	// stable order. Edge.OtherNode/OtherNodeType/Direction are already
	// resolved relative to id.
	Neighbors(ctx context.Context, id string) ([]lineage.Edge, error)
}

// XDirection selects which half of an X-axis derivation chain a request
// follows.
type XDirection string

const (
	XUpstream   XDirection = "upstream"
	XDownstream XDirection = "downstream"
	XBoth       XDirection = "both"
)

// YDirection selects which way a Y-axis containment edge is allowed to
// move, in normalized up/down terms.
type YDirection string

const (
	YUp   YDirection = "up"
	YDown YDirection = "down"
	YBoth YDirection = "both"
)

// MaxZHopsCap is the system-enforced upper bound on a request's
// max_z_hops, independent of any per-request value.
const MaxZHopsCap = 4

// Request describes one bounded traversal.
type Request struct {
	StartNodeID string

	// Axes is the non-empty set of axes this traversal follows. An edge
	// classified to an axis not in this set is ignored entirely.
	Axes []lineage.Axis

	XDirection XDirection
	YDirection YDirection

	// MaxZHops caps the number of Z-classified edges any single path may
	// spend. Enforced per path, never globally.
	MaxZHops int

	// MaxDepth caps the number of edges any single path may traverse.
	// Nil means unbounded (subject to the other constraints).
	MaxDepth *int

	// IncludeTransformers controls whether transformer nodes survive hop
	// collapsing in the response's node list.
	IncludeTransformers bool
}

// axisSet returns Axes as a lookup set.
func (r Request) axisSet() map[lineage.Axis]bool {
	set := make(map[lineage.Axis]bool, len(r.Axes))
	for _, a := range r.Axes {
		set[a] = true
	}
	return set
}

// RawStep is a single traversed edge, annotated with its classification
// and normalized direction. It is the unit the Hop Collapser folds into
// logical steps.
type RawStep struct {
	Axis lineage.Axis

	// Direction is "up"/"down" for Y, "upstream"/"downstream" for X, and
	// "" for Z (Z is undirected for reachability).
	Direction string

	From, To         string
	FromType, ToType string

	EdgeName string
	SubType  string

	HopGroup  string
	RoleInHop string // empty for non-X axes

	// StoredDirection is the edge's direction as the Adapter reported it,
	// set on every step, including Z steps, which have no
	// traversal-direction filter. The HTTP raw response and the MCP raw
	// view do not include it.
	StoredDirection lineage.Direction
}

// PathRecord is one path from the start node to a path tip, as the
// sequence of edges traversed to reach it.
type PathRecord []RawStep

// Metadata summarizes one traversal run.
type Metadata struct {
	ZHopsTaken         int
	TotalNodesVisited  int
	BlockedZOfZPaths   int
}

// RawResult is the engine's pre-collapse output: the full reachable
// subgraph plus every path that produced it.
type RawResult struct {
	StartNode lineage.Node

	// Nodes is keyed by node id, deduplicated.
	Nodes map[string]lineage.Node

	// Edges is keyed by Edge.ID, deduplicated.
	Edges map[string]lineage.Edge

	Paths []PathRecord

	Metadata Metadata
}
