package traversal

import (
	"context"
	"fmt"

	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
)

// NeighborSummary is one immediate neighbor reached from a OneHop query.
type NeighborSummary struct {
	Node     lineage.Node
	EdgeName string
	SubType  string
}

// OneHopResult groups a node's immediate neighbors by axis and, for X and
// Y, by normalized direction. It answers the same classification question
// as Traverse but skips the frontier entirely, for callers that only need
// one node's immediate expansion (e.g. an "expand this node" UI action).
type OneHopResult struct {
	Node lineage.Node

	XUpstream   []NeighborSummary
	XDownstream []NeighborSummary
	YUp         []NeighborSummary
	YDown       []NeighborSummary
	Z           []NeighborSummary
}

// OneHop returns nodeID's immediate neighbors, classified and direction-
// normalized the same way Traverse would at depth 1, without running a
// BFS or applying a z_hops cap.
func (e *Engine) OneHop(ctx context.Context, nodeID string) (*OneHopResult, error) {
	cache := map[string]*lineage.Node{}
	node, ok, err := e.fetchNode(ctx, cache, nodeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStartNotFound, nodeID)
	}

	result := &OneHopResult{Node: *node}

	edges, err := e.adapter.Neighbors(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdapterError, err)
	}

	for _, edge := range edges {
		other, ok, err := e.fetchNode(ctx, cache, edge.OtherNode)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		sourceSubType, destSubType := subTypesFor(edge, *node, *other)
		ec, found := e.registry.Classify(edge.Name, edge.SourceType, edge.DestinationType, sourceSubType, destSubType)
		if !found {
			continue
		}

		summary := NeighborSummary{Node: *other, EdgeName: edge.Name, SubType: edge.SubType}

		switch ec.Axis {
		case taxonomy.AxisX:
			currentRole, err := e.registry.NodeRole(currentType(edge, *node, *other))
			if err != nil {
				return nil, err
			}
			if xEdgeIsUpstream(currentRole.Role, ec.RoleInHop) {
				result.XUpstream = append(result.XUpstream, summary)
			} else {
				result.XDownstream = append(result.XDownstream, summary)
			}
		case taxonomy.AxisY:
			if yEdgeIsUp(ec.SemanticUp, edge.Direction) {
				result.YUp = append(result.YUp, summary)
			} else {
				result.YDown = append(result.YDown, summary)
			}
		case taxonomy.AxisZ:
			result.Z = append(result.Z, summary)
		}
	}

	return result, nil
}
