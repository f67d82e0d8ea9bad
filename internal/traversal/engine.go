package traversal

import (
	"context"
	"fmt"

	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
)

// Engine executes bounded BFS traversals against an Adapter, classifying
// every candidate edge through a Registry. An Engine holds no per-request
// state; Traverse is safe to call concurrently from multiple goroutines.
type Engine struct {
	adapter  Adapter
	registry *taxonomy.Registry
}

// New builds an Engine over the given adapter and taxonomy registry.
func New(adapter Adapter, registry *taxonomy.Registry) *Engine {
	return &Engine{adapter: adapter, registry: registry}
}

// pathState is one path-tip in the BFS frontier.
type pathState struct {
	node lineage.Node

	// path is the ordered list of node ids from start to node, used for
	// the within-path cycle guard.
	path []string

	steps PathRecord

	zHopsTaken int
	depth      int
}

// Traverse runs one bounded breadth-first traversal and returns the raw
// (pre-collapse) subgraph. Callers that want the user-facing shape pass
// the result to collapse.Collapse.
func (e *Engine) Traverse(ctx context.Context, req Request) (*RawResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	cache := map[string]*lineage.Node{}
	start, ok, err := e.fetchNode(ctx, cache, req.StartNodeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStartNotFound, req.StartNodeID)
	}

	result := &RawResult{
		StartNode: *start,
		Nodes:     map[string]lineage.Node{start.ID: *start},
		Edges:     map[string]lineage.Edge{},
	}

	axes := req.axisSet()
	frontier := []pathState{{node: *start, path: []string{start.ID}}}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", ErrCancelled)
		}

		s := frontier[0]
		frontier = frontier[1:]

		if req.MaxDepth != nil && s.depth >= *req.MaxDepth {
			continue
		}

		edges, err := e.adapter.Neighbors(ctx, s.node.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAdapterError, err)
		}

		for _, edge := range edges {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w", ErrCancelled)
			}

			other, ok, err := e.fetchNode(ctx, cache, edge.OtherNode)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			sourceSubType, destSubType := subTypesFor(edge, s.node, *other)
			ec, found := e.registry.Classify(edge.Name, edge.SourceType, edge.DestinationType, sourceSubType, destSubType)
			if !found {
				continue
			}
			if !axes[ec.Axis] {
				continue
			}

			var direction string
			switch ec.Axis {
			case taxonomy.AxisX:
				currentRole, err := e.registry.NodeRole(currentType(edge, s.node, *other))
				if err != nil {
					return nil, err
				}
				upstream := xEdgeIsUpstream(currentRole.Role, ec.RoleInHop)
				if !xDirectionAdmits(req.XDirection, upstream) {
					continue
				}
				if upstream {
					direction = "upstream"
				} else {
					direction = "downstream"
				}
			case taxonomy.AxisY:
				up := yEdgeIsUp(ec.SemanticUp, edge.Direction)
				if !yDirectionAdmits(req.YDirection, up) {
					continue
				}
				if up {
					direction = "up"
				} else {
					direction = "down"
				}
			case taxonomy.AxisZ:
				if s.zHopsTaken >= req.MaxZHops {
					result.Metadata.BlockedZOfZPaths++
					continue
				}
			}

			if contains(s.path, other.ID) {
				continue
			}

			step := RawStep{
				Axis:            ec.Axis,
				Direction:       direction,
				From:            s.node.ID,
				To:              other.ID,
				FromType:        s.node.Type,
				ToType:          other.Type,
				EdgeName:        edge.Name,
				SubType:         edge.SubType,
				HopGroup:        ec.HopGroup,
				RoleInHop:       string(ec.RoleInHop),
				StoredDirection: edge.Direction,
			}

			next := pathState{
				node:       *other,
				path:       append(append([]string{}, s.path...), other.ID),
				steps:      append(append(PathRecord{}, s.steps...), step),
				zHopsTaken: s.zHopsTaken,
				depth:      s.depth + 1,
			}
			if ec.Axis == taxonomy.AxisZ {
				next.zHopsTaken++
			}

			result.Nodes[other.ID] = *other
			result.Edges[edge.ID()] = edge
			if ec.Axis == taxonomy.AxisZ {
				result.Metadata.ZHopsTaken++
			}
			result.Paths = append(result.Paths, next.steps)
			frontier = append(frontier, next)
		}
	}

	result.Metadata.TotalNodesVisited = len(result.Nodes)
	return result, nil
}

func (e *Engine) fetchNode(ctx context.Context, cache map[string]*lineage.Node, id string) (*lineage.Node, bool, error) {
	if n, ok := cache[id]; ok {
		return n, true, nil
	}
	n, ok, err := e.adapter.Node(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrAdapterError, err)
	}
	if !ok {
		return nil, false, nil
	}
	cache[id] = &n
	return &n, true, nil
}

func validate(req Request) error {
	if req.StartNodeID == "" {
		return fmt.Errorf("%w: start_node_id is required", ErrInvalidRequest)
	}
	if len(req.Axes) == 0 {
		return fmt.Errorf("%w: axes must be non-empty", ErrInvalidRequest)
	}
	for _, a := range req.Axes {
		switch a {
		case lineage.AxisX, lineage.AxisY, lineage.AxisZ:
		default:
			return fmt.Errorf("%w: unknown axis %q", ErrInvalidRequest, a)
		}
	}
	switch req.XDirection {
	case "", XUpstream, XDownstream, XBoth:
	default:
		return fmt.Errorf("%w: unknown x_direction %q", ErrInvalidRequest, req.XDirection)
	}
	switch req.YDirection {
	case "", YUp, YDown, YBoth:
	default:
		return fmt.Errorf("%w: unknown y_direction %q", ErrInvalidRequest, req.YDirection)
	}
	if req.MaxZHops < 0 {
		return fmt.Errorf("%w: max_z_hops must be non-negative", ErrInvalidRequest)
	}
	if req.MaxZHops > MaxZHopsCap {
		return fmt.Errorf("%w: max_z_hops %d exceeds cap %d", ErrInvalidRequest, req.MaxZHops, MaxZHopsCap)
	}
	if req.MaxDepth != nil && *req.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must be non-negative", ErrInvalidRequest)
	}
	return nil
}

// subTypesFor resolves the source and destination node sub_types for a
// classification lookup, independent of which endpoint the Adapter
// reported the edge from.
func subTypesFor(edge lineage.Edge, current, other lineage.Node) (sourceSubType, destSubType string) {
	if edge.Direction == lineage.DirectionOutgoing {
		return current.SubType(), other.SubType()
	}
	return other.SubType(), current.SubType()
}

// currentType returns the node type the engine should look up under
// NodeRole to decide which side of an X-axis edge the current node sits
// on: the resource or the transformer.
func currentType(edge lineage.Edge, current, other lineage.Node) string {
	_ = other
	if edge.Direction == lineage.DirectionOutgoing {
		return edge.SourceType
	}
	return edge.DestinationType
}

// xEdgeIsUpstream reports whether traversing this X edge from the
// current node's role moves toward the start of the derivation chain
// (toward producers) rather than toward consumers.
func xEdgeIsUpstream(currentRole lineage.NodeRole, roleInHop taxonomy.HopRole) bool {
	if currentRole == lineage.RoleTransformer {
		return roleInHop == taxonomy.RoleInputToTransformer
	}
	return roleInHop == taxonomy.RoleOutputFromTransformer
}

func xDirectionAdmits(dir XDirection, upstream bool) bool {
	switch dir {
	case XUpstream:
		return upstream
	case XDownstream:
		return !upstream
	default:
		return true
	}
}

// yEdgeIsUp reports whether traversing this Y edge, in the direction the
// Adapter reported it relative to the current node, moves up the
// containment hierarchy.
func yEdgeIsUp(semanticUp taxonomy.SemanticUp, direction lineage.Direction) bool {
	movesAlongStoredArrow := direction == lineage.DirectionOutgoing
	if semanticUp == taxonomy.SemanticForward {
		return movesAlongStoredArrow
	}
	return !movesAlongStoredArrow
}

func yDirectionAdmits(dir YDirection, up bool) bool {
	switch dir {
	case YUp:
		return up
	case YDown:
		return !up
	default:
		return true
	}
}

func contains(path []string, id string) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}
