package collapse

import (
	"fmt"
	"sort"

	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
	"github.com/lineagehq/lineage-graph/internal/traversal"
)

// Collapse applies structural passthrough elision and X-axis hop
// collapsing to a raw traversal result and returns the user-facing
// shape. It never removes reachable material from Nodes/Edges beyond
// what the taxonomy marks non-visible or what includeTransformers
// excludes; it only reshapes Paths.
func Collapse(raw *traversal.RawResult, registry *taxonomy.Registry, includeTransformers bool) (*Result, error) {
	visible := make(map[string]bool, len(raw.Nodes))
	roleOf := make(map[string]lineage.NodeRole, len(raw.Nodes))
	for id, n := range raw.Nodes {
		info, err := registry.NodeRole(n.Type)
		if err != nil {
			return nil, fmt.Errorf("collapsing node %q: %w", id, err)
		}
		roleOf[id] = info.Role
		visible[id] = info.Visible && (includeTransformers || info.Role != lineage.RoleTransformer)
	}

	paths := make([]LogicalPath, 0, len(raw.Paths))
	for _, p := range raw.Paths {
		elided := elidePassthrough(p, registry)
		paths = append(paths, foldHops(elided))
	}

	nodes := make([]NodeSummary, 0, len(raw.Nodes))
	for id, n := range raw.Nodes {
		if !visible[id] {
			continue
		}
		nodes = append(nodes, NodeSummary{ID: id, Type: n.Type, Properties: n.Properties})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]EdgeSummary, 0, len(raw.Edges))
	for _, e := range raw.Edges {
		srcInfo, err := registry.NodeRole(e.SourceType)
		if err != nil {
			return nil, fmt.Errorf("collapsing edge %q: %w", e.ID(), err)
		}
		dstInfo, err := registry.NodeRole(e.DestinationType)
		if err != nil {
			return nil, fmt.Errorf("collapsing edge %q: %w", e.ID(), err)
		}
		srcVisible := srcInfo.Visible && (includeTransformers || srcInfo.Role != lineage.RoleTransformer)
		dstVisible := dstInfo.Visible && (includeTransformers || dstInfo.Role != lineage.RoleTransformer)
		if !srcVisible || !dstVisible {
			continue
		}
		edges = append(edges, EdgeSummary{
			ID:              e.ID(),
			Name:            e.Name,
			Source:          e.Source,
			Destination:     e.Destination,
			SourceType:      e.SourceType,
			DestinationType: e.DestinationType,
			SubType:         e.SubType,
			Direction:       e.Direction,
			Properties:      e.Properties,
		})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	return &Result{
		StartNode: NodeSummary{ID: raw.StartNode.ID, Type: raw.StartNode.Type, Properties: raw.StartNode.Properties},
		Nodes:     nodes,
		Edges:     edges,
		Paths:     paths,
		Metadata:  raw.Metadata,
	}, nil
}

// elidePassthrough removes structural (visible=false) nodes from a raw
// path's interior, merging the two edges flanking each one into a single
// direct step. A passthrough node that terminates the path (no following
// step within this particular path record) cannot be merged further and
// is left as the path's dangling endpoint; a longer path record covering
// the same route will carry the merged version.
func elidePassthrough(path traversal.PathRecord, registry *taxonomy.Registry) traversal.PathRecord {
	out := make(traversal.PathRecord, 0, len(path))
	for _, step := range path {
		out = append(out, step)
		for len(out) >= 2 {
			mid := out[len(out)-2]
			info, err := registry.NodeRole(mid.ToType)
			if err != nil || info.Visible {
				break
			}
			if out[len(out)-1].From != mid.To {
				break
			}
			last := out[len(out)-1]
			merged := traversal.RawStep{
				Axis:      mid.Axis,
				Direction: mid.Direction,
				From:      mid.From,
				To:        last.To,
				FromType:  mid.FromType,
				ToType:    last.ToType,
				EdgeName:  mid.EdgeName + "," + last.EdgeName,
			}
			out = append(out[:len(out)-2], merged)
		}
	}
	return out
}

// foldHops folds consecutive same-hop-group X-axis edge pairs into single
// logical steps and leaves Y/Z steps and unpaired X edges untouched.
func foldHops(path traversal.PathRecord) LogicalPath {
	logical := make(LogicalPath, 0, len(path))
	i := 0
	for i < len(path) {
		step := path[i]
		if step.Axis != lineage.AxisX {
			logical = append(logical, LogicalStep{
				Axis:      step.Axis,
				Direction: step.Direction,
				From:      step.From,
				To:        step.To,
				EdgeNames: []string{step.EdgeName},
			})
			i++
			continue
		}

		if i+1 < len(path) {
			next := path[i+1]
			if next.Axis == lineage.AxisX && next.HopGroup != "" && next.HopGroup == step.HopGroup && next.From == step.To {
				logical = append(logical, LogicalStep{
					Axis:      lineage.AxisX,
					Direction: step.Direction,
					From:      step.From,
					To:        next.To,
					Via:       step.To,
					ViaType:   step.ToType,
					EdgeNames: []string{step.EdgeName, next.EdgeName},
					HopGroup:  step.HopGroup,
				})
				i += 2
				continue
			}
		}

		// Unpaired X edge: emit as an unclosed half-hop, resource -> transformer.
		logical = append(logical, LogicalStep{
			Axis:      lineage.AxisX,
			Direction: step.Direction,
			From:      step.From,
			To:        "",
			Via:       step.To,
			ViaType:   step.ToType,
			EdgeNames: []string{step.EdgeName},
			HopGroup:  step.HopGroup,
		})
		i++
	}
	return logical
}
