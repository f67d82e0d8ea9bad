// Package lineage provides the graph data model for the lineage engine.
//
// It defines the node and edge shapes that flow between the Adjacency
// Adapter, the Taxonomy Registry, and the Traversal Engine. The model is
// intentionally thin: nodes carry an opaque property bag and edges carry
// only what classification and traversal need.
package lineage

// Axis is the classification of an edge: derivation (X), hierarchy (Y), or
// association (Z).
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// NodeRole is the taxonomy-assigned role of a node type.
type NodeRole string

const (
	RoleResource    NodeRole = "resource"
	RoleTransformer NodeRole = "transformer"
	RoleStructural  NodeRole = "structural"
	RoleContainer   NodeRole = "container"
	RoleQualifier   NodeRole = "qualifier"
)

// Direction is the direction an edge was stored in, relative to the node
// the adjacency query was made for.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// Node is a single entity in the lineage graph: a dataset, an ETL job, a
// system version, an agent, a workspace, and so on.
type Node struct {
	// ID is the node's stable identifier.
	ID string

	// Type is the node's taxonomy type tag (e.g. "dataset", "etl_job").
	Type string

	// Properties is an opaque bag of metadata. Only "sub_type" is ever
	// semantically consulted by the engine or registry.
	Properties map[string]any
}

// SubType returns the node's sub_type property, or "" if absent.
func (n Node) SubType() string {
	if n.Properties == nil {
		return ""
	}
	if v, ok := n.Properties["sub_type"].(string); ok {
		return v
	}
	return ""
}

// Name returns the node's name property, or "" if absent.
func (n Node) Name() string {
	if n.Properties == nil {
		return ""
	}
	if v, ok := n.Properties["name"].(string); ok {
		return v
	}
	return ""
}

// Edge is a directed triple plus an optional sub-type qualifier and opaque
// context properties. Direction reflects the stored arrow as the Adapter
// observed it relative to the node it was queried for; it is not
// necessarily the semantic "forward" direction of the relationship.
type Edge struct {
	// Name is the taxonomy edge name (e.g. "PRODUCED_BY").
	Name string

	// Source and Destination are node IDs in the direction the edge is
	// stored, independent of which endpoint the Adapter was queried from.
	Source, Destination string

	// SourceType and DestinationType are the node types of the two
	// endpoints, stored direction.
	SourceType, DestinationType string

	// SubType is an optional qualifier consulted by sub-type-keyed
	// taxonomy rules.
	SubType string

	// OtherNode is the ID of the endpoint that is not the node the
	// Adapter was queried for.
	OtherNode string

	// OtherNodeType is the type of OtherNode.
	OtherNodeType string

	// Direction is "outgoing" if Source is the node that was queried,
	// "incoming" if Destination is.
	Direction Direction

	// Properties is an opaque context bag (confidence, role, etc.).
	Properties map[string]any
}

// ID returns a deterministic identity for deduplicating edges across
// paths, independent of which endpoint they were discovered from.
func (e Edge) ID() string {
	return e.Source + "|" + e.Name + "|" + e.Destination + "|" + e.SubType
}
