// Package taxonomy loads and indexes the edge-classification configuration
// that the traversal engine consults for every candidate edge.
//
// The Registry is the single source of truth for how a stored edge maps to
// an axis (X/Y/Z) and, within that axis, how it should be interpreted
// directionally. It is constructed once at startup and is read-only
// thereafter.
package taxonomy

import "github.com/lineagehq/lineage-graph/internal/lineage"

// HopRole distinguishes the two edges that make up one X-axis logical step.
type HopRole string

const (
	RoleInputToTransformer   HopRole = "input_to_transformer"
	RoleOutputFromTransformer HopRole = "output_from_transformer"
)

// SemanticUp describes, for a Y-axis edge, whether traversing the stored
// arrow moves up the containment hierarchy or down it.
type SemanticUp string

const (
	SemanticForward SemanticUp = "forward"
	SemanticReverse SemanticUp = "reverse"
)

// NodeTypeInfo is the taxonomy's metadata about one node type.
type NodeTypeInfo struct {
	Name    string
	Role    lineage.NodeRole
	Visible bool
}

// EdgeClassification is the result of classifying one
// (edge_name, source_type, destination_type, sub_type?) tuple.
type EdgeClassification struct {
	EdgeName        string
	SourceType      string
	DestinationType string
	SourceSubType   string // "" means wildcard
	DestSubType     string // "" means wildcard

	Axis Axis

	// X-axis fields.
	RoleInHop HopRole
	HopGroup  string

	// Y-axis fields.
	SemanticUp SemanticUp
}

// Axis re-exports lineage.Axis so callers of this package don't need to
// import internal/lineage just to name X/Y/Z.
type Axis = lineage.Axis

const (
	AxisX = lineage.AxisX
	AxisY = lineage.AxisY
	AxisZ = lineage.AxisZ
)
