// Package api wraps the traversal engine in the one HTTP surface the
// specification names: POST /api/lineage/traverse plus the supplemental
// GET /api/lineage/one-hop. Routing and serialization live here (there is
// no authentication);
// none of it belongs in internal/traversal or internal/collapse.
package api

// TraverseRequest is the wire shape of a traversal request.
type TraverseRequest struct {
	StartNodeID         string   `json:"start_node_id"`
	Axes                []string `json:"axes"`
	XDirection          string   `json:"x_direction,omitempty"`
	YDirection          string   `json:"y_direction,omitempty"`
	MaxZHops            int      `json:"max_z_hops"`
	MaxDepth            *int     `json:"max_depth,omitempty"`
	IncludeTransformers bool     `json:"include_transformers"`
}

// NodeSummaryDTO is one node in a response.
type NodeSummaryDTO struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// StartNodeDTO is the response's start_node field.
type StartNodeDTO struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// EdgeSummaryDTO is one edge in a response.
type EdgeSummaryDTO struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Source          string         `json:"source"`
	Destination     string         `json:"destination"`
	SourceType      string         `json:"source_type"`
	DestinationType string         `json:"destination_type"`
	SubType         string         `json:"sub_type,omitempty"`
	Direction       string         `json:"direction"`
	Properties      map[string]any `json:"properties,omitempty"`
}

// LogicalStepDTO is one entry in a response path.
type LogicalStepDTO struct {
	Axis      string   `json:"axis"`
	Direction string   `json:"direction,omitempty"`
	From      string   `json:"from"`
	To        *string  `json:"to"`
	Via       string   `json:"via,omitempty"`
	EdgeNames []string `json:"edge_names"`
	HopGroup  string   `json:"hop_group,omitempty"`
}

// TraversalMetadataDTO mirrors traversal.Metadata on the wire.
type TraversalMetadataDTO struct {
	ZHopsTaken        int `json:"z_hops_taken"`
	TotalNodesVisited int `json:"total_nodes_visited"`
	BlockedZOfZPaths  int `json:"blocked_z_of_z_paths"`
}

// TraverseResponse is the wire shape of a traversal response.
type TraverseResponse struct {
	StartNode         StartNodeDTO         `json:"start_node"`
	Nodes             []NodeSummaryDTO     `json:"nodes"`
	Edges             []EdgeSummaryDTO     `json:"edges"`
	Paths             [][]LogicalStepDTO   `json:"paths"`
	TraversalMetadata TraversalMetadataDTO `json:"traversal_metadata"`
}

// NeighborDTO is one neighbor entry in a one-hop response.
type NeighborDTO struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	EdgeName string `json:"edge_name"`
	SubType  string `json:"sub_type,omitempty"`
}

// OneHopResponse is the wire shape of a one-hop response.
type OneHopResponse struct {
	Node StartNodeDTO `json:"node"`

	XAxis struct {
		Upstream   []NeighborDTO `json:"upstream"`
		Downstream []NeighborDTO `json:"downstream"`
	} `json:"x_axis"`

	YAxis struct {
		Up   []NeighborDTO `json:"up"`
		Down []NeighborDTO `json:"down"`
	} `json:"y_axis"`

	ZAxis []NeighborDTO `json:"z_axis"`
}

// RawStepDTO is one traversed edge in a raw (pre-collapse) response path.
type RawStepDTO struct {
	Axis      string `json:"axis"`
	Direction string `json:"direction,omitempty"`
	From      string `json:"from"`
	To        string `json:"to"`
	FromType  string `json:"from_type"`
	ToType    string `json:"to_type"`
	EdgeName  string `json:"edge_name"`
	SubType   string `json:"sub_type,omitempty"`
	HopGroup  string `json:"hop_group,omitempty"`
	RoleInHop string `json:"role_in_hop,omitempty"`
}

// RawTraverseResponse is the wire shape of a traversal response when
// ?raw=true is requested: the full pre-collapse subgraph and per-edge
// paths, with no passthrough elision or hop folding applied.
type RawTraverseResponse struct {
	StartNode         StartNodeDTO         `json:"start_node"`
	Nodes             []NodeSummaryDTO     `json:"nodes"`
	Edges             []EdgeSummaryDTO     `json:"edges"`
	Paths             [][]RawStepDTO       `json:"paths"`
	TraversalMetadata TraversalMetadataDTO `json:"traversal_metadata"`
}

// ErrorResponse is the wire shape of every non-2xx response.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
