// Package mcp provides the MCP (Model Context Protocol) server exposing
// lineage traversal over stdio JSON-RPC.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lineagehq/lineage-graph/internal/collapse"
	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
	"github.com/lineagehq/lineage-graph/internal/traversal"
)

// Counter reports the size of the backing graph, for the overview resource.
type Counter interface {
	NodeCount() int
	EdgeCount() int
}

// Server represents the MCP server.
type Server struct {
	engine   *traversal.Engine
	registry *taxonomy.Registry
	counter  Counter
	server   *mcp.Server
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server over a traversal engine and its
// taxonomy registry.
func NewServer(engine *traversal.Engine, registry *taxonomy.Registry, counter Counter) *Server {
	s := &Server{
		engine:   engine,
		registry: registry,
		counter:  counter,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "lineage-graph",
		Version: "0.1.0",
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "lineage_traverse",
			Description: "Run a bounded, axis-filtered traversal from a start node and return the collapsed lineage subgraph.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"start_node_id": {Type: "string", Description: "ID of the node to start from"},
					"axes": {
						Type:        "array",
						Items:       &jsonschema.Schema{Type: "string", Enum: []any{"x", "y", "z"}},
						Description: "Which axes to follow: x (derivation), y (hierarchy), z (association)",
					},
					"x_direction":          {Type: "string", Description: "upstream, downstream, or both (default both)"},
					"y_direction":          {Type: "string", Description: "up, down, or both (default both)"},
					"max_z_hops":           {Type: "integer", Description: "Max association hops per path (0-4)"},
					"max_depth":            {Type: "integer", Description: "Max edges per path"},
					"include_transformers": {Type: "boolean", Description: "Include transformer nodes in the response's node list"},
					"raw":                  {Type: "boolean", Description: "Return the pre-collapse subgraph instead of the folded logical paths"},
				},
				Required: []string{"start_node_id", "axes"},
			},
		},
		{
			Name:        "lineage_one_hop",
			Description: "Return a node's immediate neighbors, classified by axis and normalized direction, without running a full traversal.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"node_id": {Type: "string", Description: "ID of the node to expand"},
				},
				Required: []string{"node_id"},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "lineage://overview",
			Name:        "Graph Overview",
			Description: "High-level statistics about the loaded lineage graph",
			MimeType:    "text/plain",
		},
		{
			URI:         "lineage://schema",
			Name:        "Taxonomy Schema",
			Description: "How the taxonomy classifies edges and node types; does not list the loaded taxonomy's own node types or edge rules",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "lineage_traverse":
		return handleTraverse(ctx, s.engine, s.registry, args)
	case "lineage_one_hop":
		nodeID, _ := args["node_id"].(string)
		return handleOneHop(ctx, s.engine, nodeID)
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "lineage://overview":
		return getOverview(s.counter), nil
	case "lineage://schema":
		return getSchema(s.registry), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "lineage-graph",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		_ = json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

// Tool handlers

func handleTraverse(ctx context.Context, engine *traversal.Engine, registry *taxonomy.Registry, args map[string]any) (string, error) {
	startNodeID, _ := args["start_node_id"].(string)

	var axes []lineage.Axis
	if raw, ok := args["axes"].([]any); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				axes = append(axes, lineage.Axis(s))
			}
		}
	}

	req := traversal.Request{
		StartNodeID:         startNodeID,
		Axes:                axes,
		XDirection:          traversal.XDirection(stringArg(args, "x_direction")),
		YDirection:          traversal.YDirection(stringArg(args, "y_direction")),
		MaxZHops:            intArg(args, "max_z_hops"),
		IncludeTransformers: boolArg(args, "include_transformers"),
	}
	if d, ok := args["max_depth"].(float64); ok {
		depth := int(d)
		req.MaxDepth = &depth
	}

	rawResult, err := engine.Traverse(ctx, req)
	if err != nil {
		return "", err
	}

	if boolArg(args, "raw") {
		return formatRawTraversal(rawResult), nil
	}

	collapsed, err := collapse.Collapse(rawResult, registry, req.IncludeTransformers)
	if err != nil {
		return "", err
	}

	return formatTraversal(collapsed), nil
}

func handleOneHop(ctx context.Context, engine *traversal.Engine, nodeID string) (string, error) {
	if nodeID == "" {
		return "No node_id provided", nil
	}

	result, err := engine.OneHop(ctx, nodeID)
	if err != nil {
		return "", err
	}

	return formatOneHop(result), nil
}

func formatTraversal(result *collapse.Result) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Lineage traversal from %s\n\n", result.StartNode.ID))
	sb.WriteString(fmt.Sprintf("Visited %d nodes across %d paths (%d z-of-z paths blocked).\n\n",
		result.Metadata.TotalNodesVisited, len(result.Paths), result.Metadata.BlockedZOfZPaths))

	for i, path := range result.Paths {
		sb.WriteString(fmt.Sprintf("%d. ", i+1))
		for j, step := range path {
			if j > 0 {
				sb.WriteString(" -> ")
			}
			to := step.To
			if to == "" {
				to = "(" + step.Via + ")"
			}
			sb.WriteString(fmt.Sprintf("%s --[%s/%s]--> %s", step.From, step.Axis, step.Direction, to))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatRawTraversal(result *traversal.RawResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Raw lineage traversal from %s\n\n", result.StartNode.ID))
	sb.WriteString(fmt.Sprintf("%d nodes, %d edges, %d paths (%d z-of-z paths blocked).\n\n",
		len(result.Nodes), len(result.Edges), len(result.Paths), result.Metadata.BlockedZOfZPaths))

	for i, path := range result.Paths {
		sb.WriteString(fmt.Sprintf("%d. ", i+1))
		for j, step := range path {
			if j > 0 {
				sb.WriteString(" -> ")
			}
			sb.WriteString(fmt.Sprintf("%s --[%s/%s/%s]--> %s", step.From, step.Axis, step.Direction, step.EdgeName, step.To))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatOneHop(result *traversal.OneHopResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Neighbors of %s\n\n", result.Node.ID))

	writeGroup := func(label string, neighbors []traversal.NeighborSummary) {
		if len(neighbors) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("### %s (%d)\n", label, len(neighbors)))
		for _, n := range neighbors {
			sb.WriteString(fmt.Sprintf("- %s (%s) via %s\n", n.Node.ID, n.Node.Type, n.EdgeName))
		}
		sb.WriteString("\n")
	}

	writeGroup("X upstream", result.XUpstream)
	writeGroup("X downstream", result.XDownstream)
	writeGroup("Y up", result.YUp)
	writeGroup("Y down", result.YDown)
	writeGroup("Z associations", result.Z)

	return sb.String()
}

// Resource handlers

func getOverview(counter Counter) string {
	var sb strings.Builder
	sb.WriteString("# Lineage Graph Overview\n\n")
	sb.WriteString(fmt.Sprintf("**Nodes:** %d\n", counter.NodeCount()))
	sb.WriteString(fmt.Sprintf("**Edges:** %d\n", counter.EdgeCount()))
	return sb.String()
}

func getSchema(registry *taxonomy.Registry) string {
	var sb strings.Builder
	sb.WriteString("# Taxonomy Schema\n\n")
	sb.WriteString("The loaded edge_taxonomy.yaml classifies every edge by axis (x/y/z),\n")
	sb.WriteString("assigns each node type a role (resource/transformer/structural/container/qualifier),\n")
	sb.WriteString("and groups paired X-axis edges under a hop_group for collapsing.\n")
	_ = registry
	return sb.String()
}

// Helper functions

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string) int {
	if f, ok := args[key].(float64); ok {
		return int(f)
	}
	return 0
}

func boolArg(args map[string]any, key string) bool {
	b, _ := args[key].(bool)
	return b
}
