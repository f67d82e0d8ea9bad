package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lineagehq/lineage-graph/internal/collapse"
	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
	"github.com/lineagehq/lineage-graph/internal/traversal"
)

// Handler serves the lineage HTTP surface over a fixed engine and
// registry. Swapping either (e.g. after a fixture reload) requires a new
// Handler; the zero value is not usable.
type Handler struct {
	Engine   *traversal.Engine
	Registry *taxonomy.Registry
	Log      *zap.Logger
}

// NewHandler builds a Handler. Its routes are served by the http.Handler
// that Routes returns.
func NewHandler(engine *traversal.Engine, registry *taxonomy.Registry, log *zap.Logger) *Handler {
	h := &Handler{Engine: engine, Registry: registry, Log: log}
	return h
}

// Routes returns an http.Handler serving every route this package owns.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/lineage/traverse", h.handleTraverse)
	mux.HandleFunc("GET /api/lineage/one-hop", h.handleOneHop)
	return mux
}

func (h *Handler) handleTraverse(w http.ResponseWriter, r *http.Request) {
	var req TraverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "malformed request body: "+err.Error())
		return
	}

	tReq := traversal.Request{
		StartNodeID:         req.StartNodeID,
		Axes:                toAxes(req.Axes),
		XDirection:          traversal.XDirection(req.XDirection),
		YDirection:          traversal.YDirection(req.YDirection),
		MaxZHops:            req.MaxZHops,
		MaxDepth:            req.MaxDepth,
		IncludeTransformers: req.IncludeTransformers,
	}

	started := time.Now()
	raw, err := h.Engine.Traverse(r.Context(), tReq)
	if err != nil {
		h.writeTraversalError(w, err)
		return
	}
	h.Log.Info("traverse",
		zap.String("start_node_id", req.StartNodeID),
		zap.Strings("axes", req.Axes),
		zap.Int("nodes", len(raw.Nodes)),
		zap.Int("paths", len(raw.Paths)),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("blocked_z_of_z_paths", raw.Metadata.BlockedZOfZPaths),
	)

	if r.URL.Query().Get("raw") == "true" {
		writeJSON(w, http.StatusOK, toRawTraverseResponse(raw))
		return
	}

	collapsed, err := collapse.Collapse(raw, h.Registry, req.IncludeTransformers)
	if err != nil {
		h.Log.Error("collapsing traversal result", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "AdapterError", "collapsing result: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toTraverseResponse(collapsed))
}

func (h *Handler) handleOneHop(w http.ResponseWriter, r *http.Request) {
	nodeID := r.URL.Query().Get("node_id")
	if nodeID == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "node_id query parameter is required")
		return
	}

	result, err := h.Engine.OneHop(r.Context(), nodeID)
	if err != nil {
		h.writeTraversalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOneHopResponse(result))
}

func (h *Handler) writeTraversalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, traversal.ErrStartNotFound):
		writeError(w, http.StatusNotFound, "StartNotFound", err.Error())
	case errors.Is(err, traversal.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case errors.Is(err, traversal.ErrCancelled):
		writeError(w, http.StatusRequestTimeout, "Cancelled", err.Error())
	case errors.Is(err, traversal.ErrAdapterError):
		h.Log.Error("adapter error serving request", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "AdapterError", err.Error())
	default:
		h.Log.Error("unclassified traversal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "AdapterError", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{Kind: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func toAxes(raw []string) []lineage.Axis {
	axes := make([]lineage.Axis, 0, len(raw))
	for _, a := range raw {
		axes = append(axes, lineage.Axis(a))
	}
	return axes
}

func toTraverseResponse(result *collapse.Result) TraverseResponse {
	resp := TraverseResponse{
		StartNode: StartNodeDTO{
			ID:   result.StartNode.ID,
			Type: result.StartNode.Type,
			Name: nameOf(result.StartNode.Properties),
		},
		TraversalMetadata: TraversalMetadataDTO{
			ZHopsTaken:        result.Metadata.ZHopsTaken,
			TotalNodesVisited: result.Metadata.TotalNodesVisited,
			BlockedZOfZPaths:  result.Metadata.BlockedZOfZPaths,
		},
	}

	for _, n := range result.Nodes {
		resp.Nodes = append(resp.Nodes, NodeSummaryDTO{ID: n.ID, Type: n.Type, Properties: n.Properties})
	}
	for _, e := range result.Edges {
		resp.Edges = append(resp.Edges, EdgeSummaryDTO{
			ID:              e.ID,
			Name:            e.Name,
			Source:          e.Source,
			Destination:     e.Destination,
			SourceType:      e.SourceType,
			DestinationType: e.DestinationType,
			SubType:         e.SubType,
			Direction:       string(e.Direction),
			Properties:      e.Properties,
		})
	}
	for _, p := range result.Paths {
		var steps []LogicalStepDTO
		for _, s := range p {
			var to *string
			if s.To != "" {
				to = &s.To
			}
			steps = append(steps, LogicalStepDTO{
				Axis:      string(s.Axis),
				Direction: s.Direction,
				From:      s.From,
				To:        to,
				Via:       s.Via,
				EdgeNames: s.EdgeNames,
				HopGroup:  s.HopGroup,
			})
		}
		resp.Paths = append(resp.Paths, steps)
	}

	return resp
}

func toRawTraverseResponse(raw *traversal.RawResult) RawTraverseResponse {
	resp := RawTraverseResponse{
		StartNode: StartNodeDTO{ID: raw.StartNode.ID, Type: raw.StartNode.Type, Name: raw.StartNode.Name()},
		TraversalMetadata: TraversalMetadataDTO{
			ZHopsTaken:        raw.Metadata.ZHopsTaken,
			TotalNodesVisited: raw.Metadata.TotalNodesVisited,
			BlockedZOfZPaths:  raw.Metadata.BlockedZOfZPaths,
		},
	}

	nodeIDs := make([]string, 0, len(raw.Nodes))
	for id := range raw.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		n := raw.Nodes[id]
		resp.Nodes = append(resp.Nodes, NodeSummaryDTO{ID: n.ID, Type: n.Type, Properties: n.Properties})
	}

	edgeIDs := make([]string, 0, len(raw.Edges))
	for id := range raw.Edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)
	for _, id := range edgeIDs {
		e := raw.Edges[id]
		resp.Edges = append(resp.Edges, EdgeSummaryDTO{
			ID:              e.ID(),
			Name:            e.Name,
			Source:          e.Source,
			Destination:     e.Destination,
			SourceType:      e.SourceType,
			DestinationType: e.DestinationType,
			SubType:         e.SubType,
			Direction:       string(e.Direction),
			Properties:      e.Properties,
		})
	}

	for _, path := range raw.Paths {
		var steps []RawStepDTO
		for _, s := range path {
			steps = append(steps, RawStepDTO{
				Axis:      string(s.Axis),
				Direction: s.Direction,
				From:      s.From,
				To:        s.To,
				FromType:  s.FromType,
				ToType:    s.ToType,
				EdgeName:  s.EdgeName,
				SubType:   s.SubType,
				HopGroup:  s.HopGroup,
				RoleInHop: s.RoleInHop,
			})
		}
		resp.Paths = append(resp.Paths, steps)
	}

	return resp
}

func toOneHopResponse(result *traversal.OneHopResult) OneHopResponse {
	resp := OneHopResponse{
		Node: StartNodeDTO{ID: result.Node.ID, Type: result.Node.Type, Name: result.Node.Name()},
	}
	resp.XAxis.Upstream = toNeighborDTOs(result.XUpstream)
	resp.XAxis.Downstream = toNeighborDTOs(result.XDownstream)
	resp.YAxis.Up = toNeighborDTOs(result.YUp)
	resp.YAxis.Down = toNeighborDTOs(result.YDown)
	resp.ZAxis = toNeighborDTOs(result.Z)
	return resp
}

func toNeighborDTOs(summaries []traversal.NeighborSummary) []NeighborDTO {
	out := make([]NeighborDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, NeighborDTO{ID: s.Node.ID, Type: s.Node.Type, EdgeName: s.EdgeName, SubType: s.SubType})
	}
	return out
}

func nameOf(props map[string]any) string {
	if v, ok := props["name"].(string); ok {
		return v
	}
	return ""
}
