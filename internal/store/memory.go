// Package store provides adjacency adapters that satisfy
// traversal.Adapter: an in-memory map-backed adapter for tests and small
// graphs, and a BadgerDB-backed adapter for anything that should survive
// a process restart.
package store

import (
	"context"
	"sync"

	"github.com/lineagehq/lineage-graph/internal/lineage"
)

// MemoryAdapter is an in-memory, map-backed lineage graph with secondary
// indexes for O(1) node lookup and O(result) adjacency queries. It is
// safe for concurrent use.
type MemoryAdapter struct {
	mu sync.RWMutex

	nodes map[string]lineage.Node

	// outgoing[id] holds edges where id is the stored source;
	// incoming[id] holds edges where id is the stored destination.
	outgoing map[string][]lineage.Edge
	incoming map[string][]lineage.Edge
}

// NewMemoryAdapter creates an empty MemoryAdapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		nodes:    make(map[string]lineage.Node),
		outgoing: make(map[string][]lineage.Edge),
		incoming: make(map[string][]lineage.Edge),
	}
}

// AddNode inserts or replaces a node.
func (m *MemoryAdapter) AddNode(n lineage.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[n.ID] = n
}

// AddEdge inserts a directed edge, indexing it under both endpoints. The
// Source/Destination/SourceType/DestinationType fields are the edge's
// canonical stored shape; OtherNode/OtherNodeType/Direction are computed
// per-endpoint at Neighbors time, not stored here.
func (m *MemoryAdapter) AddEdge(e lineage.Edge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outgoing[e.Source] = append(m.outgoing[e.Source], e)
	m.incoming[e.Destination] = append(m.incoming[e.Destination], e)
}

// NodeCount returns the number of nodes.
func (m *MemoryAdapter) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// EdgeCount returns the number of distinct edges.
func (m *MemoryAdapter) EdgeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	for _, edges := range m.outgoing {
		for _, e := range edges {
			seen[e.ID()] = true
		}
	}
	return len(seen)
}

// NodeIDs returns every node ID currently stored, in no particular
// order. Used by callers that need to sweep the whole graph, such as
// the data-dependency validator.
func (m *MemoryAdapter) NodeIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Node implements traversal.Adapter.
func (m *MemoryAdapter) Node(_ context.Context, id string) (lineage.Node, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return n, ok, nil
}

// Neighbors implements traversal.Adapter.
func (m *MemoryAdapter) Neighbors(_ context.Context, id string) ([]lineage.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]lineage.Edge, 0, len(m.outgoing[id])+len(m.incoming[id]))
	for _, e := range m.outgoing[id] {
		edge := e
		edge.OtherNode = e.Destination
		edge.OtherNodeType = e.DestinationType
		edge.Direction = lineage.DirectionOutgoing
		out = append(out, edge)
	}
	for _, e := range m.incoming[id] {
		edge := e
		edge.OtherNode = e.Source
		edge.OtherNodeType = e.SourceType
		edge.Direction = lineage.DirectionIncoming
		out = append(out, edge)
	}
	return out, nil
}
