package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehq/lineage-graph/internal/lineage"
)

func TestMemoryAdapter_NodeRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMemoryAdapter()
	m.AddNode(lineage.Node{ID: "ds-001", Type: "dataset", Properties: map[string]any{"name": "raw_transactions"}})

	n, ok, err := m.Node(context.Background(), "ds-001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dataset", n.Type)
	assert.Equal(t, 1, m.NodeCount())

	_, ok, err = m.Node(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryAdapter_NeighborsReportsDirectionAndOtherEndpoint(t *testing.T) {
	t.Parallel()

	m := NewMemoryAdapter()
	m.AddNode(lineage.Node{ID: "ds-002", Type: "dataset"})
	m.AddNode(lineage.Node{ID: "job-001", Type: "etl_job"})
	m.AddEdge(lineage.Edge{
		Name: "PRODUCED_BY", Source: "ds-002", Destination: "job-001",
		SourceType: "dataset", DestinationType: "etl_job",
	})

	fromSource, err := m.Neighbors(context.Background(), "ds-002")
	require.NoError(t, err)
	require.Len(t, fromSource, 1)
	assert.Equal(t, lineage.DirectionOutgoing, fromSource[0].Direction)
	assert.Equal(t, "job-001", fromSource[0].OtherNode)
	assert.Equal(t, "etl_job", fromSource[0].OtherNodeType)

	fromDest, err := m.Neighbors(context.Background(), "job-001")
	require.NoError(t, err)
	require.Len(t, fromDest, 1)
	assert.Equal(t, lineage.DirectionIncoming, fromDest[0].Direction)
	assert.Equal(t, "ds-002", fromDest[0].OtherNode)
	assert.Equal(t, "dataset", fromDest[0].OtherNodeType)

	assert.Equal(t, 1, m.EdgeCount())
}

func TestMemoryAdapter_NeighborsOfUnknownNodeIsEmpty(t *testing.T) {
	t.Parallel()

	m := NewMemoryAdapter()
	edges, err := m.Neighbors(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, edges)
}
