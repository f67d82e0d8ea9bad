package traversal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
)

const testTaxonomy = `
node_types:
  dataset: {role: resource}
  etl_job: {role: transformer}
  agent_system: {role: resource}
  agent_system_version: {role: structural, visible: false}
  agent_version: {role: resource}
  use_case: {role: resource}
  workspace: {role: resource}

hop_groups:
  ingest_hop: {}
  feature_hop: {}

edge_rules:
  - edge_name: CONSUMES
    source_type: etl_job
    destination_type: dataset
    axis: x
    role_in_hop: input_to_transformer
    hop_group: ingest_hop
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: ingest_hop
  - edge_name: FEATURE_CONSUMES
    source_type: etl_job
    destination_type: dataset
    axis: x
    role_in_hop: input_to_transformer
    hop_group: feature_hop
  - edge_name: FEATURE_PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: feature_hop
  - edge_name: CONTAINS_VERSION
    source_type: agent_system
    destination_type: agent_system_version
    axis: y
    semantic_up: reverse
  - edge_name: CONTAINS_MEMBER
    source_type: agent_system_version
    destination_type: agent_version
    axis: y
    semantic_up: reverse
  - edge_name: ASSOCIATED_WITH
    source_type: dataset
    destination_type: use_case
    axis: z
  - edge_name: ASSOCIATED_WITH
    source_type: use_case
    destination_type: workspace
    axis: z
`

// fakeAdapter is a minimal in-memory Adapter for engine tests, grounded in
// a small slice of the fraud-detection seed graph: raw_transactions is
// ingested into curated_transactions, which feeds fraud_feature_set; a
// fraud_review_system contains one version with one member agent; and
// curated_transactions is associated with a use case that is itself
// associated with a workspace, two Z hops deep.
type fakeAdapter struct {
	nodes     map[string]lineage.Node
	neighbors map[string][]lineage.Edge
}

func (a *fakeAdapter) Node(_ context.Context, id string) (lineage.Node, bool, error) {
	n, ok := a.nodes[id]
	return n, ok, nil
}

func (a *fakeAdapter) Neighbors(_ context.Context, id string) ([]lineage.Edge, error) {
	return a.neighbors[id], nil
}

func newFakeAdapter() *fakeAdapter {
	a := &fakeAdapter{
		nodes:     map[string]lineage.Node{},
		neighbors: map[string][]lineage.Edge{},
	}
	add := func(id, typ string) {
		a.nodes[id] = lineage.Node{ID: id, Type: typ, Properties: map[string]any{"name": id}}
	}
	add("ds-001", "dataset")
	add("ds-002", "dataset")
	add("ds-003", "dataset")
	add("job-001", "etl_job")
	add("job-002", "etl_job")
	add("asys-001", "agent_system")
	add("asysv-001", "agent_system_version")
	add("agv-001", "agent_version")
	add("uc-001", "use_case")
	add("ws-001", "workspace")

	link := func(source, sourceType, edgeName, dest, destType string) {
		a.neighbors[source] = append(a.neighbors[source], lineage.Edge{
			Name: edgeName, Source: source, Destination: dest,
			SourceType: sourceType, DestinationType: destType,
			OtherNode: dest, OtherNodeType: destType, Direction: lineage.DirectionOutgoing,
		})
		a.neighbors[dest] = append(a.neighbors[dest], lineage.Edge{
			Name: edgeName, Source: source, Destination: dest,
			SourceType: sourceType, DestinationType: destType,
			OtherNode: source, OtherNodeType: sourceType, Direction: lineage.DirectionIncoming,
		})
	}

	link("job-001", "etl_job", "CONSUMES", "ds-001", "dataset")
	link("ds-002", "dataset", "PRODUCED_BY", "job-001", "etl_job")
	link("job-002", "etl_job", "FEATURE_CONSUMES", "ds-002", "dataset")
	link("ds-003", "dataset", "FEATURE_PRODUCED_BY", "job-002", "etl_job")
	link("asys-001", "agent_system", "CONTAINS_VERSION", "asysv-001", "agent_system_version")
	link("asysv-001", "agent_system_version", "CONTAINS_MEMBER", "agv-001", "agent_version")
	link("ds-002", "dataset", "ASSOCIATED_WITH", "uc-001", "use_case")
	link("uc-001", "use_case", "ASSOCIATED_WITH", "ws-001", "workspace")

	return a
}

func newTestEngine(t *testing.T) (*Engine, *fakeAdapter) {
	t.Helper()
	reg, err := taxonomy.LoadBytes([]byte(testTaxonomy))
	require.NoError(t, err)
	adapter := newFakeAdapter()
	return New(adapter, reg), adapter
}

func TestTraverse_XUpstream(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "ds-002",
		Axes:        []lineage.Axis{lineage.AxisX},
		XDirection:  XUpstream,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, "job-001")
	assert.Contains(t, result.Nodes, "ds-001")
	assert.NotContains(t, result.Nodes, "ds-003")

	var sawUpstreamToRaw bool
	for _, p := range result.Paths {
		for _, step := range p {
			if step.To == "ds-001" {
				assert.Equal(t, "upstream", step.Direction)
				sawUpstreamToRaw = true
			}
		}
	}
	assert.True(t, sawUpstreamToRaw)
}

func TestTraverse_XDownstream(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "ds-002",
		Axes:        []lineage.Axis{lineage.AxisX},
		XDirection:  XDownstream,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, "job-002")
	assert.Contains(t, result.Nodes, "ds-003")
	assert.NotContains(t, result.Nodes, "ds-001")
}

func TestTraverse_YDown(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "asys-001",
		Axes:        []lineage.Axis{lineage.AxisY},
		YDirection:  YDown,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, "asysv-001")
	assert.Contains(t, result.Nodes, "agv-001")

	for _, p := range result.Paths {
		for _, step := range p {
			assert.Equal(t, "down", step.Direction)
		}
	}
}

func TestTraverse_YUp_FromVersionFindsParentNotMember(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	// An "up" query from asysv-001 follows CONTAINS_VERSION back to its
	// parent asys-001 and does not descend CONTAINS_MEMBER to agv-001.
	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "asysv-001",
		Axes:        []lineage.Axis{lineage.AxisY},
		YDirection:  YUp,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, "asys-001")
	assert.NotContains(t, result.Nodes, "agv-001")
}

func TestTraverse_ZCapBlocksZOfZ(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "ds-002",
		Axes:        []lineage.Axis{lineage.AxisX, lineage.AxisZ},
		XDirection:  XBoth,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, "uc-001")
	assert.NotContains(t, result.Nodes, "ws-001")
	assert.GreaterOrEqual(t, result.Metadata.BlockedZOfZPaths, 1)
}

func TestTraverse_ZOnlyMaxZHopsZero(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "ds-002",
		Axes:        []lineage.Axis{lineage.AxisZ},
		MaxZHops:    0,
	})
	require.NoError(t, err)

	assert.Len(t, result.Nodes, 1)
	assert.Contains(t, result.Nodes, "ds-002")
	assert.Empty(t, result.Paths)
}

func TestTraverse_MaxDepthZero(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	depth := 0
	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "ds-002",
		Axes:        []lineage.Axis{lineage.AxisX, lineage.AxisY, lineage.AxisZ},
		MaxDepth:    &depth,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	assert.Len(t, result.Nodes, 1)
	assert.Empty(t, result.Edges)
	assert.Empty(t, result.Paths)
}

func TestTraverse_StartNotFound(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	_, err := e.Traverse(context.Background(), Request{
		StartNodeID: "no-such-node",
		Axes:        []lineage.Axis{lineage.AxisX},
		MaxZHops:    1,
	})
	require.ErrorIs(t, err, ErrStartNotFound)
}

func TestTraverse_InvalidRequest(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	t.Run("EmptyAxes", func(t *testing.T) {
		t.Parallel()
		_, err := e.Traverse(context.Background(), Request{StartNodeID: "ds-002"})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("MaxZHopsExceedsCap", func(t *testing.T) {
		t.Parallel()
		_, err := e.Traverse(context.Background(), Request{
			StartNodeID: "ds-002",
			Axes:        []lineage.Axis{lineage.AxisZ},
			MaxZHops:    MaxZHopsCap + 1,
		})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("NegativeMaxDepth", func(t *testing.T) {
		t.Parallel()
		depth := -1
		_, err := e.Traverse(context.Background(), Request{
			StartNodeID: "ds-002",
			Axes:        []lineage.Axis{lineage.AxisX},
			MaxDepth:    &depth,
		})
		require.ErrorIs(t, err, ErrInvalidRequest)
	})
}

func TestTraverse_CycleGuardNoRepeatedNodeInPath(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.Traverse(context.Background(), Request{
		StartNodeID: "ds-002",
		Axes:        []lineage.Axis{lineage.AxisX},
		XDirection:  XBoth,
		MaxZHops:    1,
	})
	require.NoError(t, err)

	for _, p := range result.Paths {
		seen := map[string]bool{"ds-002": true}
		for _, step := range p {
			assert.False(t, seen[step.To], "node %s repeated within a path", step.To)
			seen[step.To] = true
		}
	}
}

func TestOneHop(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	result, err := e.OneHop(context.Background(), "ds-002")
	require.NoError(t, err)

	require.Len(t, result.XUpstream, 1)
	assert.Equal(t, "job-001", result.XUpstream[0].Node.ID)
	require.Len(t, result.Z, 1)
	assert.Equal(t, "uc-001", result.Z[0].Node.ID)
	assert.Empty(t, result.YUp)
	assert.Empty(t, result.YDown)
}
