package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineagehq/lineage-graph/internal/lineage"
)

const validConfig = `
node_types:
  dataset:
    role: resource
  etl_job:
    role: transformer
  agent_system:
    role: resource
  agent_system_version:
    role: structural
    visible: false
  workspace:
    role: container

hop_groups:
  etl_hop: {}

edge_rules:
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: etl_hop
  - edge_name: CONSUMES
    source_type: etl_job
    destination_type: dataset
    axis: x
    role_in_hop: input_to_transformer
    hop_group: etl_hop
  - edge_name: CONTAINS
    source_type: workspace
    destination_type: dataset
    axis: y
    semantic_up: reverse
  - edge_name: VERSION_OF
    source_type: agent_system_version
    destination_type: agent_system
    axis: z
  - edge_name: DERIVED_FROM
    source_type: dataset
    destination_type: dataset
    source_sub_type: report
    axis: z
`

func TestLoadBytes_Valid(t *testing.T) {
	t.Parallel()

	reg, err := LoadBytes([]byte(validConfig))
	require.NoError(t, err)
	require.NotNil(t, reg)

	info, err := reg.NodeRole("etl_job")
	require.NoError(t, err)
	assert.Equal(t, lineage.RoleTransformer, info.Role)
	assert.True(t, info.Visible)

	info, err = reg.NodeRole("agent_system_version")
	require.NoError(t, err)
	assert.False(t, info.Visible)
}

func TestLoadBytes_InvalidAxis(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte(`
node_types:
  dataset:
    role: resource
  etl_job:
    role: transformer
edge_rules:
  - edge_name: WEIRD
    source_type: dataset
    destination_type: etl_job
    axis: w
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid axis")
}

func TestLoadBytes_UnknownNodeTypeInRule(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte(`
node_types:
  dataset:
    role: resource
edge_rules:
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: etl_hop
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown destination node type")
}

func TestLoadBytes_HopGroupReferencedOnce(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte(`
node_types:
  dataset:
    role: resource
  etl_job:
    role: transformer
edge_rules:
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: lonely_hop
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `hop group "lonely_hop"`)
	assert.Contains(t, err.Error(), "at least 2")
}

func TestLoadBytes_InvalidRole(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte(`
node_types:
  dataset:
    role: not_a_role
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")
}

func TestLoadBytes_MissingRoleInHop(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte(`
node_types:
  dataset:
    role: resource
  etl_job:
    role: transformer
edge_rules:
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role_in_hop")
}

func TestLoadBytes_DuplicateRule(t *testing.T) {
	t.Parallel()

	_, err := LoadBytes([]byte(`
node_types:
  dataset:
    role: resource
  etl_job:
    role: transformer
edge_rules:
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: a
  - edge_name: PRODUCED_BY
    source_type: dataset
    destination_type: etl_job
    axis: x
    role_in_hop: output_from_transformer
    hop_group: a
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rule")
}

func TestRegistry_Classify(t *testing.T) {
	t.Parallel()

	reg, err := LoadBytes([]byte(validConfig))
	require.NoError(t, err)

	t.Run("WildcardMatch", func(t *testing.T) {
		t.Parallel()
		ec, ok := reg.Classify("PRODUCED_BY", "dataset", "etl_job", "", "")
		require.True(t, ok)
		assert.Equal(t, AxisX, ec.Axis)
		assert.Equal(t, RoleOutputFromTransformer, ec.RoleInHop)
		assert.Equal(t, "etl_hop", ec.HopGroup)
	})

	t.Run("SpecificSubTypeRuleMatches", func(t *testing.T) {
		t.Parallel()
		ec, ok := reg.Classify("DERIVED_FROM", "dataset", "dataset", "report", "")
		require.True(t, ok)
		assert.Equal(t, AxisZ, ec.Axis)
		assert.Equal(t, "report", ec.SourceSubType)
	})

	t.Run("NoWildcardFallbackWhenOnlySpecificRuleExists", func(t *testing.T) {
		t.Parallel()
		_, ok := reg.Classify("DERIVED_FROM", "dataset", "dataset", "", "")
		assert.False(t, ok)
	})

	t.Run("UnknownEdgeName", func(t *testing.T) {
		t.Parallel()
		_, ok := reg.Classify("NO_SUCH_EDGE", "dataset", "etl_job", "", "")
		assert.False(t, ok)
	})

	t.Run("UnknownEndpointPair", func(t *testing.T) {
		t.Parallel()
		_, ok := reg.Classify("PRODUCED_BY", "workspace", "etl_job", "", "")
		assert.False(t, ok)
	})
}

func TestRegistry_NodeRole_Unknown(t *testing.T) {
	t.Parallel()

	reg, err := LoadBytes([]byte(validConfig))
	require.NoError(t, err)

	_, err = reg.NodeRole("no_such_type")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownNodeType))
}

func TestRegistry_HopGroup(t *testing.T) {
	t.Parallel()

	reg, err := LoadBytes([]byte(validConfig))
	require.NoError(t, err)

	assert.Equal(t, "etl_hop", reg.HopGroup("PRODUCED_BY", "dataset", "etl_job"))
	assert.Equal(t, "", reg.HopGroup("CONTAINS", "workspace", "dataset"))
	assert.Equal(t, "", reg.HopGroup("NO_SUCH_EDGE", "dataset", "etl_job"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/edge_taxonomy.yaml")
	require.Error(t, err)
}
