package taxonomy

// config is the raw shape of a taxonomy YAML document (edge_taxonomy.yaml
// in the source system). It is intentionally permissive: wildcard
// sub_types are represented by an empty string.
type config struct {
	NodeTypes map[string]nodeTypeConfig `yaml:"node_types"`
	HopGroups map[string]struct{}       `yaml:"hop_groups"`
	EdgeRules []edgeRuleConfig          `yaml:"edge_rules"`
}

type nodeTypeConfig struct {
	Role    string `yaml:"role"`
	Visible *bool  `yaml:"visible"`
}

type edgeRuleConfig struct {
	EdgeName        string `yaml:"edge_name"`
	SourceType      string `yaml:"source_type"`
	DestinationType string `yaml:"destination_type"`
	SourceSubType   string `yaml:"source_sub_type,omitempty"`
	DestSubType     string `yaml:"destination_sub_type,omitempty"`

	Axis string `yaml:"axis"`

	RoleInHop string `yaml:"role_in_hop,omitempty"`
	HopGroup  string `yaml:"hop_group,omitempty"`

	SemanticUp string `yaml:"semantic_up,omitempty"`
}
