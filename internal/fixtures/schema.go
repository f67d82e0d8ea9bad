// Package fixtures loads the declarative YAML documents that seed a
// lineage graph and its taxonomy: one or more node/edge fragment files
// plus a single edge_taxonomy.yaml, assembled from a directory tree the
// way the rest of the corpus loads its inputs — walked with a gitignore
// matcher, watched with fsnotify for hot reload.
package fixtures

// NodeFixture is one node in a seed-graph fragment file.
type NodeFixture struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type"`
	Name       string         `yaml:"name,omitempty"`
	SubType    string         `yaml:"sub_type,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// EdgeFixture is one edge in a seed-graph fragment file.
type EdgeFixture struct {
	EdgeName        string         `yaml:"edge_name"`
	Source          string         `yaml:"source"`
	Destination     string         `yaml:"destination"`
	SourceType      string         `yaml:"source_type"`
	DestinationType string         `yaml:"destination_type"`
	SubType         string         `yaml:"sub_type,omitempty"`
	Properties      map[string]any `yaml:"properties,omitempty"`
}

// GraphFixture is the shape of one seed-graph fragment file. A fixture
// directory may hold several of these; Load merges them all into one
// graph.
type GraphFixture struct {
	Nodes []NodeFixture `yaml:"nodes"`
	Edges []EdgeFixture `yaml:"edges"`
}
