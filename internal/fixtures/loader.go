package fixtures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/store"
	"github.com/lineagehq/lineage-graph/internal/taxonomy"
)

// Load walks dir for a taxonomy file and seed-graph fragments, and
// returns a ready-to-serve MemoryAdapter and Registry. It is the
// entrypoint the CLI's serve/traverse/validate/mcp commands share.
func Load(dir string) (*store.MemoryAdapter, *taxonomy.Registry, error) {
	walker, err := NewWalker(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("walking fixture directory: %w", err)
	}

	taxonomyPath := walker.TaxonomyPath()
	if taxonomyPath == "" {
		return nil, nil, fmt.Errorf("no %s found under %s", taxonomyFileName, dir)
	}
	registry, err := taxonomy.Load(taxonomyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading taxonomy: %w", err)
	}

	fragmentPaths, err := walker.GraphFragments()
	if err != nil {
		return nil, nil, fmt.Errorf("discovering fixture fragments: %w", err)
	}

	adapter := store.NewMemoryAdapter()
	for _, path := range fragmentPaths {
		if err := loadFragmentInto(adapter, path); err != nil {
			return nil, nil, fmt.Errorf("loading fixture %s: %w", path, err)
		}
	}

	return adapter, registry, nil
}

func loadFragmentInto(adapter *store.MemoryAdapter, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fragment GraphFixture
	if err := yaml.Unmarshal(data, &fragment); err != nil {
		return fmt.Errorf("parsing yaml: %w", err)
	}

	for _, n := range fragment.Nodes {
		props := n.Properties
		if props == nil {
			props = map[string]any{}
		}
		if n.Name != "" {
			props["name"] = n.Name
		}
		if n.SubType != "" {
			props["sub_type"] = n.SubType
		}
		adapter.AddNode(lineage.Node{ID: n.ID, Type: n.Type, Properties: props})
	}

	for _, e := range fragment.Edges {
		adapter.AddEdge(lineage.Edge{
			Name:            e.EdgeName,
			Source:          e.Source,
			Destination:     e.Destination,
			SourceType:      e.SourceType,
			DestinationType: e.DestinationType,
			SubType:         e.SubType,
			Properties:      e.Properties,
		})
	}

	return nil
}
