package fixtures

import (
	"context"
	"fmt"
	"strings"

	"github.com/lineagehq/lineage-graph/internal/lineage"
	"github.com/lineagehq/lineage-graph/internal/store"
)

// dataDependencyType is the transformer node type a column-level lineage
// edge pair hangs off: one *_PRODUCED_BY half from the input attribute,
// one *_CONSUMED_BY half to the output attribute.
const dataDependencyType = "data_dependency"

// isAttributeForEdge is the edge name an attribute node uses to declare
// which dataset it belongs to. Dataset membership is never read off a
// node property; it is always resolved by following this edge, matching
// the original system's IS_ATTRIBUTE_FOR relationship.
const isAttributeForEdge = "IS_ATTRIBUTE_FOR"

// CheckDataDependencies validates a bulk-load-time data quality
// constraint the seed graph is expected to satisfy: every data_dependency
// node's consumed and produced attribute must belong to two different
// datasets. A data_dependency linking two attributes of the same dataset
// is almost always a fixture authoring mistake (a same-table column copy
// isn't a cross-dataset dependency), so this is reported, not enforced —
// callers decide whether to treat it as fatal.
func CheckDataDependencies(ctx context.Context, adapter *store.MemoryAdapter, allNodeIDs []string) ([]string, error) {
	var problems []string

	for _, id := range allNodeIDs {
		node, ok, err := adapter.Node(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching node %q: %w", id, err)
		}
		if !ok || node.Type != dataDependencyType {
			continue
		}

		edges, err := adapter.Neighbors(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching neighbors of %q: %w", id, err)
		}

		var consumed, produced *lineage.Edge
		for i := range edges {
			e := edges[i]
			switch {
			case strings.HasSuffix(e.Name, "_CONSUMED_BY"):
				consumed = &e
			case strings.HasSuffix(e.Name, "_PRODUCED_BY"):
				produced = &e
			}
		}
		if consumed == nil || produced == nil {
			problems = append(problems, fmt.Sprintf("data_dependency %q is missing a consumed or produced half", id))
			continue
		}

		consumedDataset, err := resolveAttributeDataset(ctx, adapter, consumed.OtherNode)
		if err != nil {
			return nil, err
		}
		producedDataset, err := resolveAttributeDataset(ctx, adapter, produced.OtherNode)
		if err != nil {
			return nil, err
		}

		if consumedDataset != "" && consumedDataset == producedDataset {
			problems = append(problems, fmt.Sprintf(
				"data_dependency %q connects attributes %q and %q on the same dataset %q",
				id, consumed.OtherNode, produced.OtherNode, consumedDataset))
		}
	}

	return problems, nil
}

// resolveAttributeDataset follows attrID's IS_ATTRIBUTE_FOR edge to find
// the dataset it belongs to. Returns "" if the attribute doesn't exist or
// declares no such edge.
func resolveAttributeDataset(ctx context.Context, adapter *store.MemoryAdapter, attrID string) (string, error) {
	edges, err := adapter.Neighbors(ctx, attrID)
	if err != nil {
		return "", fmt.Errorf("fetching neighbors of %q: %w", attrID, err)
	}
	for _, e := range edges {
		if e.Name == isAttributeForEdge {
			return e.OtherNode, nil
		}
	}
	return "", nil
}
