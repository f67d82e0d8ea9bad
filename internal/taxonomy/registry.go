package taxonomy

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lineagehq/lineage-graph/internal/lineage"
)

// ErrUnknownNodeType is returned by NodeRole when a node's type tag has no
// entry in the taxonomy. Per spec, this is a configuration error: the
// engine raises it at the request boundary rather than treating it like a
// classification miss.
var ErrUnknownNodeType = errors.New("unknown node type")

// endpointKey identifies an (source_type, destination_type) pair under a
// given edge name.
type endpointKey struct {
	sourceType      string
	destinationType string
}

// Registry classifies edges by axis and reports per-node-type role and
// visibility. It is built once from a declarative configuration and is
// safe for concurrent read-only use for the lifetime of the process.
type Registry struct {
	nodeTypes map[string]NodeTypeInfo

	// rules is indexed edge_name -> (source_type, destination_type) ->
	// source_sub_type + "\x00" + destination_sub_type ("\x00" for the
	// wildcard rule) -> classification.
	rules map[string]map[endpointKey]map[string]*EdgeClassification

	hopGroupCounts map[string]int
}

// Load reads and parses a taxonomy configuration file at path, validates
// it, and returns an immutable Registry. A validation failure is returned
// as an error and should be treated as fatal at process startup.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy config %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses taxonomy configuration from an in-memory YAML document.
func LoadBytes(data []byte) (*Registry, error) {
	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing taxonomy config: %w", err)
	}
	return build(cfg)
}

func build(cfg config) (*Registry, error) {
	reg := &Registry{
		nodeTypes:      make(map[string]NodeTypeInfo, len(cfg.NodeTypes)),
		rules:          make(map[string]map[endpointKey]map[string]*EdgeClassification),
		hopGroupCounts: make(map[string]int),
	}

	for name, nt := range cfg.NodeTypes {
		visible := true
		if nt.Visible != nil {
			visible = *nt.Visible
		}
		role, err := parseRole(nt.Role)
		if err != nil {
			return nil, fmt.Errorf("node type %q: %w", name, err)
		}
		reg.nodeTypes[name] = NodeTypeInfo{Name: name, Role: role, Visible: visible}
	}

	for i, rule := range cfg.EdgeRules {
		ec, err := classificationFromRule(rule)
		if err != nil {
			return nil, fmt.Errorf("edge rule #%d (%s %s->%s): %w", i, rule.EdgeName, rule.SourceType, rule.DestinationType, err)
		}

		if _, ok := reg.nodeTypes[ec.SourceType]; !ok {
			return nil, fmt.Errorf("edge rule #%d: unknown source node type %q", i, ec.SourceType)
		}
		if _, ok := reg.nodeTypes[ec.DestinationType]; !ok {
			return nil, fmt.Errorf("edge rule #%d: unknown destination node type %q", i, ec.DestinationType)
		}

		key := endpointKey{sourceType: ec.SourceType, destinationType: ec.DestinationType}
		byEndpoint, ok := reg.rules[ec.EdgeName]
		if !ok {
			byEndpoint = make(map[endpointKey]map[string]*EdgeClassification)
			reg.rules[ec.EdgeName] = byEndpoint
		}
		bySubType, ok := byEndpoint[key]
		if !ok {
			bySubType = make(map[string]*EdgeClassification)
			byEndpoint[key] = bySubType
		}
		if _, exists := bySubType[ec.SourceSubType+"\x00"+ec.DestSubType]; exists {
			return nil, fmt.Errorf("edge rule #%d: duplicate rule for %s %s->%s sub_type=(%q,%q)",
				i, ec.EdgeName, ec.SourceType, ec.DestinationType, ec.SourceSubType, ec.DestSubType)
		}
		bySubType[ec.SourceSubType+"\x00"+ec.DestSubType] = ec

		if ec.HopGroup != "" {
			reg.hopGroupCounts[ec.HopGroup]++
		}
	}

	for _, hopGroup := range cfg.HopGroups {
		_ = hopGroup // existence in the YAML is documentation only; counts come from rule usage.
	}

	for group, count := range reg.hopGroupCounts {
		if count < 2 {
			return nil, fmt.Errorf("hop group %q is referenced by only %d rule(s); collapsing requires at least 2", group, count)
		}
	}

	return reg, nil
}

func parseRole(s string) (lineage.NodeRole, error) {
	switch lineage.NodeRole(s) {
	case lineage.RoleResource, lineage.RoleTransformer, lineage.RoleStructural, lineage.RoleContainer, lineage.RoleQualifier:
		return lineage.NodeRole(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

func classificationFromRule(rule edgeRuleConfig) (*EdgeClassification, error) {
	ec := &EdgeClassification{
		EdgeName:        rule.EdgeName,
		SourceType:      rule.SourceType,
		DestinationType: rule.DestinationType,
		SourceSubType:   rule.SourceSubType,
		DestSubType:     rule.DestSubType,
	}

	switch rule.Axis {
	case string(AxisX):
		ec.Axis = AxisX
		switch HopRole(rule.RoleInHop) {
		case RoleInputToTransformer, RoleOutputFromTransformer:
			ec.RoleInHop = HopRole(rule.RoleInHop)
		default:
			return nil, fmt.Errorf("invalid role_in_hop %q for X-axis rule", rule.RoleInHop)
		}
		ec.HopGroup = rule.HopGroup
	case string(AxisY):
		ec.Axis = AxisY
		switch SemanticUp(rule.SemanticUp) {
		case SemanticForward, SemanticReverse:
			ec.SemanticUp = SemanticUp(rule.SemanticUp)
		default:
			return nil, fmt.Errorf("invalid semantic_up %q for Y-axis rule", rule.SemanticUp)
		}
	case string(AxisZ):
		ec.Axis = AxisZ
	default:
		return nil, fmt.Errorf("invalid axis %q", rule.Axis)
	}

	return ec, nil
}

// Classify looks up the classification for a specific
// (edge_name, source_type, destination_type, sub_type?) tuple. It returns
// ok=false when no rule matches — callers must treat that as "unknown
// edge, skip", never as an error.
//
// When the edge carries a sub_type on either endpoint, a rule that names
// that exact sub_type wins over a wildcard rule for the same triple.
func (r *Registry) Classify(edgeName, sourceType, destType, sourceSubType, destSubType string) (EdgeClassification, bool) {
	byEndpoint, ok := r.rules[edgeName]
	if !ok {
		return EdgeClassification{}, false
	}
	bySubType, ok := byEndpoint[endpointKey{sourceType: sourceType, destinationType: destType}]
	if !ok {
		return EdgeClassification{}, false
	}

	if sourceSubType != "" || destSubType != "" {
		if ec, ok := bySubType[sourceSubType+"\x00"+destSubType]; ok {
			return *ec, true
		}
	}
	if ec, ok := bySubType["\x00"]; ok {
		return *ec, true
	}
	return EdgeClassification{}, false
}

// NodeRole returns the role and visibility of a node type. An unknown node
// type is a configuration error at the request boundary — it is the
// caller's responsibility to surface it as such; the Registry itself never
// panics.
func (r *Registry) NodeRole(nodeType string) (NodeTypeInfo, error) {
	info, ok := r.nodeTypes[nodeType]
	if !ok {
		return NodeTypeInfo{}, fmt.Errorf("%w: %q", ErrUnknownNodeType, nodeType)
	}
	return info, nil
}

// HopGroup returns the hop_group id for a specific edge triple, or "" if
// the edge is not X-axis or carries no hop group. It is a convenience for
// the Hop Collapser, which otherwise would need to re-run Classify.
func (r *Registry) HopGroup(edgeName, sourceType, destType string) string {
	ec, ok := r.Classify(edgeName, sourceType, destType, "", "")
	if !ok || ec.Axis != AxisX {
		return ""
	}
	return ec.HopGroup
}

