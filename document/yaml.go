package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	yamlNullTag  = "!!null"
	yamlBoolTag  = "!!bool"
	yamlIntTag   = "!!int"
	yamlFloatTag = "!!float"
	yamlStrTag   = "!!str"
)

// ParseYAML converts the first YAML document in text into a Value. Mapping
// order is preserved and aliases are expanded. Mapping keys must be scalars.
func ParseYAML(text []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return Value{}, fmt.Errorf("document: yaml: %w", err)
	}
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return Value{}, ErrEmpty
	}
	return fromYAMLNode(&root, 0)
}

// maxYAMLDepth bounds alias expansion so self-referencing documents fail
// instead of recursing forever.
const maxYAMLDepth = 512

func fromYAMLNode(node *yaml.Node, depth int) (Value, error) {
	if depth > maxYAMLDepth {
		return Value{}, fmt.Errorf("document: yaml: nesting deeper than %d", maxYAMLDepth)
	}

	switch node.Kind {
	case yaml.DocumentNode:
		return fromYAMLNode(node.Content[0], depth+1)
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, len(node.Content))
		for i, child := range node.Content {
			v, err := fromYAMLNode(child, depth+1)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindArray, items: items}, nil
	case yaml.MappingNode:
		v := Value{kind: KindObject}
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind == yaml.AliasNode {
				keyNode = keyNode.Alias
			}
			if keyNode.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("document: yaml: line %d: mapping key must be a scalar", keyNode.Line)
			}
			member, err := fromYAMLNode(valueNode, depth+1)
			if err != nil {
				return Value{}, err
			}
			v.members = setMember(v.members, keyNode.Value, member)
		}
		return v, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	default:
		return Value{}, fmt.Errorf("document: yaml: unsupported node kind %d", node.Kind)
	}
}

func fromYAMLScalar(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case yamlNullTag:
		return Null(), nil
	case yamlBoolTag:
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("document: yaml: line %d: %w", node.Line, err)
		}
		return Bool(b), nil
	case yamlIntTag:
		if validNumber(node.Value) {
			return Number(json.Number(node.Value)), nil
		}
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := node.Decode(&u); err != nil {
			return Value{}, fmt.Errorf("document: yaml: line %d: %w", node.Line, err)
		}
		return Number(json.Number(strconv.FormatUint(u, 10))), nil
	case yamlFloatTag:
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("document: yaml: line %d: %w", node.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("document: yaml: line %d: non-finite number %q", node.Line, node.Value)
		}
		if validNumber(node.Value) {
			return Number(json.Number(node.Value)), nil
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return String(node.Value), nil
	}
}

// MarshalYAML renders v as a YAML document indented by two spaces.
func MarshalYAML(v Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("document: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("document: yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAMLNode(v Value) (*yaml.Node, error) {
	switch v.kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlNullTag, Value: "null"}, nil
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlBoolTag, Value: strconv.FormatBool(v.boolean)}, nil
	case KindNumber:
		if !validNumber(v.text) {
			return nil, fmt.Errorf("document: invalid number %q", v.text)
		}
		tag := yamlIntTag
		if strings.ContainsAny(v.text, ".eE") {
			tag = yamlFloatTag
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.text}, nil
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStrTag, Value: v.text}, nil
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			child, err := toYAMLNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		if len(v.items) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node, nil
	case KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.members {
			value, err := toYAMLNode(m.Value)
			if err != nil {
				return nil, err
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStrTag, Value: m.Key}
			node.Content = append(node.Content, key, value)
		}
		if len(v.members) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node, nil
	default:
		return nil, fmt.Errorf("document: unknown kind %v", v.kind)
	}
}
