package typetree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Trees serialize to YAML and JSON with branches as nested mappings and
// leaves as type names: the builtin scalar names plus "any". Custom leaf tags
// render by their Go type string but only the builtin names parse back.

var scalarTypes = func() map[string]reflect.Type {
	m := make(map[string]reflect.Type)
	for _, rt := range []reflect.Type{
		reflect.TypeFor[bool](), reflect.TypeFor[string](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		m[rt.String()] = rt
	}

	return m
}()

func leafByName(name string) (*Tree, error) {
	if name == "any" {
		return Any(), nil
	}
	rt, ok := scalarTypes[name]
	if !ok {
		return nil, fmt.Errorf("unknown type name %q", name)
	}

	return LeafOf(rt), nil
}

func branchOf(fields []Field) (*Tree, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Key]; ok {
			return nil, fmt.Errorf("duplicate field key %q", f.Key)
		}
		seen[f.Key] = struct{}{}
	}

	return Branch(fields...), nil
}

func (t *Tree) leafName() string {
	if t.wildcard {
		return "any"
	}

	return t.leaf.String()
}

// ParseYAML parses a YAML document into a tree.
func ParseYAML(data []byte) (*Tree, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("empty type tree document")
	}

	var t Tree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// MarshalYAML implements yaml.Marshaler.
func (t *Tree) MarshalYAML() (any, error) {
	return t.yamlNode(), nil
}

func (t *Tree) yamlNode() *yaml.Node {
	if t.IsLeaf() {
		return &yaml.Node{Kind: yaml.ScalarNode, Value: t.leafName()}
	}

	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range t.fields {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.Key},
			f.Tree.yamlNode(),
		)
	}

	return n
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Tree) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	*t = *parsed

	return nil
}

func fromYAMLNode(node *yaml.Node) (*Tree, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.ScalarNode:
		parsed, err := leafByName(node.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}

		return parsed, nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
				return nil, fmt.Errorf("line %d: field keys must be non-empty strings", keyNode.Line)
			}
			child, err := fromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: keyNode.Value, Tree: child})
		}

		return branchOf(fields)
	default:
		return nil, fmt.Errorf("line %d: expected a mapping or a type name", node.Line)
	}
}

// MarshalJSON implements json.Marshaler, preserving branch field order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t.IsLeaf() {
		return json.Marshal(t.leafName())
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		child, err := f.Tree.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(child)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	parsed, err := fromJSONToken(dec)
	if err != nil {
		return err
	}
	*t = *parsed

	return nil
}

func fromJSONToken(dec *json.Decoder) (*Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case string:
		return leafByName(v)
	case json.Delim:
		if v != '{' {
			return nil, fmt.Errorf("unexpected JSON token %v", v)
		}
		var fields []Field
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok || key == "" {
				return nil, fmt.Errorf("field keys must be non-empty strings, got %v", keyTok)
			}
			child, err := fromJSONToken(dec)
			if err != nil {
				return nil, err
			}
			fields = append(fields, Field{Key: key, Tree: child})
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return nil, err
		}

		return branchOf(fields)
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok)
	}
}
