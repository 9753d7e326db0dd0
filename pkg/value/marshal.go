package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalJSON renders the tree as compact JSON, emitting mapping keys in
// insertion order. encoding/json's map marshaling would sort keys, so
// containers are written by hand.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolVal))
	case Number:
		b, err := json.Marshal(v.numVal)
		if err != nil {
			return err
		}
		buf.Write(b)
	case String:
		b, err := json.Marshal(v.strVal)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Sequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Mapping:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeJSON(buf, v.entries[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON decodes via the token stream so that object key order
// survives the round trip.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

func decodeJSON(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			mapping := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				mapping.Set(key, child)
			}
			if _, err := dec.Token(); err != nil { // closing '}'
				return nil, err
			}
			return mapping, nil
		case '[':
			seq := NewSequence()
			for dec.More() {
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				seq.Append(child)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return nil, err
			}
			return seq, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case bool:
		return NewBool(t), nil
	case string:
		return NewString(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return NewNumber(f), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// MarshalYAML exposes the tree as a *yaml.Node so that gopkg.in/yaml.v3
// preserves mapping order when encoding.
func (v *Value) MarshalYAML() (interface{}, error) {
	return yamlNode(v), nil
}

func yamlNode(v *Value) *yaml.Node {
	switch v.Kind() {
	case Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.boolVal)}
	case Number:
		if isIntegral(v.numVal) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v.numVal), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.numVal, 'g', -1, 64)}
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.strVal}
	case Sequence:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			node.Content = append(node.Content, yamlNode(item))
		}
		return node
	case Mapping:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range v.keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				yamlNode(v.entries[key]))
		}
		return node
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// UnmarshalYAML walks the yaml.v3 node tree directly, keeping mapping order
// and normalizing every numeric scalar to float64.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := fromYAMLNode(node)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

func fromYAMLNode(node *yaml.Node) (*Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NewNull(), nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.SequenceNode:
		seq := NewSequence()
		for _, item := range node.Content {
			child, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			seq.Append(child)
		}
		return seq, nil
	case yaml.MappingNode:
		mapping := NewMapping()
		for i := 0; i+1 < len(node.Content); i += 2 {
			child, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			mapping.Set(node.Content[i].Value, child)
		}
		return mapping, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
}

func fromYAMLScalar(node *yaml.Node) (*Value, error) {
	switch node.Tag {
	case "!!null":
		return NewNull(), nil
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(node.Value))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid bool %q", node.Line, node.Value)
		}
		return NewBool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(node.Value, 0, 64)
		if err == nil {
			return NewNumber(float64(i)), nil
		}
		f, ferr := strconv.ParseFloat(node.Value, 64)
		if ferr != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", node.Line, node.Value)
		}
		return NewNumber(f), nil
	case "!!float":
		switch strings.ToLower(node.Value) {
		case ".inf", "+.inf":
			return NewNumber(math.Inf(1)), nil
		case "-.inf":
			return NewNumber(math.Inf(-1)), nil
		case ".nan":
			return NewNumber(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid float %q", node.Line, node.Value)
		}
		return NewNumber(f), nil
	default:
		return NewString(node.Value), nil
	}
}

// String renders the value as compact JSON, the notation used by the diffx
// output format.
func (v *Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.Kind())
	}
	return string(b)
}
