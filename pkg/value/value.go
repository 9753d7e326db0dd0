// Package value defines the generic tree model shared by every supported
// input format. A Value is a tagged union of Null, Bool, Number, String,
// Sequence and Mapping; mappings remember insertion order so that traversal
// and diff output stay deterministic.
package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one node of a parsed document tree. All numbers share a single
// float64 representation regardless of the source format's int/float split.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	items   []*Value
	keys    []string
	entries map[string]*Value
}

func NewNull() *Value { return &Value{kind: Null} }

func NewBool(b bool) *Value { return &Value{kind: Bool, boolVal: b} }

func NewNumber(f float64) *Value { return &Value{kind: Number, numVal: f} }

func NewString(s string) *Value { return &Value{kind: String, strVal: s} }

func NewSequence(items ...*Value) *Value {
	return &Value{kind: Sequence, items: items}
}

func NewMapping() *Value {
	return &Value{kind: Mapping, entries: make(map[string]*Value)}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return Null
	}
	return v.kind
}

func (v *Value) Bool() bool { return v.boolVal }

func (v *Value) Float() float64 { return v.numVal }

// Text returns the payload of a String value.
func (v *Value) Text() string { return v.strVal }

// Len returns the element count of a Sequence or the key count of a Mapping,
// and 0 for scalars.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case Sequence:
		return len(v.items)
	case Mapping:
		return len(v.keys)
	default:
		return 0
	}
}

func (v *Value) Items() []*Value { return v.items }

func (v *Value) Index(i int) *Value { return v.items[i] }

func (v *Value) Append(item *Value) {
	v.items = append(v.items, item)
}

// Keys returns mapping keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (v *Value) Keys() []string { return v.keys }

func (v *Value) Get(key string) (*Value, bool) {
	child, ok := v.entries[key]
	return child, ok
}

// Set inserts or replaces a mapping entry. A replaced key keeps its original
// position in the insertion order.
func (v *Value) Set(key string, child *Value) {
	if _, exists := v.entries[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.entries[key] = child
}

// Equal reports structural equality. Sequences compare element-wise in
// order; mappings compare by key set, independent of insertion order.
func (v *Value) Equal(o *Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case Null:
		return true
	case Bool:
		return v.boolVal == o.boolVal
	case Number:
		// NaN equals NaN here so that a tree compares equal to itself.
		if math.IsNaN(v.numVal) || math.IsNaN(o.numVal) {
			return math.IsNaN(v.numVal) && math.IsNaN(o.numVal)
		}
		return v.numVal == o.numVal
	case String:
		return v.strVal == o.strVal
	case Sequence:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Mapping:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for _, key := range v.keys {
			other, ok := o.entries[key]
			if !ok || !v.entries[key].Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy sharing no state with the receiver.
func (v *Value) Clone() *Value {
	if v == nil {
		return NewNull()
	}
	switch v.kind {
	case Sequence:
		items := make([]*Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.Clone()
		}
		return &Value{kind: Sequence, items: items}
	case Mapping:
		clone := NewMapping()
		for _, key := range v.keys {
			clone.Set(key, v.entries[key].Clone())
		}
		return clone
	default:
		scalar := *v
		return &scalar
	}
}

// FromAny converts decoder output (interface{} trees of maps, slices and
// scalars) into a Value. Maps carry no ordering, so their keys are inserted
// in sorted order to keep traversal deterministic.
func FromAny(raw interface{}) (*Value, error) {
	switch x := raw.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(x), nil
	case string:
		return NewString(x), nil
	case float64:
		return NewNumber(x), nil
	case float32:
		return NewNumber(float64(x)), nil
	case int:
		return NewNumber(float64(x)), nil
	case int64:
		return NewNumber(float64(x)), nil
	case uint64:
		return NewNumber(float64(x)), nil
	case time.Time:
		return NewString(x.Format(time.RFC3339)), nil
	case []interface{}:
		seq := NewSequence()
		for _, item := range x {
			child, err := FromAny(item)
			if err != nil {
				return nil, err
			}
			seq.Append(child)
		}
		return seq, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for key := range x {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		mapping := NewMapping()
		for _, key := range keys {
			child, err := FromAny(x[key])
			if err != nil {
				return nil, err
			}
			mapping.Set(key, child)
		}
		return mapping, nil
	}

	// Typed slices and string-keyed maps, e.g. []map[string]interface{}
	// from TOML arrays of tables.
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		seq := NewSequence()
		for i := 0; i < rv.Len(); i++ {
			child, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			seq.Append(child)
		}
		return seq, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, key := range rv.MapKeys() {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)

		mapping := NewMapping()
		for _, key := range keys {
			child, err := FromAny(rv.MapIndex(reflect.ValueOf(key)).Interface())
			if err != nil {
				return nil, err
			}
			mapping.Set(key, child)
		}
		return mapping, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return NewNumber(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return NewNumber(float64(rv.Uint())), nil
	}

	return nil, fmt.Errorf("unsupported value type %T", raw)
}

// isIntegral reports whether f can be rendered without a fractional part.
func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15
}
