// Package differ implements the structural comparison over value trees. It
// walks old and new in lock step, dispatching on the pair of kinds at each
// path, and emits an ordered, deterministic list of differences.
package differ

import (
	"fmt"
	"math"
	"strings"

	"github.com/kako-jun/diffx-go/pkg/value"
)

// Diff compares two value trees and returns the differences in traversal
// order. It is a pure function: the inputs are only read, and reported
// values are independent deep copies. A nil opts means defaults.
func Diff(oldVal, newVal *value.Value, opts *Options) ([]DiffResult, error) {
	if opts == nil {
		opts = NewOptions()
	}
	resolved, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	d := &differ{opts: resolved, results: []DiffResult{}}
	d.compare("", oldVal, newVal)

	results := d.results
	if resolved.PathFilter != "" {
		filtered := make([]DiffResult, 0, len(results))
		for _, r := range results {
			if d.matchesFilter(r.Path) {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	return results, nil
}

type differ struct {
	opts    *resolvedOptions
	results []DiffResult
	done    bool
}

func (d *differ) compare(path string, oldVal, newVal *value.Value) {
	if d.done || oldVal == newVal {
		return
	}

	// A kind mismatch always wins over value tolerances.
	if oldVal.Kind() != newVal.Kind() {
		d.record(DiffResult{
			Type:     DiffTypeTypeChanged,
			Path:     path,
			OldValue: oldVal.Clone(),
			NewValue: newVal.Clone(),
		})
		return
	}

	switch oldVal.Kind() {
	case value.Null:
		// Two nulls are always equal.
	case value.Bool:
		if oldVal.Bool() != newVal.Bool() {
			d.modified(path, oldVal, newVal)
		}
	case value.Number:
		if !numbersEqual(oldVal.Float(), newVal.Float(), d.opts.Epsilon) {
			d.modified(path, oldVal, newVal)
		}
	case value.String:
		if d.normalize(oldVal.Text()) != d.normalize(newVal.Text()) {
			// Records keep the original, non-normalized values.
			d.modified(path, oldVal, newVal)
		}
	case value.Sequence:
		d.compareSequences(path, oldVal, newVal)
	case value.Mapping:
		d.compareMappings(path, oldVal, newVal)
	}
}

// compareMappings walks the union of keys: old's insertion order first, then
// keys only present in new, in new's insertion order.
func (d *differ) compareMappings(path string, oldVal, newVal *value.Value) {
	for _, key := range oldVal.Keys() {
		if d.skipKey(key) {
			continue
		}
		oldChild, _ := oldVal.Get(key)
		newChild, ok := newVal.Get(key)
		if !ok {
			d.removed(childPath(path, key), oldChild)
			continue
		}
		d.compare(childPath(path, key), oldChild, newChild)
	}

	for _, key := range newVal.Keys() {
		if d.skipKey(key) {
			continue
		}
		if _, ok := oldVal.Get(key); ok {
			continue
		}
		newChild, _ := newVal.Get(key)
		d.added(childPath(path, key), newChild)
	}
}

func (d *differ) compareSequences(path string, oldVal, newVal *value.Value) {
	if d.opts.ArrayIDKey != "" {
		oldIndex, oldOK := indexByID(oldVal, d.opts.ArrayIDKey)
		newIndex, newOK := indexByID(newVal, d.opts.ArrayIDKey)
		if oldOK && newOK {
			d.compareByID(path, oldVal, newVal, oldIndex, newIndex)
			return
		}
	}
	d.compareByPosition(path, oldVal, newVal)
}

// compareByID pairs elements by the value under the configured id key,
// making the diff insensitive to reordering. Removed elements report at
// their old index, everything else at the new-side index.
func (d *differ) compareByID(path string, oldVal, newVal *value.Value, oldIndex, newIndex map[string]int) {
	idKey := d.opts.ArrayIDKey

	for i, elem := range oldVal.Items() {
		id, _ := elem.Get(idKey)
		if _, ok := newIndex[id.String()]; !ok {
			d.removed(indexPath(path, i), elem)
		}
	}

	for i, elem := range newVal.Items() {
		id, _ := elem.Get(idKey)
		oldPos, ok := oldIndex[id.String()]
		if !ok {
			d.added(indexPath(path, i), elem)
			continue
		}
		d.compare(indexPath(path, i), oldVal.Index(oldPos), elem)
	}
}

func (d *differ) compareByPosition(path string, oldVal, newVal *value.Value) {
	oldLen, newLen := oldVal.Len(), newVal.Len()
	common := oldLen
	if newLen < common {
		common = newLen
	}

	for i := 0; i < common; i++ {
		d.compare(indexPath(path, i), oldVal.Index(i), newVal.Index(i))
	}
	for i := common; i < newLen; i++ {
		d.added(indexPath(path, i), newVal.Index(i))
	}
	for i := common; i < oldLen; i++ {
		d.removed(indexPath(path, i), oldVal.Index(i))
	}
}

// indexByID maps id value (canonical string form) to element position.
// It reports false unless every element is a Mapping carrying the id key
// exactly once; callers then fall back to positional comparison.
func indexByID(seq *value.Value, idKey string) (map[string]int, bool) {
	index := make(map[string]int, seq.Len())
	for i, elem := range seq.Items() {
		if elem.Kind() != value.Mapping {
			return nil, false
		}
		id, ok := elem.Get(idKey)
		if !ok {
			return nil, false
		}
		key := id.String()
		if _, dup := index[key]; dup {
			return nil, false
		}
		index[key] = i
	}
	return index, true
}

// numbersEqual compares two numbers under the tolerance. NaN never falls
// inside any epsilon, so a NaN side is equal only to another NaN.
func numbersEqual(a, b, epsilon float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= epsilon
}

func (d *differ) skipKey(key string) bool {
	return d.opts.ignoreKeys != nil && d.opts.ignoreKeys.MatchString(key)
}

func (d *differ) normalize(s string) string {
	if d.opts.IgnoreWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}
	if d.opts.IgnoreCase {
		s = strings.ToLower(s)
	}
	return s
}

func (d *differ) record(r DiffResult) {
	if d.done {
		return
	}
	d.results = append(d.results, r)
	if d.opts.Brief && d.matchesFilter(r.Path) {
		// Brief callers only need "objects differ"; the first record
		// surviving the path filter is the minimal summary. Stopping on a
		// filtered-out record would wrongly report no differences.
		d.done = true
	}
}

func (d *differ) matchesFilter(path string) bool {
	return d.opts.PathFilter == "" || strings.Contains(path, d.opts.PathFilter)
}

func (d *differ) added(path string, newVal *value.Value) {
	d.record(DiffResult{Type: DiffTypeAdded, Path: path, NewValue: newVal.Clone()})
}

func (d *differ) removed(path string, oldVal *value.Value) {
	d.record(DiffResult{Type: DiffTypeRemoved, Path: path, Value: oldVal.Clone()})
}

func (d *differ) modified(path string, oldVal, newVal *value.Value) {
	d.record(DiffResult{
		Type:     DiffTypeModified,
		Path:     path,
		OldValue: oldVal.Clone(),
		NewValue: newVal.Clone(),
	})
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
