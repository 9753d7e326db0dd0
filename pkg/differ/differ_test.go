package differ

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kako-jun/diffx-go/pkg/parser"
	"github.com/kako-jun/diffx-go/pkg/value"
)

// valueComparer lets go-cmp compare record payloads through the Value API
// instead of unexported fields.
var valueComparer = cmp.Comparer(func(a, b *value.Value) bool {
	return a.Equal(b)
})

func mustParse(t *testing.T, content string) *value.Value {
	t.Helper()
	v, err := parser.ParseJSON(content)
	if err != nil {
		t.Fatalf("parsing test input: %v", err)
	}
	return v
}

func mustDiff(t *testing.T, oldDoc, newDoc string, opts *Options) []DiffResult {
	t.Helper()
	results, err := Diff(mustParse(t, oldDoc), mustParse(t, newDoc), opts)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	return results
}

func TestDiff_Identical(t *testing.T) {
	doc := `{"name":"Alice","tags":["a","b"],"profile":{"age":30,"ok":true}}`

	results := mustDiff(t, doc, doc, nil)
	if HasChanges(results) {
		t.Errorf("Expected no changes, got %d results", len(results))
	}
}

func TestDiff_ModifiedScalar(t *testing.T) {
	results := mustDiff(t, `{"name":"Alice","age":30}`, `{"name":"Alice","age":31}`, nil)

	expected := []DiffResult{
		{Type: DiffTypeModified, Path: "age", OldValue: value.NewNumber(30), NewValue: value.NewNumber(31)},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Unexpected results (-want +got):\n%s", diff)
	}
}

func TestDiff_AddedKey(t *testing.T) {
	results := mustDiff(t, `{"name":"Alice"}`, `{"name":"Alice","age":30}`, nil)

	expected := []DiffResult{
		{Type: DiffTypeAdded, Path: "age", NewValue: value.NewNumber(30)},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Unexpected results (-want +got):\n%s", diff)
	}
}

func TestDiff_RemovedKeyUsesValueField(t *testing.T) {
	results := mustDiff(t, `{"name":"Alice","age":30}`, `{"name":"Alice"}`, nil)

	expected := []DiffResult{
		{Type: DiffTypeRemoved, Path: "age", Value: value.NewNumber(30)},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Unexpected results (-want +got):\n%s", diff)
	}
}

func TestDiff_AddedRemovedSymmetry(t *testing.T) {
	oldDoc := `{"a":1}`
	newDoc := `{"a":1,"b":2}`

	forward := mustDiff(t, oldDoc, newDoc, nil)
	backward := mustDiff(t, newDoc, oldDoc, nil)

	if len(forward) != 1 || len(backward) != 1 {
		t.Fatalf("Expected one result each way, got %d and %d", len(forward), len(backward))
	}
	if forward[0].Type != DiffTypeAdded || backward[0].Type != DiffTypeRemoved {
		t.Errorf("Expected Added/Removed pair, got %s/%s", forward[0].Type, backward[0].Type)
	}
	if forward[0].Path != backward[0].Path {
		t.Errorf("Expected identical paths, got %q and %q", forward[0].Path, backward[0].Path)
	}
}

func TestDiff_NestedPath(t *testing.T) {
	results := mustDiff(t,
		`{"user":{"profile":{"age":30}}}`,
		`{"user":{"profile":{"age":31}}}`, nil)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Path != "user.profile.age" {
		t.Errorf("Expected path 'user.profile.age', got %q", results[0].Path)
	}
}

func TestDiff_Epsilon(t *testing.T) {
	oldDoc := `{"value":1.001}`
	newDoc := `{"value":1.002}`

	within, err := Diff(mustParse(t, oldDoc), mustParse(t, newDoc), &Options{Epsilon: 0.01})
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if HasChanges(within) {
		t.Errorf("Expected no results within epsilon, got %d", len(within))
	}

	exact := mustDiff(t, oldDoc, newDoc, nil)
	if len(exact) != 1 || exact[0].Type != DiffTypeModified {
		t.Fatalf("Expected one Modified result without epsilon, got %v", exact)
	}
}

func TestDiff_EpsilonMonotonicity(t *testing.T) {
	oldVal := mustParse(t, `{"value":10.0}`)
	newVal := mustParse(t, `{"value":10.4}`)

	suppressedAt := -1.0
	for _, epsilon := range []float64{0, 0.1, 0.5, 1, 5} {
		results, err := Diff(oldVal, newVal, &Options{Epsilon: epsilon})
		if err != nil {
			t.Fatalf("Diff failed at epsilon %v: %v", epsilon, err)
		}
		if !HasChanges(results) && suppressedAt < 0 {
			suppressedAt = epsilon
		}
		if HasChanges(results) && suppressedAt >= 0 {
			t.Errorf("Difference reappeared at epsilon %v after being suppressed at %v", epsilon, suppressedAt)
		}
	}
	if suppressedAt != 0.5 {
		t.Errorf("Expected suppression to start at epsilon 0.5, got %v", suppressedAt)
	}
}

func TestDiff_SequenceByPosition(t *testing.T) {
	results := mustDiff(t, `{"items":[1,2,3]}`, `{"items":[1,4,3]}`, nil)

	expected := []DiffResult{
		{Type: DiffTypeModified, Path: "items[1]", OldValue: value.NewNumber(2), NewValue: value.NewNumber(4)},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Unexpected results (-want +got):\n%s", diff)
	}
}

func TestDiff_SequenceTrailingElements(t *testing.T) {
	grown := mustDiff(t, `{"items":[1]}`, `{"items":[1,2,3]}`, nil)
	expected := []DiffResult{
		{Type: DiffTypeAdded, Path: "items[1]", NewValue: value.NewNumber(2)},
		{Type: DiffTypeAdded, Path: "items[2]", NewValue: value.NewNumber(3)},
	}
	if diff := cmp.Diff(expected, grown, valueComparer); diff != "" {
		t.Errorf("Unexpected results for grown sequence (-want +got):\n%s", diff)
	}

	shrunk := mustDiff(t, `{"items":[1,2,3]}`, `{"items":[1]}`, nil)
	if len(shrunk) != 2 || shrunk[0].Type != DiffTypeRemoved || shrunk[1].Type != DiffTypeRemoved {
		t.Fatalf("Expected two Removed results for shrunk sequence, got %v", shrunk)
	}
	if shrunk[0].Path != "items[1]" || shrunk[1].Path != "items[2]" {
		t.Errorf("Unexpected paths %q, %q", shrunk[0].Path, shrunk[1].Path)
	}
}

func TestDiff_ArrayIDKeyReorder(t *testing.T) {
	oldDoc := `{"users":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`
	newDoc := `{"users":[{"id":2,"name":"B"},{"id":1,"name":"A2"}]}`

	results := mustDiff(t, oldDoc, newDoc, &Options{ArrayIDKey: "id"})

	expected := []DiffResult{
		{Type: DiffTypeModified, Path: "users[1].name", OldValue: value.NewString("A"), NewValue: value.NewString("A2")},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Expected exactly one Modified with no reordering noise (-want +got):\n%s", diff)
	}
}

func TestDiff_ArrayIDKeyAddRemove(t *testing.T) {
	oldDoc := `{"users":[{"id":1},{"id":2}]}`
	newDoc := `{"users":[{"id":2},{"id":3}]}`

	results := mustDiff(t, oldDoc, newDoc, &Options{ArrayIDKey: "id"})

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d: %v", len(results), results)
	}
	// id=1 reported at its old index, id=3 at its new index.
	if results[0].Type != DiffTypeRemoved || results[0].Path != "users[0]" {
		t.Errorf("Expected Removed at users[0], got %s at %q", results[0].Type, results[0].Path)
	}
	if results[1].Type != DiffTypeAdded || results[1].Path != "users[1]" {
		t.Errorf("Expected Added at users[1], got %s at %q", results[1].Type, results[1].Path)
	}
}

func TestDiff_ArrayIDKeyFallsBackToPosition(t *testing.T) {
	// One element lacks the id key, so matching reverts to positional.
	oldDoc := `{"users":[{"id":1,"name":"A"},{"name":"B"}]}`
	newDoc := `{"users":[{"name":"B"},{"id":1,"name":"A"}]}`

	results := mustDiff(t, oldDoc, newDoc, &Options{ArrayIDKey: "id"})
	if !HasChanges(results) {
		t.Error("Expected positional fallback to report reordering differences")
	}
}

func TestDiff_TypeChangedBeatsEpsilon(t *testing.T) {
	results := mustDiff(t, `{"port":8080}`, `{"port":"8080"}`, &Options{Epsilon: 1e9})

	expected := []DiffResult{
		{Type: DiffTypeTypeChanged, Path: "port", OldValue: value.NewNumber(8080), NewValue: value.NewString("8080")},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Unexpected results (-want +got):\n%s", diff)
	}
}

func TestDiff_ContainerKindChange(t *testing.T) {
	results := mustDiff(t, `{"data":{"a":1}}`, `{"data":[1]}`, nil)

	if len(results) != 1 || results[0].Type != DiffTypeTypeChanged {
		t.Fatalf("Expected one TypeChanged result, got %v", results)
	}
}

func TestDiff_RootScalars(t *testing.T) {
	results := mustDiff(t, `1`, `2`, nil)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Path != "" {
		t.Errorf("Expected empty path for root comparison, got %q", results[0].Path)
	}
	if results[0].Type != DiffTypeModified {
		t.Errorf("Expected Modified, got %s", results[0].Type)
	}
}

func TestDiff_RootTypeChangeIsNotAnError(t *testing.T) {
	results, err := Diff(mustParse(t, `{"a":1}`), mustParse(t, `[1]`), nil)
	if err != nil {
		t.Fatalf("Root kind mismatch must not fail: %v", err)
	}
	if len(results) != 1 || results[0].Type != DiffTypeTypeChanged || results[0].Path != "" {
		t.Errorf("Expected one TypeChanged at the root, got %v", results)
	}
}

func TestDiff_IgnoreKeysRegex(t *testing.T) {
	oldDoc := `{"timestamp":"2024-01-01","name":"a","ts_nested":{"x":1}}`
	newDoc := `{"name":"b","ts_nested":{"x":2},"timestamp_new":"2024-06-01"}`

	results := mustDiff(t, oldDoc, newDoc, &Options{IgnoreKeysRegex: "^(timestamp|ts_).*"})

	// The removed timestamp, the added timestamp_new and the recursion into
	// ts_nested are all suppressed; only name survives.
	expected := []DiffResult{
		{Type: DiffTypeModified, Path: "name", OldValue: value.NewString("a"), NewValue: value.NewString("b")},
	}
	if diff := cmp.Diff(expected, results, valueComparer); diff != "" {
		t.Errorf("Unexpected results (-want +got):\n%s", diff)
	}
}

func TestDiff_PathFilter(t *testing.T) {
	oldDoc := `{"database":{"host":"a"},"cache":{"host":"b"}}`
	newDoc := `{"database":{"host":"x"},"cache":{"host":"y"}}`

	results := mustDiff(t, oldDoc, newDoc, &Options{PathFilter: "database"})

	if len(results) != 1 {
		t.Fatalf("Expected 1 filtered result, got %d", len(results))
	}
	if results[0].Path != "database.host" {
		t.Errorf("Expected path 'database.host', got %q", results[0].Path)
	}
}

func TestDiff_IgnoreCaseKeepsOriginalValues(t *testing.T) {
	equal := mustDiff(t, `{"name":"ALICE"}`, `{"name":"alice"}`, &Options{IgnoreCase: true})
	if HasChanges(equal) {
		t.Errorf("Expected case difference to be ignored, got %v", equal)
	}

	results := mustDiff(t, `{"name":"ALICE"}`, `{"name":"bob"}`, &Options{IgnoreCase: true})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	// Records carry the original, non-normalized values.
	if results[0].OldValue.Text() != "ALICE" || results[0].NewValue.Text() != "bob" {
		t.Errorf("Expected original values in record, got %s -> %s",
			results[0].OldValue, results[0].NewValue)
	}
}

func TestDiff_IgnoreWhitespace(t *testing.T) {
	equal := mustDiff(t, `{"text":"hello   world"}`, `{"text":" hello world "}`, &Options{IgnoreWhitespace: true})
	if HasChanges(equal) {
		t.Errorf("Expected whitespace runs to be ignored, got %v", equal)
	}

	strict := mustDiff(t, `{"text":"hello   world"}`, `{"text":" hello world "}`, nil)
	if !HasChanges(strict) {
		t.Error("Expected whitespace difference to be reported by default")
	}
}

func TestDiff_MappingTraversalOrder(t *testing.T) {
	// Old insertion order first, then new-only keys in new insertion order.
	oldDoc := `{"b":1,"a":2,"gone":3}`
	newDoc := `{"z":9,"a":5,"b":4}`

	results := mustDiff(t, oldDoc, newDoc, nil)

	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	expected := []string{"b", "a", "gone", "z"}
	if diff := cmp.Diff(expected, paths); diff != "" {
		t.Errorf("Unexpected traversal order (-want +got):\n%s", diff)
	}
}

func TestDiff_Brief(t *testing.T) {
	results := mustDiff(t, `{"a":1,"b":2,"c":3}`, `{"a":9,"b":8,"c":7}`, &Options{Brief: true})

	if len(results) != 1 {
		t.Fatalf("Expected brief mode to stop at the first difference, got %d results", len(results))
	}

	same := mustDiff(t, `{"a":1}`, `{"a":1}`, &Options{Brief: true})
	if HasChanges(same) {
		t.Errorf("Expected no results for identical inputs, got %v", same)
	}
}

func TestDiff_NaN(t *testing.T) {
	nanDoc, err := parser.ParseYAML("value: .nan")
	if err != nil {
		t.Fatalf("parsing test input: %v", err)
	}
	numDoc, err := parser.ParseYAML("value: 1.0")
	if err != nil {
		t.Fatalf("parsing test input: %v", err)
	}

	// NaN vs a number is a difference, and no epsilon suppresses it.
	for _, epsilon := range []float64{0, 1e9} {
		results, err := Diff(nanDoc, numDoc, &Options{Epsilon: epsilon})
		if err != nil {
			t.Fatalf("Diff failed at epsilon %v: %v", epsilon, err)
		}
		if len(results) != 1 || results[0].Type != DiffTypeModified || results[0].Path != "value" {
			t.Errorf("Expected one Modified at 'value' for epsilon %v, got %v", epsilon, results)
		}
	}

	// NaN vs NaN is not a difference, keeping diff(x, x) empty.
	results, err := Diff(nanDoc, nanDoc.Clone(), nil)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if HasChanges(results) {
		t.Errorf("Expected NaN to equal NaN, got %v", results)
	}
}

func TestDiff_BriefWithPathFilter(t *testing.T) {
	oldDoc := `{"a":1,"db":{"x":1}}`
	newDoc := `{"a":2,"db":{"x":2}}`

	// The first difference (a) falls outside the filter; brief mode must
	// still surface the filtered difference under db.
	results := mustDiff(t, oldDoc, newDoc, &Options{Brief: true, PathFilter: "db"})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d: %v", len(results), results)
	}
	if results[0].Path != "db.x" {
		t.Errorf("Expected path 'db.x', got %q", results[0].Path)
	}

	// With no filtered paths differing, brief mode reports nothing.
	none := mustDiff(t, oldDoc, `{"a":3,"db":{"x":1}}`, &Options{Brief: true, PathFilter: "db"})
	if HasChanges(none) {
		t.Errorf("Expected no results for unchanged filtered subtree, got %v", none)
	}
}

func TestDiff_RecordsOwnTheirValues(t *testing.T) {
	oldVal := mustParse(t, `{"items":[1,2]}`)
	newVal := mustParse(t, `{"other":true}`)

	results, err := Diff(oldVal, newVal, nil)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	// Mutating the inputs afterwards must not leak into the records.
	items, _ := oldVal.Get("items")
	items.Append(value.NewNumber(99))

	removed := results[0].Value
	if removed.Len() != 2 {
		t.Errorf("Expected record to hold an independent copy, got %s", removed)
	}
}

func TestDiff_NilOptionsMeansDefaults(t *testing.T) {
	results, err := Diff(mustParse(t, `{"a":1.0000001}`), mustParse(t, `{"a":1.0000002}`), nil)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if !HasChanges(results) {
		t.Error("Expected default epsilon 0 to report the tiny difference")
	}
}

func TestDiff_InvalidEpsilon(t *testing.T) {
	_, err := Diff(value.NewNull(), value.NewNull(), &Options{Epsilon: -0.5})
	if err == nil {
		t.Fatal("Expected error for negative epsilon, got nil")
	}
	if !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
}

func TestDiff_InvalidPattern(t *testing.T) {
	_, err := Diff(value.NewNull(), value.NewNull(), &Options{IgnoreKeysRegex: "[unclosed"})
	if err == nil {
		t.Fatal("Expected error for invalid regex, got nil")
	}
	if !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("Expected ErrInvalidOptions, got %v", err)
	}
}
