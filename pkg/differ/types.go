package differ

import "github.com/kako-jun/diffx-go/pkg/value"

type DiffType string

const (
	DiffTypeAdded       DiffType = "Added"
	DiffTypeRemoved     DiffType = "Removed"
	DiffTypeModified    DiffType = "Modified"
	DiffTypeTypeChanged DiffType = "TypeChanged"
)

// DiffResult is one reported difference. Removed carries its payload in
// Value rather than OldValue; that asymmetry is part of the wire contract.
type DiffResult struct {
	Type     DiffType     `json:"type" yaml:"type"`
	Path     string       `json:"path" yaml:"path"`
	OldValue *value.Value `json:"oldValue,omitempty" yaml:"oldValue,omitempty"`
	NewValue *value.Value `json:"newValue,omitempty" yaml:"newValue,omitempty"`
	Value    *value.Value `json:"value,omitempty" yaml:"value,omitempty"`
}

// HasChanges reports whether a diff run found any differences; process
// boundaries derive their exit code from this.
func HasChanges(results []DiffResult) bool {
	return len(results) > 0
}
