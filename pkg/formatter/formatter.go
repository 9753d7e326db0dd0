// Package formatter renders diff results as text in one of three formats:
// the compact line-oriented diffx notation, JSON, or YAML.
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kako-jun/diffx-go/pkg/differ"
)

// ErrUnsupportedFormat is returned for format names other than diffx, json
// and yaml. Unknown names never silently fall back to a default.
var ErrUnsupportedFormat = errors.New("unsupported output format")

type Format string

const (
	FormatDiffx Format = "diffx"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name supplied as text.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatDiffx, FormatJSON, FormatYAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Output renders a result sequence. An empty sequence renders as "[]" in
// JSON, the equivalent empty document in YAML, and empty text in diffx.
func Output(results []differ.DiffResult, format Format) (string, error) {
	if results == nil {
		results = []differ.DiffResult{}
	}

	switch format {
	case FormatJSON:
		out, err := json.Marshal(results)
		if err != nil {
			return "", fmt.Errorf("encoding results: %w", err)
		}
		return string(out), nil
	case FormatYAML:
		out, err := yaml.Marshal(results)
		if err != nil {
			return "", fmt.Errorf("encoding results: %w", err)
		}
		return string(out), nil
	case FormatDiffx:
		return formatDiffx(results), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
}

// formatDiffx writes one line per result:
//
//	+ path: value           added
//	- path: value           removed
//	~ path: old -> new      modified
//	! path: old -> new      type changed
//
// Values use compact JSON notation.
func formatDiffx(results []differ.DiffResult) string {
	var buf bytes.Buffer
	for _, r := range results {
		switch r.Type {
		case differ.DiffTypeAdded:
			fmt.Fprintf(&buf, "+ %s: %s\n", r.Path, r.NewValue)
		case differ.DiffTypeRemoved:
			fmt.Fprintf(&buf, "- %s: %s\n", r.Path, r.Value)
		case differ.DiffTypeModified:
			fmt.Fprintf(&buf, "~ %s: %s -> %s\n", r.Path, r.OldValue, r.NewValue)
		case differ.DiffTypeTypeChanged:
			fmt.Fprintf(&buf, "! %s: %s -> %s\n", r.Path, r.OldValue, r.NewValue)
		}
	}
	return buf.String()
}
