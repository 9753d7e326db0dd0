// Package parser converts structured text (JSON, YAML, TOML, CSV, INI, XML)
// into the generic value tree the diff engine consumes.
package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/clbanning/mxj/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/kako-jun/diffx-go/pkg/value"
)

// ParseError reports malformed input for a given format. An adapter never
// returns a partial Value alongside an error.
type ParseError struct {
	Format  string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %s", e.Format, e.Message)
}

func parseError(format string, err error) *ParseError {
	return &ParseError{Format: format, Message: err.Error()}
}

// ParseJSON decodes a JSON document, preserving object key order.
func ParseJSON(content string) (*value.Value, error) {
	var v value.Value
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, parseError("json", err)
	}
	return &v, nil
}

// ParseYAML decodes a YAML document, preserving mapping order.
func ParseYAML(content string) (*value.Value, error) {
	var v value.Value
	if err := yaml.Unmarshal([]byte(content), &v); err != nil {
		return nil, parseError("yaml", err)
	}
	return &v, nil
}

// ParseTOML decodes a TOML document. Tables arrive as unordered maps, so
// keys end up in sorted order; datetimes become RFC 3339 strings.
func ParseTOML(content string) (*value.Value, error) {
	var raw map[string]interface{}
	if _, err := toml.Decode(content, &raw); err != nil {
		return nil, parseError("toml", err)
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return nil, parseError("toml", err)
	}
	return v, nil
}

// ParseCSV decodes CSV text into a Sequence of Mappings, one per data row,
// keyed by the header row. Cells stay strings; no numeric coercion.
func ParseCSV(content string) (*value.Value, error) {
	reader := csv.NewReader(strings.NewReader(content))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, parseError("csv", err)
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: "csv", Message: "missing header row"}
	}

	header := records[0]
	rows := value.NewSequence()
	for _, record := range records[1:] {
		row := value.NewMapping()
		for i, cell := range record {
			row.Set(header[i], value.NewString(cell))
		}
		rows.Append(row)
	}
	return rows, nil
}

// ParseINI decodes INI text into a Mapping: default-section keys at the top
// level, one nested Mapping per named section. Values stay strings.
func ParseINI(content string) (*value.Value, error) {
	file, err := ini.Load([]byte(content))
	if err != nil {
		return nil, parseError("ini", err)
	}

	root := value.NewMapping()
	for _, section := range file.Sections() {
		if section.Name() == ini.DefaultSection {
			for _, key := range section.Keys() {
				root.Set(key.Name(), value.NewString(key.Value()))
			}
			continue
		}
		if len(section.Keys()) == 0 {
			root.Set(section.Name(), value.NewMapping())
			continue
		}
		child := value.NewMapping()
		for _, key := range section.Keys() {
			child.Set(key.Name(), value.NewString(key.Value()))
		}
		root.Set(section.Name(), child)
	}
	return root, nil
}

// ParseXML decodes an XML document into a Mapping rooted at the document
// element. Element text stays string-typed.
func ParseXML(content string) (*value.Value, error) {
	m, err := mxj.NewMapXml([]byte(content))
	if err != nil {
		return nil, parseError("xml", err)
	}
	v, err := value.FromAny(map[string]interface{}(m))
	if err != nil {
		return nil, parseError("xml", err)
	}
	return v, nil
}
