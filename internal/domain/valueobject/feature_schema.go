package valueobject

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// FieldKind is the value type of a schema field.
type FieldKind string

// Float64 is the only kind the scaler accepts.
const Float64 FieldKind = "float64"

// SchemaField is one named, typed column.
type SchemaField struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// FeatureSchema is the ordered column layout captured at fit time.
type FeatureSchema struct {
	version string
	fields  []SchemaField
	index   map[string]int
}

// NewFeatureSchema builds a schema from ordered column names. Names must be
// non-empty and unique. The version is derived from the names and their order.
func NewFeatureSchema(columns []string) (FeatureSchema, error) {
	if len(columns) == 0 {
		return FeatureSchema{}, errors.New("feature schema needs at least one column")
	}
	fields := make([]SchemaField, len(columns))
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return FeatureSchema{}, fmt.Errorf("feature schema column %d has no name", i)
		}
		if _, dup := index[name]; dup {
			return FeatureSchema{}, fmt.Errorf("feature schema column %q is duplicated", name)
		}
		index[name] = i
		fields[i] = SchemaField{Name: name, Kind: Float64}
	}

	sum := sha256.Sum256([]byte(strings.Join(columns, "\x1f")))
	return FeatureSchema{
		version: "fs1-" + hex.EncodeToString(sum[:6]),
		fields:  fields,
		index:   index,
	}, nil
}

// Version identifies the column layout.
func (s FeatureSchema) Version() string { return s.version }

// Fields returns a copy of the ordered fields.
func (s FeatureSchema) Fields() []SchemaField { return slices.Clone(s.fields) }

// Columns returns the ordered column names.
func (s FeatureSchema) Columns() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of columns.
func (s FeatureSchema) Len() int { return len(s.fields) }

// Position returns the column's index in the schema.
func (s FeatureSchema) Position(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Missing lists schema columns absent from present, in schema order.
func (s FeatureSchema) Missing(present []string) []string {
	have := make(map[string]struct{}, len(present))
	for _, p := range present {
		have[p] = struct{}{}
	}
	var missing []string
	for _, f := range s.fields {
		if _, ok := have[f.Name]; !ok {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
