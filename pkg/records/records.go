// Package records defines the row types shared by generators, loaders, the
// grid preparation layer and the storage backends.
//
// A Record is an ordered list of named scalar fields. Order matters: the
// first-seen field order of a dataset becomes the display column order, so
// records are not plain maps.
//
// Datasets are treated as immutable once built. Nothing in this module
// mutates a Record after it has been appended to a Dataset; producers that
// need a different dataset build a new one.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of fields. Field names are unique within a record.
type Record []Field

// Get returns the value stored under name.
//
// The second return value reports whether the field exists at all; a field
// that exists with a nil value returns (nil, true).
func (r Record) Get(name string) (any, bool) {
	for i := range r {
		if r[i].Name == name {
			return r[i].Value, true
		}
	}
	return nil, false
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	out := make([]string, len(r))
	for i := range r {
		out[i] = r[i].Name
	}
	return out
}

// MarshalJSON encodes the record as a JSON object, preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("records: field %q: %w", f.Name, err)
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Dataset is a named, ordered collection of records.
type Dataset struct {
	Name string
	Rows []Record

	// Tree marks datasets whose rows carry a hierarchy path (see TreeRecord).
	Tree bool
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Fields returns the union of field names across all rows in first-seen
// order: the first record's order, extended by names that later records
// introduce.
func (d Dataset) Fields() []string {
	return FieldNames(d.Rows)
}

// FieldNames returns the union of field names of rows in first-seen order.
func FieldNames(rows []Record) []string {
	if len(rows) == 0 {
		return nil
	}
	out := rows[0].Names()
	seen := make(map[string]struct{}, len(out))
	for _, name := range out {
		seen[name] = struct{}{}
	}
	for _, r := range rows[1:] {
		for _, f := range r {
			if _, ok := seen[f.Name]; ok {
				continue
			}
			seen[f.Name] = struct{}{}
			out = append(out, f.Name)
		}
	}
	return out
}
