package storage

import (
	"fmt"
	"strings"
)

// ColumnKind is the portable column type. Each backend maps it to its own
// SQL type.
type ColumnKind string

const (
	KindInteger   ColumnKind = "integer"
	KindFloat     ColumnKind = "float"
	KindBoolean   ColumnKind = "boolean"
	KindDate      ColumnKind = "date"
	KindTimestamp ColumnKind = "timestamp"
	KindText      ColumnKind = "text"
	KindUUID      ColumnKind = "uuid"
)

// Valid reports whether k is one of the known kinds.
func (k ColumnKind) Valid() bool {
	switch k {
	case KindInteger, KindFloat, KindBoolean, KindDate, KindTimestamp, KindText, KindUUID:
		return true
	}
	return false
}

// ColumnSpec describes one column of a table to create.
type ColumnSpec struct {
	Name     string     `json:"name"`
	Kind     ColumnKind `json:"kind"`
	Nullable bool       `json:"nullable"`
}

// TableSpec describes a table to create. Name may be schema-qualified
// ("dbo.employees").
type TableSpec struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

// ColumnNames returns the column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Validate checks that the table can be rendered as DDL.
func (t TableSpec) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("storage: table name is empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("storage: table %s: no columns", t.Name)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("storage: table %s: column name must be set", t.Name)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("storage: table %s: duplicate column %q", t.Name, name)
		}
		seen[key] = true
		if !c.Kind.Valid() {
			return fmt.Errorf("storage: table %s: column %s: unknown kind %q", t.Name, name, c.Kind)
		}
	}
	return nil
}

// SplitQualifiedName splits "schema.table" into its parts. Names without
// exactly one dot are returned as the table with an empty schema.
func SplitQualifiedName(name string) (schema string, table string) {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return "", name
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
