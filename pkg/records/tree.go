package records

import "strings"

// PathField is the field name under which a TreeRecord's path is exposed
// when it is flattened into a Record.
const PathField = "path"

// TreeRecord is a record positioned in a hierarchy.
//
// Path lists the segments from the root to this node. A node's path is a
// strict prefix of the path of each of its descendants.
type TreeRecord struct {
	Path  []string
	Attrs Record
}

// Record flattens the tree record into a plain Record whose first field is
// PathField holding a copy of the path.
func (t TreeRecord) Record() Record {
	out := make(Record, 0, len(t.Attrs)+1)
	out = append(out, Field{Name: PathField, Value: append([]string(nil), t.Path...)})
	return append(out, t.Attrs...)
}

// Depth returns the number of path segments.
func (t TreeRecord) Depth() int { return len(t.Path) }

// Key returns the path joined with "/"; handy for map keys and logs.
func (t TreeRecord) Key() string { return strings.Join(t.Path, "/") }

// ParentKey returns the Key of the parent node, or "" for a root node.
func (t TreeRecord) ParentKey() string {
	if len(t.Path) <= 1 {
		return ""
	}
	return strings.Join(t.Path[:len(t.Path)-1], "/")
}

// TreeDataset flattens nodes into a Dataset marked as tree data.
func TreeDataset(name string, nodes []TreeRecord) Dataset {
	rows := make([]Record, len(nodes))
	for i, n := range nodes {
		rows[i] = n.Record()
	}
	return Dataset{Name: name, Rows: rows, Tree: true}
}
