package sampledata

import (
	"testing"

	"griddemo/pkg/records"
)

// TestTreePathStructure verifies that every non-root node's path is its
// parent's path plus one segment and that siblings have distinct trailing
// segments.
func TestTreePathStructure(t *testing.T) {
	t.Parallel()

	nodes := TreeRecords()
	byKey := make(map[string]records.TreeRecord, len(nodes))
	for _, n := range nodes {
		if len(n.Path) == 0 || len(n.Path) > 3 {
			t.Fatalf("node %q has depth %d", n.Key(), len(n.Path))
		}
		if _, dup := byKey[n.Key()]; dup {
			t.Fatalf("duplicate node %q", n.Key())
		}
		byKey[n.Key()] = n
	}

	siblings := map[string]map[string]bool{}
	for _, n := range nodes {
		parent := n.ParentKey()
		if n.Depth() > 1 {
			if _, ok := byKey[parent]; !ok {
				t.Fatalf("node %q has no parent %q", n.Key(), parent)
			}
		}
		if siblings[parent] == nil {
			siblings[parent] = map[string]bool{}
		}
		last := n.Path[len(n.Path)-1]
		if siblings[parent][last] {
			t.Fatalf("siblings under %q share segment %q", parent, last)
		}
		siblings[parent][last] = true
	}
}

// TestTreeAggregatesMatchLeaves checks count and totalSalary on every
// interior node against its leaf descendants.
func TestTreeAggregatesMatchLeaves(t *testing.T) {
	t.Parallel()

	nodes := TreeRecords()
	for _, n := range nodes {
		if _, leaf := n.Attrs.Get(FieldPosition); leaf {
			if n.Depth() != 3 {
				t.Fatalf("leaf %q at depth %d", n.Key(), n.Depth())
			}
			continue
		}

		var count, total int
		for _, d := range nodes {
			if d.Depth() != 3 || !hasPrefix(d.Path, n.Path) {
				continue
			}
			s, _ := d.Attrs.Get(FieldSalary)
			count++
			total += s.(int)
		}

		gotCount, _ := n.Attrs.Get(FieldCount)
		gotTotal, _ := n.Attrs.Get(FieldTotalSalary)
		if gotCount != count || gotTotal != total {
			t.Fatalf("%q: count=%v total=%v, want %d/%d", n.Key(), gotCount, gotTotal, count, total)
		}
	}
}

func TestTreeRecordsAreFresh(t *testing.T) {
	t.Parallel()

	a := TreeRecords()
	a[0].Path[0] = "mutated"
	if b := TreeRecords(); b[0].Path[0] != "Engineering" {
		t.Fatalf("TreeRecords shares state between calls")
	}
}

func TestTreeDatasetFlattened(t *testing.T) {
	t.Parallel()

	ds := TreeDataset()
	if !ds.Tree || ds.Name != TreeName {
		t.Fatalf("TreeDataset() tree=%v name=%q", ds.Tree, ds.Name)
	}
	fields := ds.Fields()
	want := []string{records.PathField, FieldCount, FieldTotalSalary, FieldPosition, FieldSalary}
	if len(fields) != len(want) {
		t.Fatalf("Fields() = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Fields() = %v, want %v", fields, want)
		}
	}
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
