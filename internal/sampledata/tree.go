package sampledata

import "griddemo/pkg/records"

// TreeName is the dataset name of the organization tree.
const TreeName = "tree"

// Tree attribute names.
const (
	FieldCount       = "count"
	FieldTotalSalary = "totalSalary"
)

// TreeRecords returns the static organization tree in depth-first order:
// department, then team, then employee. Interior nodes carry the leaf count
// and salary total of their subtree; leaves carry position and salary.
//
// Each call returns freshly allocated records.
func TreeRecords() []records.TreeRecord {
	return []records.TreeRecord{
		group(520000, 4, "Engineering"),
		group(255000, 2, "Engineering", "Platform"),
		person("Senior Developer", 145000, "Engineering", "Platform", "Alice Chen"),
		person("Developer", 110000, "Engineering", "Platform", "Ben Ortiz"),
		group(265000, 2, "Engineering", "Frontend"),
		person("Developer", 105000, "Engineering", "Frontend", "Carla Diaz"),
		person("Manager", 160000, "Engineering", "Frontend", "Dev Patel"),

		group(345000, 3, "Sales"),
		group(275000, 2, "Sales", "Enterprise"),
		person("Director", 190000, "Sales", "Enterprise", "Ellen Brooks"),
		person("Specialist", 85000, "Sales", "Enterprise", "Frank Moore"),
		group(70000, 1, "Sales", "SMB"),
		person("Coordinator", 70000, "Sales", "SMB", "Grace Kim"),

		group(225000, 2, "Finance"),
		group(225000, 2, "Finance", "Accounting"),
		person("Analyst", 90000, "Finance", "Accounting", "Henry Wu"),
		person("Manager", 135000, "Finance", "Accounting", "Irene Novak"),
	}
}

// TreeDataset returns TreeRecords flattened into a tree Dataset.
func TreeDataset() records.Dataset {
	return records.TreeDataset(TreeName, TreeRecords())
}

func group(total, count int, path ...string) records.TreeRecord {
	return records.TreeRecord{
		Path: path,
		Attrs: records.Record{
			{Name: FieldCount, Value: count},
			{Name: FieldTotalSalary, Value: total},
		},
	}
}

func person(position string, salary int, path ...string) records.TreeRecord {
	return records.TreeRecord{
		Path: path,
		Attrs: records.Record{
			{Name: FieldPosition, Value: position},
			{Name: FieldSalary, Value: salary},
		},
	}
}
