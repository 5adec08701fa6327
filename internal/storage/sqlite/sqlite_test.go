package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"griddemo/internal/storage"
)

func testSpec() storage.TableSpec {
	return storage.TableSpec{
		Name: "employees",
		Columns: []storage.ColumnSpec{
			{Name: "id", Kind: storage.KindInteger},
			{Name: "name", Kind: storage.KindText, Nullable: true},
			{Name: "salary", Kind: storage.KindFloat, Nullable: true},
			{Name: "active", Kind: storage.KindBoolean, Nullable: true},
		},
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := buildCreateTableSQL(testSpec())
	if err != nil {
		t.Fatalf("buildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"employees\" (\n" +
		"  \"id\" INTEGER NOT NULL,\n" +
		"  \"name\" TEXT,\n" +
		"  \"salary\" REAL,\n" +
		"  \"active\" INTEGER\n" +
		");"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	if _, err := buildCreateTableSQL(storage.TableSpec{Name: "x"}); err == nil {
		t.Fatalf("expected error for table without columns")
	}
}

func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	q, args, err := buildInsertSQL("main.t", []string{"a", `b"c`}, [][]any{{1, true}, {nil, false}})
	if err != nil {
		t.Fatalf("buildInsertSQL: %v", err)
	}
	if want := `INSERT INTO "main"."t" ("a", "b""c") VALUES (?, ?), (?, ?)`; q != want {
		t.Fatalf("got %q, want %q", q, want)
	}
	want := []any{int64(1), int64(1), nil, int64(0)}
	if len(args) != len(want) {
		t.Fatalf("args = %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %#v, want %#v", i, args[i], want[i])
		}
	}

	if _, _, err := buildInsertSQL("t", []string{"a"}, [][]any{{1, 2}}); err == nil {
		t.Fatalf("expected error for row width mismatch")
	}
	if _, _, err := buildInsertSQL("t", nil, nil); err == nil {
		t.Fatalf("expected error for no columns")
	}
}

func TestRepoRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: filepath.Join(t.TempDir(), "grid.db")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()

	spec := testSpec()
	for i := 0; i < 2; i++ {
		if err := repo.EnsureTable(ctx, spec); err != nil {
			t.Fatalf("EnsureTable #%d: %v", i, err)
		}
	}

	rows := [][]any{
		{1, "Ada", 10.5, true},
		{2, nil, nil, false},
		{3, "Grace", 20.0, nil},
	}
	n, err := repo.InsertRows(ctx, spec.Name, spec.ColumnNames(), rows)
	if err != nil {
		t.Fatalf("InsertRows: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted %d rows, want 3", n)
	}

	db := repo.(*Repo).db
	var count, active int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(active), 0) FROM employees`).Scan(&count, &active); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 3 || active != 1 {
		t.Fatalf("count=%d active=%d", count, active)
	}

	_, err = repo.InsertRows(ctx, spec.Name, spec.ColumnNames(), [][]any{{nil, "x", nil, nil}})
	if err == nil || !strings.Contains(err.Error(), "NOT NULL") {
		t.Fatalf("expected NOT NULL violation, got %v", err)
	}
	if n, err := repo.InsertRows(ctx, spec.Name, spec.ColumnNames(), nil); err != nil || n != 0 {
		t.Fatalf("empty insert: n=%d err=%v", n, err)
	}
}
