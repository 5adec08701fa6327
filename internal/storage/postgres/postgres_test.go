package postgres

import (
	"strings"
	"testing"

	"griddemo/internal/storage"
)

func TestBuildCreateSQL(t *testing.T) {
	t.Parallel()

	spec := storage.TableSpec{
		Name: "grid.employees",
		Columns: []storage.ColumnSpec{
			{Name: "snapshot_id", Kind: storage.KindUUID},
			{Name: "id", Kind: storage.KindInteger},
			{Name: "salary", Kind: storage.KindFloat, Nullable: true},
			{Name: "startDate", Kind: storage.KindDate, Nullable: true},
			{Name: "active", Kind: storage.KindBoolean, Nullable: true},
		},
	}

	schemaSQL, tableSQL, err := buildCreateSQL(spec)
	if err != nil {
		t.Fatalf("buildCreateSQL: %v", err)
	}
	if schemaSQL != `CREATE SCHEMA IF NOT EXISTS "grid";` {
		t.Fatalf("schemaSQL = %q", schemaSQL)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "grid"."employees"`,
		`"snapshot_id" UUID NOT NULL`,
		`"id" BIGINT NOT NULL`,
		`"salary" DOUBLE PRECISION,`,
		`"startDate" DATE,`,
		`"active" BOOLEAN` + "\n",
	} {
		if !strings.Contains(tableSQL, want) {
			t.Fatalf("tableSQL missing %q:\n%s", want, tableSQL)
		}
	}

	schemaSQL, _, err = buildCreateSQL(storage.TableSpec{Name: "plain", Columns: spec.Columns})
	if err != nil || schemaSQL != "" {
		t.Fatalf("unqualified table: schemaSQL=%q err=%v", schemaSQL, err)
	}

	if _, _, err := buildCreateSQL(storage.TableSpec{Columns: spec.Columns}); err == nil {
		t.Fatalf("expected error for empty table name")
	}
}

func TestBuildInsertSQL_PlaceholderNumbering(t *testing.T) {
	t.Parallel()

	q, args, err := buildInsertSQL("public.t", []string{"a", "b"}, [][]any{{1, "x"}, {2, []string{"p", "q"}}})
	if err != nil {
		t.Fatalf("buildInsertSQL: %v", err)
	}
	if want := `INSERT INTO "public"."t" ("a", "b") VALUES ($1, $2), ($3, $4)`; q != want {
		t.Fatalf("got %q, want %q", q, want)
	}
	want := []any{int64(1), "x", int64(2), "p/q"}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %#v, want %#v", i, args[i], want[i])
		}
	}

	if _, _, err := buildInsertSQL("t", []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatalf("expected error for short row")
	}
}

func TestPgIdentEscapesQuotes(t *testing.T) {
	t.Parallel()
	if got := pgIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("pgIdent = %s", got)
	}
}
