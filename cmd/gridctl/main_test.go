package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"griddemo/internal/config"
	"griddemo/internal/sampledata"
)

// run executes gridctl with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateJSON(t *testing.T) {
	out, err := run(t, "generate", "--count", "3", "--seed", "42")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.EqualValues(t, 1, rows[0][sampledata.FieldID])
	assert.EqualValues(t, 3, rows[2][sampledata.FieldID])

	again, err := run(t, "generate", "--count", "3", "--seed", "42")
	require.NoError(t, err)
	var rows2 []map[string]any
	require.NoError(t, json.Unmarshal([]byte(again), &rows2))
	assert.Equal(t, rows[0][sampledata.FieldName], rows2[0][sampledata.FieldName], "a seed makes output reproducible")
	assert.Equal(t, rows[0][sampledata.FieldEmail], rows2[0][sampledata.FieldEmail])

	// Field order follows the generator, not map order.
	assert.Less(t, strings.Index(out, `"id"`), strings.Index(out, `"name"`))
}

func TestGenerateCSV(t *testing.T) {
	out, err := run(t, "generate", "--count", "4", "--format", "csv", "--seed", "1")
	require.NoError(t, err)

	lines, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"id", "name", "email", "country", "city", "department", "position", "salary", "startDate", "status"}, lines[0])
	assert.Equal(t, "4", lines[4][0])
}

func TestGenerateTreePresetCSV(t *testing.T) {
	out, err := run(t, "generate", "--preset", sampledata.TreeName, "--format", "csv")
	require.NoError(t, err)

	lines, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, lines, len(sampledata.TreeRecords())+1)
	assert.Equal(t, "path", lines[0][0])
	assert.Contains(t, lines[2][0], "/")
}

func TestGenerateErrors(t *testing.T) {
	_, err := run(t, "generate", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")

	_, err = run(t, "generate", "--preset", "nope")
	assert.ErrorContains(t, err, "unknown preset")

	_, err = run(t, "generate", "--preset", "small", "--count", "3")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staff.csv")
	body := "id,name,active,startDate\n1,Ada,true,2020-01-02\n2,Grace,false,2021-03-04\n3,Linus,true,2019-05-06\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := run(t, "probe", path, "--locale", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "field,type\nid,number\nname,text\nactive,boolean\nstartDate,date\nstaff: 3 rows (limit 25,000)\n", out)

	out, err = run(t, "probe", path, "--max-rows", "2", "--locale", "en-US")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: Cannot display more than 2 rows. Currently attempting to load 3 rows.")

	out, err = run(t, "probe", path, "--max-rows", "0", "--locale", "en-US")
	require.NoError(t, err)
	assert.Contains(t, out, "staff: 3 rows (limit 25,000)")
	assert.NotContains(t, out, "Error:")

	_, err = run(t, "probe", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = run(t, "probe")
	assert.Error(t, err, "file argument is required")
}

func TestPreviewRowsUseDisplayFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pay.csv")
	body := "id,name,salary,startDate\n1,Ada,123456,2020-01-02\n2,Grace,98765.5,2021-03-04\n3,Linus,70000,2019-05-06\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, err := run(t, "probe", path, "--preview", "2", "--locale", "de-DE")
	require.NoError(t, err)
	want := "field,type\nid,number\nname,text\nsalary,number\nstartDate,date\n" +
		"pay: 3 rows (limit 25.000)\n\n" +
		"Id\tName\tSalary\tStartDate\n" +
		"1\tAda\t123.456\t2020-01-02\n" +
		"2\tGrace\t98.765,5\t2021-03-04\n"
	assert.Equal(t, want, out)

	out, err = run(t, "probe", path, "--max-rows", "2", "--preview", "2", "--locale", "en-US")
	require.NoError(t, err)
	assert.NotContains(t, out, "Salary", "rejected files have no rows to preview")
}

func TestExportToSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "grid.db")

	out, err := run(t, "export", "--dataset", "small", "--backend", "sqlite", "--dsn", dbPath, "--batch-size", "30")
	require.NoError(t, err)

	var res struct {
		SnapshotID string `json:"snapshot_id"`
		Table      string `json:"table"`
		Rows       int64  `json:"rows"`
		Batches    int    `json:"batches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "small", res.Table)
	assert.EqualValues(t, 100, res.Rows)
	assert.Equal(t, 4, res.Batches)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM small WHERE snapshot_id = ?`, res.SnapshotID).Scan(&n))
	assert.Equal(t, 100, n)
}

func TestExportRejectsOversize(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "grid.db")
	_, err := run(t, "export", "--dataset", "small", "--backend", "sqlite", "--dsn", dbPath, "--max-rows", "10", "--locale", "en-US")
	assert.ErrorContains(t, err, "Cannot display more than 10 rows. Currently attempting to load 100 rows.")
}

func TestExportFlagValidation(t *testing.T) {
	_, err := run(t, "export", "--backend", "sqlite")
	assert.Error(t, err, "one of --dataset or --file is required")

	_, err = run(t, "export", "--dataset", "small", "--file", "x.csv")
	assert.Error(t, err)

	_, err = run(t, "export", "--dataset", "small", "--backend", "oracle")
	assert.ErrorContains(t, err, "oracle")
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	sf := &serveFlags{}
	cmd := &cobra.Command{Use: "serve"}
	sf.register(cmd.Flags())
	require.NoError(t, cmd.ParseFlags([]string{"--addr", ":9999", "--max-rows", "5", "--dd-tags", "a:1,b:2", "--watch-debounce", "2s"}))

	cfg := config.Default()
	cfg.DataDir = "/from/config"
	sf.apply(cmd, &cfg)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 5, cfg.MaxRows)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Datadog.Tags)
	assert.Equal(t, config.Duration(2*time.Second), cfg.WatchDebounce)
	assert.Equal(t, "/from/config", cfg.DataDir, "unset flags keep config values")
	assert.False(t, cfg.Datadog.Enabled)
}
