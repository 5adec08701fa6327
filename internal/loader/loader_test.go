package loader

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"griddemo/pkg/records"
)

func TestCoerce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"true", true},
		{"FALSE", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"+3", int64(3)},
		{"0", int64(0)},
		{"3.14", 3.14},
		{"0.5", 0.5},
		{".5", 0.5},
		{"1e3", 1000.0},
		{"007", "007"},
		{"01234", "01234"},
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"-Inf", "-Inf"},
		{"1e400", "1e400"},
		{"0x1p3", "0x1p3"},
		{"1_000", "1_000"},
		{"12abc", "12abc"},
		{"2020-01-01", "2020-01-01"},
		{"yes", "yes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Coerce(tt.in), "Coerce(%q)", tt.in)
	}
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := "\uFEFF id , name,active,salary,startDate\n" +
		"1, Jane Doe ,true,50000,2020-01-01\n" +
		"2,John,false,61000.5,\n" +
		"3,Short\n"

	rows, err := ReadCSV(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "name", "active", "salary", "startDate"}, rows[0].Names())
	assert.Equal(t, records.Record{
		{Name: "id", Value: int64(1)},
		{Name: "name", Value: "Jane Doe"},
		{Name: "active", Value: true},
		{Name: "salary", Value: int64(50000)},
		{Name: "startDate", Value: "2020-01-01"},
	}, rows[0])

	v, _ := rows[1].Get("salary")
	assert.Equal(t, 61000.5, v)
	v, ok := rows[1].Get("startDate")
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = rows[2].Get("salary")
	assert.True(t, ok, "short rows keep every column")
	assert.Nil(t, v)
}

func TestReadCSVOptions(t *testing.T) {
	t.Parallel()

	in := "a;b;a;\n 1 ;x;2;3\n"
	rows, err := ReadCSV(context.Background(), strings.NewReader(in), Options{
		Comma:     ';',
		NoTrim:    true,
		NoCoerce:  true,
		HeaderMap: map[string]string{"b": "beta"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "beta", "a_2", "column4"}, rows[0].Names())

	v, _ := rows[0].Get("a")
	assert.Equal(t, " 1 ", v)
	v, _ = rows[0].Get("a_2")
	assert.Equal(t, "2", v)
}

func TestReadCSVEmptyAndHeaderOnly(t *testing.T) {
	t.Parallel()

	rows, err := ReadCSV(context.Background(), strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows, err = ReadCSV(context.Background(), strings.NewReader("a,b\n"), Options{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSVMalformed(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\n\"broken,3\n"
	_, err := ReadCSV(context.Background(), strings.NewReader(in), Options{})
	require.Error(t, err)

	var lines []int
	rows, err := ReadCSV(context.Background(), strings.NewReader(in), Options{
		OnError: func(line int, _ error) { lines = append(lines, line) },
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.NotEmpty(t, lines)
}

func TestReadCSVCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadCSV(ctx, strings.NewReader("a\n1\n2\n"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadJSONRootArrayKeepsKeyOrder(t *testing.T) {
	t.Parallel()

	in := `[
		{"zeta": 1, "alpha": "a", "mid": true},
		null,
		{"alpha": "b", "zeta": 2.5, "extra": null}
	]`
	rows, err := ReadJSON(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rows[0].Names())
	assert.Equal(t, []string{"zeta", "alpha", "mid", "extra"}, records.FieldNames(rows))

	v, _ := rows[0].Get("zeta")
	assert.Equal(t, json.Number("1"), v)
	v, _ = rows[1].Get("zeta")
	assert.Equal(t, json.Number("2.5"), v)
}

func TestReadJSONEnvelope(t *testing.T) {
	t.Parallel()

	in := `{"meta": {"page": 1}, "tags": ["x", "y"], "data": [{"id": 1}, {"id": 2}], "total": 2}`
	rows, err := ReadJSON(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	v, _ := rows[1].Get("id")
	assert.Equal(t, json.Number("2"), v)
}

func TestReadJSONSingleObject(t *testing.T) {
	t.Parallel()

	in := `{"name": "Jane", "tags": ["a", "b"], "nested": {"k": 1}, "mixed": [1, "x"]}`
	rows, err := ReadJSON(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	r := rows[0]
	assert.Equal(t, []string{"name", "tags", "nested", "mixed"}, r.Names())
	v, _ := r.Get("tags")
	assert.Equal(t, []string{"a", "b"}, v)
	v, _ = r.Get("nested")
	assert.Equal(t, records.Record{{Name: "k", Value: json.Number("1")}}, v)
	v, _ = r.Get("mixed")
	assert.Equal(t, []any{json.Number("1"), "x"}, v)
}

func TestReadJSONTrailingObjects(t *testing.T) {
	t.Parallel()

	in := "{\"id\": 1}\n{\"id\": 2}\n{\"id\": 3}\n"
	rows, err := ReadJSON(context.Background(), strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestReadJSONErrors(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		`"just a string"`,
		`[1, 2]`,
		`[{"a": 1}`,
		`[{"a": 1}] 5`,
	} {
		_, err := ReadJSON(context.Background(), strings.NewReader(in), Options{})
		assert.Error(t, err, "input %s", in)
	}

	rows, err := ReadJSON(context.Background(), strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

const htmlDoc = `<html><body>
<table id="other"><tr><td>ignore</td></tr></table>
<table class="people">
  <thead><tr><th>Name</th><th>Salary</th><th>Active</th></tr></thead>
  <tbody>
    <tr><td> Jane </td><td>50000</td><td>true</td></tr>
    <tr></tr>
    <tr><td>John</td><td>61000.5</td></tr>
  </tbody>
</table>
</body></html>`

func TestReadHTML(t *testing.T) {
	t.Parallel()

	rows, err := ReadHTML(context.Background(), strings.NewReader(htmlDoc), Options{TableSelector: "table.people"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, records.Record{
		{Name: "Name", Value: "Jane"},
		{Name: "Salary", Value: int64(50000)},
		{Name: "Active", Value: true},
	}, rows[0])
	v, ok := rows[1].Get("Active")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestReadHTMLDefaultSelectorAndMissingTable(t *testing.T) {
	t.Parallel()

	rows, err := ReadHTML(context.Background(), strings.NewReader(htmlDoc), Options{})
	require.NoError(t, err)
	assert.Empty(t, rows, "first table has only a header row")

	_, err = ReadHTML(context.Background(), strings.NewReader("<p>none</p>"), Options{})
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	csvPath := write("staff.csv", "id,name\n1,Jane\n")
	ds, err := LoadFile(context.Background(), csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, "staff", ds.Name)
	assert.Equal(t, 1, ds.Len())
	assert.False(t, ds.Tree)

	treePath := write("org.JSON", `[{"path": ["A"], "count": 1}, {"path": ["A", "Bo"], "salary": 10}]`)
	ds, err = LoadFile(context.Background(), treePath, Options{})
	require.NoError(t, err)
	assert.Equal(t, "org", ds.Name)
	assert.True(t, ds.Tree)

	htmlPath := write("page.htm", htmlDoc)
	ds, err = LoadFile(context.Background(), htmlPath, Options{TableSelector: ".people"})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	_, err = LoadFile(context.Background(), write("notes.txt", "x"), Options{})
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = LoadFile(context.Background(), filepath.Join(dir, "missing.csv"), Options{})
	assert.Error(t, err)

	assert.True(t, Supported("a/b/c.Csv"))
	assert.False(t, Supported("c.xlsx"))
}
