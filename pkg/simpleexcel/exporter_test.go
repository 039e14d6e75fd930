package simpleexcel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fileRow struct {
	Filename  string
	Value     string
	Size      *int
	CreatedAt time.Time
	Extra     map[string]string
	hidden    string
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestDataExporter_Columns(t *testing.T) {
	size := 42
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data := []*fileRow{
		{Filename: "a.xlsx", Value: "North", Size: &size, CreatedAt: at, Extra: map[string]string{"owner": "ann"}},
		nil,
		{Filename: "b.xlsx", Value: "South"},
	}

	out, err := NewDataExporter().
		AddSheet("Files").
		WithTitle("Acme files").
		AddColumn("Filename", "File", 30).
		AddColumn("Size", "Size", 0).
		AddColumn("CreatedAt", "Created", 20).
		AddColumn("Extra_owner", "Owner", 0).
		WithData(data).
		Build().
		ToBytes()
	require.NoError(t, err)

	f := open(t, out)
	rows, err := f.GetRows("Files")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Acme files"}, rows[0])
	assert.Equal(t, []string{"File", "Size", "Created", "Owner"}, rows[1])
	assert.Equal(t, []string{"a.xlsx", "42", "2026-01-02 03:04:05", "ann"}, rows[2])
	assert.Equal(t, []string{"b.xlsx"}, rows[3])

	width, err := f.GetColWidth("Files", "A")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
}

func TestDataExporter_DefaultColumnsAndProtection(t *testing.T) {
	out, err := NewDataExporter().
		AddSheet("All").
		WithData([]fileRow{{Filename: "a.xlsx", Value: "North"}}).
		Protect("secret").
		Build().
		ToBytes()
	require.NoError(t, err)

	f := open(t, out)
	rows, err := f.GetRows("All")
	require.NoError(t, err)
	assert.Equal(t, []string{"Filename", "Value", "Size", "CreatedAt"}, rows[0])
	assert.Equal(t, "a.xlsx", rows[1][0])
	assert.Error(t, f.UnprotectSheet("All", "wrong"))
	assert.NoError(t, f.UnprotectSheet("All", "secret"))
}

func TestDataExporter_Errors(t *testing.T) {
	_, err := NewDataExporter().ToBytes()
	assert.Error(t, err)

	_, err = NewDataExporter().AddSheet("Bad").WithData([]int{1}).Build().ToBytes()
	assert.ErrorContains(t, err, "expected slice of structs")

	_, err = NewDataExporter().AddSheet("Bad").WithData("nope").Build().ToBytes()
	assert.ErrorContains(t, err, "expected slice of structs")
}

func TestDataExporter_EmptyData(t *testing.T) {
	out, err := NewDataExporter().
		AddSheet("Empty").
		AddColumn("Filename", "File", 0).
		WithData([]fileRow{}).
		Build().
		ToBytes()
	require.NoError(t, err)

	rows, err := open(t, out).GetRows("Empty")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"File"}}, rows)
}
