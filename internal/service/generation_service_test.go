package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/locvowork/xlfilecreator/internal/database"
	"github.com/locvowork/xlfilecreator/internal/domain"
	"github.com/locvowork/xlfilecreator/internal/jobconfig"
	"github.com/locvowork/xlfilecreator/internal/repository"
	"github.com/locvowork/xlfilecreator/pkg/xlsource"
)

var sourceSheets = []struct {
	name string
	rows [][]any
}{
	{"MAIN", [][]any{
		{"column_width", 18, 12},
		{"HEADER", "Region", "Amount"},
		{"", "North", 10},
		{"", "South", 20},
		{"", "North", 30},
	}},
	{"Dropdown_Lists", [][]any{
		{"HEADER", "Region"},
		{"", "North"},
		{"", "South"},
	}},
}

func writeSource(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sourceSheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(s.name, cell, &values))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newLedger(t *testing.T) *repository.OutputFileRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.SQLite))
	return repository.NewOutputFileRepository(db)
}

func TestGenerationService_RunJob(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.xlsx")
	require.NoError(t, os.WriteFile(srcPath, writeSource(t), 0o644))

	job, err := jobconfig.LoadFromString(fmt.Sprintf(`
project: Acme
source:
  path: %s
templates:
  - main: MAIN
split:
  column: Region
batch: 2
output:
  dir: %s
`, srcPath, filepath.Join(dir, "out")))
	require.NoError(t, err)

	ledger := newLedger(t)
	svc := NewGenerationService(Options{}, ledger)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	sum, err := svc.RunJob(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, "Acme", sum.Project)
	require.Len(t, sum.Files, 2)
	assert.Equal(t, "AcmeID2001-North-20260102.xlsx", sum.Files[0].Filename)
	assert.Equal(t, "South", sum.Files[1].SplitValue)
	assert.FileExists(t, sum.Files[0].Path)

	out, err := excelize.OpenFile(sum.Files[0].Path)
	require.NoError(t, err)
	defer out.Close()
	rows, err := out.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "North", rows[2][0])

	list, err := svc.ListFiles(context.Background(), "Acme", domain.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	require.Len(t, list.Files, 2)
	assert.Equal(t, "AcmeID2001", list.Files[0].FileID)

	page, err := svc.ListFiles(context.Background(), "Acme", domain.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Files, 1)
	assert.Equal(t, "AcmeID2002", page.Files[0].FileID)

	report, err := svc.FileReport(context.Background(), "Acme", "")
	require.NoError(t, err)
	rf, err := excelize.OpenReader(bytes.NewReader(report))
	require.NoError(t, err)
	defer rf.Close()
	reportRows, err := rf.GetRows("Files")
	require.NoError(t, err)
	require.Len(t, reportRows, 4)
	assert.Equal(t, "Acme output files", reportRows[0][0])
	assert.Equal(t, "File ID", reportRows[1][0])
	assert.Equal(t, []string{"AcmeID2001", "AcmeID2001-North-20260102.xlsx", "2", "Region", "North"}, reportRows[2][:5])
}

func TestGenerationService_FileReportPasswordAndPurge(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)
	require.NoError(t, ledger.BatchSave(ctx, []domain.OutputFile{
		{Project: "Acme", FileID: "AcmeID1001", Filename: "a.xlsx", Path: "/out/a.xlsx"},
		{Project: "Acme", FileID: "AcmeID1002", Filename: "b.xlsx", Path: "/out/b.xlsx"},
		{Project: "Other", FileID: "OtherID1001", Filename: "c.xlsx", Path: "/out/c.xlsx"},
	}))
	svc := NewGenerationService(Options{}, ledger)

	report, err := svc.FileReport(ctx, "Acme", "secret")
	require.NoError(t, err)
	rf, err := excelize.OpenReader(bytes.NewReader(report))
	require.NoError(t, err)
	defer rf.Close()
	assert.Error(t, rf.UnprotectSheet("Files", "wrong"))
	assert.NoError(t, rf.UnprotectSheet("Files", "secret"))

	n, err := svc.PurgeFiles(ctx, "Acme")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err := svc.ListFiles(ctx, "Acme", domain.Page{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
	assert.NotNil(t, list.Files)

	list, err = svc.ListFiles(ctx, "Other", domain.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
}

func TestGenerationService_RunJobMissingSource(t *testing.T) {
	job, err := jobconfig.LoadFromString("source:\n  path: /does/not/exist.xlsx\ntemplates:\n  - main: MAIN\n")
	require.NoError(t, err)

	svc := NewGenerationService(Options{OutputDir: t.TempDir()}, nil)
	_, err = svc.RunJob(context.Background(), job)
	assert.Error(t, err)

	_, err = svc.ListFiles(context.Background(), "Acme", domain.Page{})
	assert.ErrorIs(t, err, ErrNoLedger)
	_, err = svc.FileReport(context.Background(), "Acme", "")
	assert.ErrorIs(t, err, ErrNoLedger)
	_, err = svc.PurgeFiles(context.Background(), "Acme")
	assert.ErrorIs(t, err, ErrNoLedger)
}

func TestGenerationService_Render(t *testing.T) {
	svc := NewGenerationService(Options{ExtraRowCount: 4}, nil)

	data, err := svc.Render(context.Background(), bytes.NewReader(writeSource(t)), RenderRequest{
		SheetName:        "Orders",
		Filter:           `row["Region"] == "North"`,
		ExtraRows:        true,
		WorkbookPassword: "book",
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Orders")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header and two North rows")
	assert.Equal(t, []string{"North", "30"}, rows[2])

	dvs, err := f.GetDataValidations("Orders")
	require.NoError(t, err)
	require.Len(t, dvs, 1)
	assert.Equal(t, "A2:A7", dvs[0].Sqref, "two data rows plus four extra rows")

	visible, err := f.GetSheetVisible(xlsource.DefaultSheetNames.Dropdown)
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestGenerationService_RenderBadUpload(t *testing.T) {
	svc := NewGenerationService(Options{}, nil)
	_, err := svc.Render(context.Background(), bytes.NewReader([]byte("nope")), RenderRequest{})
	assert.Error(t, err)
}
