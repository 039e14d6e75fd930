package xltemplate

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func renderWorkbook(t *testing.T, password string) *excelize.File {
	t.Helper()
	tmpl := newTemplate(t,
		WithDropdownLists(dropdownSheet()),
		WithValidationOptions(optionSheet(), picklistSheet()),
	)
	v, err := tmpl.Render(RenderOptions{ExtraRows: true, ExtraRowCount: 2})
	require.NoError(t, err)

	wb := NewWorkbook()
	require.NoError(t, NewRenderer(wb).RenderSheet(testCtx, tmpl, v, SheetOptions{Password: password}))

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func isLocked(t *testing.T, f *excelize.File, sheet, cell string) bool {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	if style.Protection == nil {
		return true
	}
	return style.Protection.Locked
}

func TestWorkbook_RendersSheets(t *testing.T) {
	f := renderWorkbook(t, "pw")

	assert.Equal(t, []string{"MAIN", "Dropdown_Lists", "Picklists"}, f.GetSheetList())
	visible, err := f.GetSheetVisible("Dropdown_Lists")
	require.NoError(t, err)
	assert.False(t, visible)
	visible, err = f.GetSheetVisible("MAIN")
	require.NoError(t, err)
	assert.True(t, visible)

	name, err := f.GetCellValue("MAIN", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
	amount, err := f.GetCellValue("MAIN", "B3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "100", amount)
	header, err := f.GetCellValue("MAIN", "C1")
	require.NoError(t, err)
	assert.Equal(t, "Active", header)

	list, err := f.GetCellValue("Dropdown_Lists", "C3")
	require.NoError(t, err)
	assert.Equal(t, "Bob", list)
}

func TestWorkbook_ColumnWidthsAndHiding(t *testing.T) {
	f := renderWorkbook(t, "pw")

	for col, want := range map[string]float64{"A": 30, "B": 25, "C": 20} {
		got, err := f.GetColWidth("MAIN", col)
		require.NoError(t, err)
		assert.Equal(t, want, got, col)
	}

	visible, err := f.GetColVisible("MAIN", "C")
	require.NoError(t, err)
	assert.True(t, visible)
	visible, err = f.GetColVisible("MAIN", "D")
	require.NoError(t, err)
	assert.False(t, visible)

	props, err := f.GetSheetProps("MAIN")
	require.NoError(t, err)
	require.NotNil(t, props.ZeroHeight)
	assert.True(t, *props.ZeroHeight)

	height, err := f.GetRowHeight("MAIN", 7)
	require.NoError(t, err)
	assert.Equal(t, float64(visibleRowHeight), height)
}

func TestWorkbook_ValidationsAndConditionalFormats(t *testing.T) {
	f := renderWorkbook(t, "")

	dvs, err := f.GetDataValidations("MAIN")
	require.NoError(t, err)
	require.Len(t, dvs, 2)
	assert.Equal(t, "C3:C7", dvs[0].Sqref)
	assert.Equal(t, "A3:A7", dvs[1].Sqref)

	formats, err := f.GetConditionalFormats("MAIN")
	require.NoError(t, err)
	require.Contains(t, formats, "B3:B5")
	assert.Len(t, formats, 1, "only the mandatory column is highlighted")
}

func TestWorkbook_Locking(t *testing.T) {
	f := renderWorkbook(t, "pw")

	assert.True(t, isLocked(t, f, "MAIN", "A1"), "header cells stay locked")
	assert.False(t, isLocked(t, f, "MAIN", "A3"))
	assert.False(t, isLocked(t, f, "MAIN", "B4"))
	assert.True(t, isLocked(t, f, "MAIN", "C3"), "column without lock config")
	assert.False(t, isLocked(t, f, "MAIN", "C6"), "extra rows are editable")

	assert.Error(t, f.UnprotectSheet("MAIN", "wrong"))
	assert.NoError(t, f.UnprotectSheet("MAIN", "pw"))
}

func TestWorkbook_WriteRowFormula(t *testing.T) {
	wb := NewWorkbook()
	defer wb.Close()

	require.NoError(t, wb.AddSheet("Data"))
	require.NoError(t, wb.WriteRow("Data", 1, []any{2.0, nil, Formula("=A1*2")}))

	formula, err := wb.File().GetCellFormula("Data", "C1")
	require.NoError(t, err)
	assert.Equal(t, "A1*2", formula)
	assert.Equal(t, []string{"Data"}, wb.File().GetSheetList())
	assert.True(t, wb.HasSheet("Data"))
	assert.False(t, wb.HasSheet("Other"))
	assert.Error(t, wb.AddSheet("Data"))
}

func TestProtectWorkbookBytes(t *testing.T) {
	wb := NewWorkbook()
	require.NoError(t, wb.AddSheet("Data"))
	buf, err := wb.File().WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	protected, err := ProtectWorkbookBytes(buf.Bytes(), "secret")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(protected))
	require.NoError(t, err)
	defer f.Close()
	assert.Error(t, f.UnprotectWorkbook("wrong"))
	assert.NoError(t, f.UnprotectWorkbook("secret"))
}

func TestProtectWorkbookFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	wb := NewWorkbook()
	require.NoError(t, wb.AddSheet("Data"))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	require.NoError(t, ProtectWorkbookFile(path, "secret"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Error(t, f.UnprotectWorkbook("wrong"))

	assert.Error(t, ProtectWorkbookFile(filepath.Join(t.TempDir(), "missing.xlsx"), "secret"))
}
