package xltemplate

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a source sheet read as plain strings. Readers normalize local
// workbooks and remote spreadsheets into this shape.
type Table struct {
	Name string
	Rows [][]string
}

// NewTable copies rows into a rectangular table padded to the widest row.
func NewTable(name string, rows [][]string) *Table {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		out[i] = row
	}
	return &Table{Name: name, Rows: out}
}

// IsEmpty reports whether the table is nil or holds no non-blank cell.
func (t *Table) IsEmpty() bool {
	if t == nil {
		return true
	}
	for _, r := range t.Rows {
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				return false
			}
		}
	}
	return true
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil || len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// labelled splits a label-first table (main sheet, dropdown sheet) into its
// trimmed first-column labels and the remaining cells.
func (t *Table) labelled() ([]string, [][]string) {
	labels := make([]string, len(t.Rows))
	values := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		if len(r) == 0 {
			values[i] = nil
			continue
		}
		labels[i] = strings.TrimSpace(r[0])
		values[i] = r[1:]
	}
	return labels, values
}

// records splits a header-first table into trimmed column names and the rows
// below them. Fully blank rows are skipped.
func (t *Table) records() ([]string, [][]string) {
	if t == nil || len(t.Rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(t.Rows[0]))
	for i, h := range t.Rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	var rows [][]string
	for _, r := range t.Rows[1:] {
		if blankRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return header, rows
}

func blankRow(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CellRange is a rectangular block of cells, 1-based and inclusive.
type CellRange struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ColumnRange returns the cells of one column between two rows.
func ColumnRange(col, startRow, endRow int) CellRange {
	return CellRange{StartCol: col, StartRow: startRow, EndCol: col, EndRow: endRow}
}

// Empty reports whether the range covers no cell.
func (r CellRange) Empty() bool {
	return r.EndRow < r.StartRow || r.EndCol < r.StartCol
}

// String returns Excel notation for the range, e.g. "B5:B20".
func (r CellRange) String() string {
	start, err := excelize.CoordinatesToCellName(r.StartCol, r.StartRow)
	if err != nil {
		return ""
	}
	end, err := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	if err != nil {
		return ""
	}
	return start + ":" + end
}

// ColumnName converts a 1-based column number to its letters.
func ColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return fmt.Sprintf("?%d", col)
	}
	return name
}
