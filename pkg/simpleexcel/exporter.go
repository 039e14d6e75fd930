package simpleexcel

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/xuri/excelize/v2"
)

// DataExporter writes slices of structs as tables, one sheet each.
type DataExporter struct {
	sheets []*SheetBuilder
}

// ColumnConfig defines a column of a sheet.
type ColumnConfig struct {
	FieldName string // Struct field name, or Field_key for map fields
	Header    string
	Width     float64
}

// SheetBuilder collects the layout of one sheet.
type SheetBuilder struct {
	exporter *DataExporter
	name     string
	title    string
	columns  []ColumnConfig
	data     interface{}
	password string
}

func NewDataExporter() *DataExporter {
	return &DataExporter{}
}

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{exporter: e, name: name}
	e.sheets = append(e.sheets, sb)
	return sb
}

// WithTitle writes a bold title row above the header.
func (sb *SheetBuilder) WithTitle(title string) *SheetBuilder {
	sb.title = title
	return sb
}

// AddColumn appends a column. Without columns every exported field is
// written, headed by its name.
func (sb *SheetBuilder) AddColumn(fieldName, header string, width float64) *SheetBuilder {
	sb.columns = append(sb.columns, ColumnConfig{FieldName: fieldName, Header: header, Width: width})
	return sb
}

// WithData binds a slice of structs (or struct pointers).
func (sb *SheetBuilder) WithData(data interface{}) *SheetBuilder {
	sb.data = data
	return sb
}

// Protect locks the sheet with password.
func (sb *SheetBuilder) Protect(password string) *SheetBuilder {
	sb.password = password
	return sb
}

// Build returns the parent exporter.
func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// StreamTo writes the workbook to w, streaming each sheet's rows.
func (e *DataExporter) StreamTo(w io.Writer) error {
	if len(e.sheets) == 0 {
		return fmt.Errorf("no sheets to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return err
	}

	for i, sb := range e.sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sb.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sb.name); err != nil {
			return err
		}
		if err := sb.stream(f, titleStyle, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", sb.name, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// ToBytes exports the workbook to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.StreamTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (sb *SheetBuilder) stream(f *excelize.File, titleStyle, headerStyle int) error {
	var (
		rows []reflect.Value
		typ  reflect.Type
		err  error
	)
	if sb.data != nil {
		if rows, typ, err = elements(sb.data); err != nil {
			return err
		}
	}
	columns := sb.columns
	if len(columns) == 0 && typ != nil {
		for _, name := range fieldNames(typ) {
			columns = append(columns, ColumnConfig{FieldName: name, Header: name})
		}
	}

	// The stream writer keeps the worksheet's protection only when it is set
	// before the writer is created.
	if sb.password != "" {
		if err := f.ProtectSheet(sb.name, &excelize.SheetProtectionOptions{
			Password:            sb.password,
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		}); err != nil {
			return err
		}
	}

	sw, err := f.NewStreamWriter(sb.name)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	for i, col := range columns {
		if col.Width > 0 {
			if err := sw.SetColWidth(i+1, i+1, col.Width); err != nil {
				return err
			}
		}
	}

	rowNum := 1
	if sb.title != "" {
		if err := sw.SetRow("A1", []interface{}{sb.title}, excelize.RowOpts{StyleID: titleStyle}); err != nil {
			return err
		}
		rowNum++
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col.Header}
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := sw.SetRow(cell, header); err != nil {
		return err
	}
	rowNum++

	for _, item := range rows {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = extractValue(item, col.FieldName)
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("error writing row %d: %w", rowNum, err)
		}
		rowNum++
	}
	return sw.Flush()
}
