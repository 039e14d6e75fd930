package xltemplate

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName = "Sheet1"
	lastColumnName   = "XFD"
	visibleRowHeight = 15
)

// Workbook is the excelize implementation of SheetWriter.
type Workbook struct {
	f      *excelize.File
	styles map[Style]int
	dxfs   map[Style]int
	// fresh is true until the default sheet has been claimed
	fresh bool
}

var _ SheetWriter = (*Workbook)(nil)

// NewWorkbook creates an empty in-memory workbook.
func NewWorkbook() *Workbook {
	return &Workbook{
		f:      excelize.NewFile(),
		styles: make(map[Style]int),
		dxfs:   make(map[Style]int),
		fresh:  true,
	}
}

// File exposes the underlying excelize file.
func (wb *Workbook) File() *excelize.File { return wb.f }

// SaveAs writes the workbook to path.
func (wb *Workbook) SaveAs(path string) error {
	return wb.f.SaveAs(path)
}

// WriteTo writes the workbook to w.
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	return wb.f.WriteTo(w)
}

// Close releases the workbook.
func (wb *Workbook) Close() error {
	return wb.f.Close()
}

func (wb *Workbook) AddSheet(name string) error {
	if wb.fresh {
		wb.fresh = false
		if name == defaultSheetName {
			return nil
		}
		return wb.f.SetSheetName(defaultSheetName, name)
	}
	if wb.HasSheet(name) {
		return fmt.Errorf("sheet %q already exists", name)
	}
	_, err := wb.f.NewSheet(name)
	return err
}

func (wb *Workbook) HasSheet(name string) bool {
	if wb.fresh {
		return false
	}
	idx, err := wb.f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func (wb *Workbook) HideSheet(name string) error {
	return wb.f.SetSheetVisible(name, false)
}

func (wb *Workbook) WriteRow(sheet string, row int, values []any) error {
	for j, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, row)
		if err != nil {
			return err
		}
		if f, ok := v.(Formula); ok {
			err = wb.f.SetCellFormula(sheet, cell, strings.TrimPrefix(string(f), "="))
		} else {
			err = wb.f.SetCellValue(sheet, cell, v)
		}
		if err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
	}
	return nil
}

func (wb *Workbook) SetStyle(sheet string, rng CellRange, style Style) error {
	if rng.Empty() {
		return nil
	}
	id, err := wb.styleID(style)
	if err != nil {
		return err
	}
	start, end := splitRange(rng)
	return wb.f.SetCellStyle(sheet, start, end, id)
}

func (wb *Workbook) AddValidation(sheet string, rng CellRange, rule ValidationRule) error {
	dv := excelize.NewDataValidation(true)
	dv.SetSqref(rng.String())
	if rule.Kind == ValidateList {
		if rule.Source != "" {
			dv.SetSqrefDropList(rule.Source)
		} else if err := dv.SetDropList(rule.List); err != nil {
			return err
		}
	}
	if rule.InputTitle != "" || rule.InputMessage != "" {
		dv.SetInput(rule.InputTitle, rule.InputMessage)
	}
	if rule.Kind == ValidateList {
		dv.SetError(errorStyle(rule.ErrorType), rule.ErrorTitle, rule.ErrorMessage)
	}
	return wb.f.AddDataValidation(sheet, dv)
}

func errorStyle(t ErrorType) excelize.DataValidationErrorStyle {
	switch t {
	case ErrorWarning:
		return excelize.DataValidationErrorStyleWarning
	case ErrorInformation:
		return excelize.DataValidationErrorStyleInformation
	}
	return excelize.DataValidationErrorStyleStop
}

func (wb *Workbook) AddConditionalFormat(sheet string, rng CellRange, rule ConditionalRule) error {
	id, err := wb.dxfID(rule.Format)
	if err != nil {
		return err
	}
	opt := excelize.ConditionalFormatOptions{
		Type:     rule.Type,
		Criteria: rule.Criteria,
		Value:    rule.Value,
		Format:   id,
	}
	switch rule.Type {
	case "formula":
		opt.Criteria = strings.TrimPrefix(rule.Criteria, "=")
	case "cell":
		if lo, hi, ok := strings.Cut(rule.Value, ","); ok {
			opt.Value = ""
			opt.MinValue, opt.MaxValue = strings.TrimSpace(lo), strings.TrimSpace(hi)
		}
	case "duplicate", "unique", "blanks", "no_blanks", "errors", "no_errors":
		opt.Criteria = "="
	}
	return wb.f.SetConditionalFormat(sheet, rng.String(), []excelize.ConditionalFormatOptions{opt})
}

func (wb *Workbook) SetColumnWidth(sheet string, col int, width float64) error {
	name := ColumnName(col)
	return wb.f.SetColWidth(sheet, name, name, width)
}

// HideRowsAfter hides every row below row by making zero height the sheet
// default and giving rows 1..row an explicit height.
func (wb *Workbook) HideRowsAfter(sheet string, row int) error {
	zero := true
	if err := wb.f.SetSheetProps(sheet, &excelize.SheetPropsOptions{ZeroHeight: &zero}); err != nil {
		return err
	}
	for r := 1; r <= row; r++ {
		if err := wb.f.SetRowHeight(sheet, r, visibleRowHeight); err != nil {
			return err
		}
	}
	return nil
}

func (wb *Workbook) HideColumnsAfter(sheet string, col int) error {
	if col >= excelize.MaxColumns {
		return nil
	}
	return wb.f.SetColVisible(sheet, ColumnName(col+1)+":"+lastColumnName, false)
}

func (wb *Workbook) ProtectSheet(sheet string, sp *SheetProtection) error {
	return wb.f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
		Password:            sp.Password,
		SelectLockedCells:   sp.AllowSelectLocked,
		SelectUnlockedCells: sp.AllowSelectUnlocked,
		FormatColumns:       sp.AllowFormatColumns,
		AutoFilter:          sp.AllowFilter,
	})
}

func splitRange(rng CellRange) (string, string) {
	start, _ := excelize.CoordinatesToCellName(rng.StartCol, rng.StartRow)
	end, _ := excelize.CoordinatesToCellName(rng.EndCol, rng.EndRow)
	return start, end
}

func (wb *Workbook) styleID(style Style) (int, error) {
	if id, ok := wb.styles[style]; ok {
		return id, nil
	}
	if !style.Valid() {
		return 0, fmt.Errorf("%w %q", ErrUnknownStyle, style)
	}
	id, err := wb.f.NewStyle(toExcelizeStyle(style.Attributes()))
	if err != nil {
		return 0, fmt.Errorf("creating style %q: %w", style, err)
	}
	wb.styles[style] = id
	return id, nil
}

func (wb *Workbook) dxfID(style Style) (int, error) {
	if id, ok := wb.dxfs[style]; ok {
		return id, nil
	}
	if !style.Valid() {
		return 0, fmt.Errorf("%w %q", ErrUnknownStyle, style)
	}
	attr := style.Attributes()
	s := &excelize.Style{Font: &excelize.Font{Bold: attr.FontBold, Italic: attr.FontItalic}}
	if attr.FontColor != "" {
		s.Font.Color = strings.TrimPrefix(attr.FontColor, "#")
	}
	if attr.FillColor != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(attr.FillColor, "#")}}
	}
	id, err := wb.f.NewConditionalStyle(s)
	if err != nil {
		return 0, fmt.Errorf("creating conditional style %q: %w", style, err)
	}
	wb.dxfs[style] = id
	return id, nil
}

// toExcelizeStyle maps a style record onto excelize's style model.
func toExcelizeStyle(style CellStyle) *excelize.Style {
	excelStyle := &excelize.Style{
		Font: &excelize.Font{
			Bold:   style.FontBold,
			Italic: style.FontItalic,
			Size:   style.FontSize,
			Family: style.FontName,
		},
		Alignment: &excelize.Alignment{
			Horizontal: style.Alignment,
			Vertical:   style.VerticalAlign,
			WrapText:   style.WrapText,
		},
		Protection: &excelize.Protection{
			Locked: style.Locked,
		},
	}

	if style.FontColor != "" {
		excelStyle.Font.Color = strings.TrimPrefix(style.FontColor, "#")
	}

	if style.FillColor != "" {
		excelStyle.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: style.FillPattern,
			Color:   []string{strings.TrimPrefix(style.FillColor, "#")},
		}
	}

	if style.BorderStyle != "" {
		borderColor := "000000"
		if style.BorderColor != "" {
			borderColor = strings.TrimPrefix(style.BorderColor, "#")
		}
		excelStyle.Border = []excelize.Border{
			{Type: "left", Color: borderColor, Style: 1},
			{Type: "top", Color: borderColor, Style: 1},
			{Type: "bottom", Color: borderColor, Style: 1},
			{Type: "right", Color: borderColor, Style: 1},
		}
	}

	if style.NumberFormat != "" {
		numFmt := style.NumberFormat
		excelStyle.CustomNumFmt = &numFmt
	}
	return excelStyle
}

// ProtectWorkbookFile reopens a saved workbook, locks its structure with
// password and saves it in place.
func ProtectWorkbookFile(path, password string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := f.ProtectWorkbook(&excelize.WorkbookProtectionOptions{
		Password:      password,
		LockStructure: true,
	}); err != nil {
		return fmt.Errorf("protecting workbook %s: %w", path, err)
	}
	return f.Save()
}

// ProtectWorkbookBytes is ProtectWorkbookFile for an in-memory workbook.
func ProtectWorkbookBytes(data []byte, password string) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if err := f.ProtectWorkbook(&excelize.WorkbookProtectionOptions{
		Password:      password,
		LockStructure: true,
	}); err != nil {
		return nil, fmt.Errorf("protecting workbook: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
