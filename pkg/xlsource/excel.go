package xlsource

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// Workbook reads sheets of a local xlsx file.
type Workbook struct {
	f *excelize.File
}

// OpenWorkbook opens an xlsx file.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Workbook{f: f}, nil
}

// ReadWorkbook reads an xlsx file from r.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	return &Workbook{f: f}, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Table returns the formatted text of every cell of a sheet.
func (w *Workbook) Table(_ context.Context, sheet string) (*xltemplate.Table, error) {
	if idx, err := w.f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading rows of %q: %w", sheet, err)
	}
	return xltemplate.NewTable(sheet, rows), nil
}
