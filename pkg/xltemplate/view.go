package xltemplate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultExtraRowCount is the number of blank rows appended when extra rows
// are enabled without an explicit count.
const DefaultExtraRowCount = 100

// Band is the section of the rendered sheet a row belongs to.
type Band int

const (
	BandHeader Band = iota
	BandData
	BandExtra
)

func (b Band) String() string {
	switch b {
	case BandHeader:
		return "header"
	case BandData:
		return "data"
	case BandExtra:
		return "extra"
	}
	return fmt.Sprintf("Band(%d)", int(b))
}

// Formula is a cell value written as a formula rather than as text.
type Formula string

// Row is one rendered row tagged with its band. Header rows also carry the
// settings row kind they came from.
type Row struct {
	Band   Band
	Kind   RowKind
	Values []any
}

// Filter restricts the data band to rows whose Column equals Value.
type Filter struct {
	Column string
	Value  string
}

// RenderOptions controls how a template is laid out.
type RenderOptions struct {
	ExtraRows     bool
	ExtraRowCount int
	// SkipNumeric disables numeric coercion of number-formatted columns.
	SkipNumeric bool
	Filter      *Filter
}

// View is the list of rows to write for one sheet.
type View struct {
	Sheet   string
	Columns []Column
	Rows    []Row
}

// Render lays out the header band, the data band and the optional extra band.
// It does not modify the template and caches nothing.
func (t *Template) Render(opts RenderOptions) (*View, error) {
	if opts.ExtraRowCount < 0 {
		return nil, configError("render", "extra_row_count", fmt.Errorf("must not be negative, got %d", opts.ExtraRowCount))
	}
	v := &View{Sheet: t.name, Columns: t.Columns()}

	for _, kind := range t.settings.HeaderIndexList() {
		v.Rows = append(v.Rows, Row{Band: BandHeader, Kind: kind, Values: toValues(t.settings.Row(kind))})
	}

	match := -1
	if opts.Filter != nil {
		col, ok := t.Column(opts.Filter.Column)
		if !ok {
			return nil, configError("render", opts.Filter.Column, fmt.Errorf("split column not found in sheet %q", t.name))
		}
		match = col.Index
	}
	for _, r := range t.data {
		if match >= 0 && r[match] != strings.TrimSpace(opts.Filter.Value) {
			continue
		}
		v.Rows = append(v.Rows, Row{Band: BandData, Values: toValues(r)})
	}

	if opts.ExtraRows {
		for i := 0; i < opts.ExtraRowCount; i++ {
			v.Rows = append(v.Rows, Row{Band: BandExtra, Values: make([]any, len(t.columns))})
		}
	}

	if !opts.SkipNumeric {
		v.CoerceNumericColumns()
	}
	v.ApplyFormulaOverrides()
	return v, nil
}

func toValues(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		if c != "" {
			out[i] = c
		}
	}
	return out
}

// Len returns the total number of rendered rows.
func (v *View) Len() int { return len(v.Rows) }

// BandSize counts the rows of a band.
func (v *View) BandSize(b Band) int {
	n := 0
	for _, r := range v.Rows {
		if r.Band == b {
			n++
		}
	}
	return n
}

// HeaderRow returns the 0-based position of the HEADER row.
func (v *View) HeaderRow() (int, error) {
	for i, r := range v.Rows {
		if r.Band == BandHeader && r.Kind == KindHeader {
			return i, nil
		}
	}
	return 0, &StructureError{Sheet: v.Sheet, Err: ErrMissingHeader}
}

// DataStartRow returns the 0-based position of the first data row.
func (v *View) DataStartRow() (int, error) {
	for i, r := range v.Rows {
		if r.Band == BandData {
			return i, nil
		}
	}
	return 0, &StructureError{Sheet: v.Sheet, Err: ErrNoDataRows}
}

// DataEndRow returns the 0-based position of the last data row.
func (v *View) DataEndRow() (int, error) {
	for i := len(v.Rows) - 1; i >= 0; i-- {
		if v.Rows[i].Band == BandData {
			return i, nil
		}
	}
	return 0, &StructureError{Sheet: v.Sheet, Err: ErrNoDataRows}
}

// ExtraStartRow returns the 0-based position of the first extra row, or -1.
func (v *View) ExtraStartRow() int {
	for i, r := range v.Rows {
		if r.Band == BandExtra {
			return i
		}
	}
	return -1
}

// CoerceNumericColumns converts data cells of number-formatted columns to
// float64 where they parse to a finite number. Other cells are left as they
// are.
func (v *View) CoerceNumericColumns() {
	var numeric []int
	for _, c := range v.Columns {
		if c.Lock.IsNumeric() {
			numeric = append(numeric, c.Index)
		}
	}
	if len(numeric) == 0 {
		return
	}
	for _, r := range v.Rows {
		if r.Band != BandData {
			continue
		}
		for _, idx := range numeric {
			s, ok := r.Values[idx].(string)
			if !ok {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				continue
			}
			r.Values[idx] = f
		}
	}
}

// ApplyFormulaOverrides replaces every data cell of a column that declares a
// formula with that formula. A "{row}" token becomes the cell's sheet row.
func (v *View) ApplyFormulaOverrides() {
	for _, c := range v.Columns {
		if c.Formula == "" {
			continue
		}
		for i, r := range v.Rows {
			if r.Band != BandData {
				continue
			}
			r.Values[c.Index] = Formula(strings.ReplaceAll(c.Formula, "{row}", strconv.Itoa(i+1)))
		}
	}
}
