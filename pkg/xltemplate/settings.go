package xltemplate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RowKind labels one row of the settings block that sits above the data rows
// of a main sheet.
type RowKind string

const (
	KindConfigManager         RowKind = "CONFIG_MANAGER"
	KindHeaderFormat          RowKind = "header_format"
	KindLockSheetConfig       RowKind = "lock_sheet_config"
	KindConditionalFormatting RowKind = "conditional_formatting"
	KindColumnWidth           RowKind = "column_width"
	KindFormula               RowKind = "formula"
	KindDescriptionHeader     RowKind = "description_header"
	KindHeader                RowKind = "HEADER"
	KindExampleRow            RowKind = "example_row"
)

// RowKinds is the fixed vocabulary of settings row labels.
var RowKinds = []RowKind{
	KindConfigManager,
	KindHeaderFormat,
	KindLockSheetConfig,
	KindConditionalFormatting,
	KindColumnWidth,
	KindFormula,
	KindDescriptionHeader,
	KindHeader,
	KindExampleRow,
}

// headerBandKinds are the settings rows rendered above the data, in order.
var headerBandKinds = []RowKind{KindDescriptionHeader, KindHeader, KindExampleRow}

const (
	// DefaultColumnWidth applies to columns without a usable column_width.
	DefaultColumnWidth = 25.0
	// MandatoryFlag in the conditional_formatting row marks a mandatory column.
	MandatoryFlag = "Mandatory"
)

func parseRowKind(label string) (RowKind, error) {
	for _, k := range RowKinds {
		if string(k) == label {
			return k, nil
		}
	}
	accepted := make([]string, len(RowKinds))
	for i, k := range RowKinds {
		accepted[i] = string(k)
	}
	return "", fmt.Errorf("%w (accepted: %s)", ErrUnknownRowKind, strings.Join(accepted, ", "))
}

// Settings is the parsed settings block: one value per output column for each
// row kind present.
type Settings struct {
	kinds []RowKind
	rows  map[RowKind][]string
	width int
}

// ParseSettings validates a settings block. labels[i] is the row label of
// values[i]. Every label must be a recognized row kind and may appear once.
func ParseSettings(labels []string, values [][]string) (*Settings, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("settings: %d labels for %d rows", len(labels), len(values))
	}
	s := &Settings{rows: make(map[RowKind][]string)}
	for _, v := range values {
		if len(v) > s.width {
			s.width = len(v)
		}
	}
	for i, label := range labels {
		label = strings.TrimSpace(label)
		kind, err := parseRowKind(label)
		if err != nil {
			return nil, configError("settings", label, err)
		}
		if _, dup := s.rows[kind]; dup {
			return nil, configError("settings", label, fmt.Errorf("row kind appears more than once"))
		}
		row := make([]string, s.width)
		for j, cell := range values[i] {
			row[j] = strings.TrimSpace(cell)
		}
		s.kinds = append(s.kinds, kind)
		s.rows[kind] = row
	}
	return s, nil
}

// Width returns the number of columns every settings row holds.
func (s *Settings) Width() int {
	return s.width
}

// Has reports whether the settings block contains the row kind.
func (s *Settings) Has(kind RowKind) bool {
	_, ok := s.rows[kind]
	return ok
}

// Row returns a copy of the values of a row kind, or nil when absent.
func (s *Settings) Row(kind RowKind) []string {
	row, ok := s.rows[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(row))
	copy(out, row)
	return out
}

// Kinds returns the row kinds in the order they appeared.
func (s *Settings) Kinds() []RowKind {
	out := make([]RowKind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

// HeaderIndexList returns the header-band row kinds that are present, always
// in the order description_header, HEADER, example_row.
func (s *Settings) HeaderIndexList() []RowKind {
	var out []RowKind
	for _, k := range headerBandKinds {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Headers returns the HEADER row values.
func (s *Settings) Headers() []string {
	return s.Row(KindHeader)
}

// ColumnWidths returns the width of every column. Blank, non-numeric,
// fractional or non-positive entries fall back to DefaultColumnWidth.
func (s *Settings) ColumnWidths() []float64 {
	widths := make([]float64, s.width)
	row := s.rows[KindColumnWidth]
	for i := range widths {
		widths[i] = DefaultColumnWidth
		if row == nil || row[i] == "" {
			continue
		}
		w, err := strconv.ParseFloat(row[i], 64)
		if err != nil || w <= 0 || w != math.Trunc(w) {
			continue
		}
		widths[i] = w
	}
	return widths
}

// project keeps only the given column positions, in order.
func (s *Settings) project(keep []int) *Settings {
	out := &Settings{
		kinds: s.Kinds(),
		rows:  make(map[RowKind][]string, len(s.rows)),
		width: len(keep),
	}
	for kind, row := range s.rows {
		projected := make([]string, len(keep))
		for i, idx := range keep {
			projected[i] = row[idx]
		}
		out.rows[kind] = projected
	}
	return out
}

// Column is one output column with the attributes derived from settings.
type Column struct {
	Index        int // 0-based position in the output sheet
	Header       string
	HeaderFormat Style
	Width        float64
	Lock         Style // empty when the column stays locked
	Mandatory    bool
	Formula      string
}

// Letter returns the column's spreadsheet letters.
func (c Column) Letter() string {
	return ColumnName(c.Index + 1)
}

// columns derives the Column list. Unknown header_format names fail;
// lock_sheet_config values that do not name an unlocked style leave the
// column locked and are reported as warnings.
func (s *Settings) columns() ([]Column, []Diagnostic, error) {
	headers := s.rows[KindHeader]
	if headers == nil {
		return nil, nil, configError("settings", string(KindHeader), ErrMissingHeader)
	}
	widths := s.ColumnWidths()
	formats := s.rows[KindHeaderFormat]
	locks := s.rows[KindLockSheetConfig]
	cf := s.rows[KindConditionalFormatting]
	formulas := s.rows[KindFormula]

	var diags []Diagnostic
	seen := make(map[string]bool, len(headers))
	cols := make([]Column, len(headers))
	for i, h := range headers {
		if seen[h] {
			return nil, nil, configError("settings", h, fmt.Errorf("duplicate HEADER"))
		}
		seen[h] = true

		col := Column{Index: i, Header: h, Width: widths[i], HeaderFormat: StyleBoldHeader}
		if formats != nil && formats[i] != "" {
			style, err := ParseStyle(formats[i])
			if err != nil {
				return nil, nil, configError("settings", string(KindHeaderFormat), fmt.Errorf("column %q: %w", h, err))
			}
			col.HeaderFormat = style
		}
		if locks != nil && locks[i] != "" {
			if style := Style(locks[i]); style.IsUnlocked() {
				col.Lock = style
			} else {
				diags = append(diags, Diagnostic{
					Severity:  SeverityWarning,
					Component: "settings",
					Message:   fmt.Sprintf("column %q: lock config %q is not an unlocked style, column stays locked", h, locks[i]),
				})
			}
		}
		if cf != nil && strings.EqualFold(cf[i], MandatoryFlag) {
			col.Mandatory = true
		}
		if formulas != nil && formulas[i] != "" {
			if !strings.HasPrefix(formulas[i], "=") {
				return nil, nil, configError("settings", string(KindFormula), fmt.Errorf("column %q: formula %q must start with '='", h, formulas[i]))
			}
			col.Formula = formulas[i]
		}
		cols[i] = col
	}
	return cols, diags, nil
}
