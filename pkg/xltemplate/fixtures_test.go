package xltemplate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// mainSheet is a three column main sheet with two header rows and three data
// rows.
func mainSheet() *Table {
	return NewTable("MAIN", [][]string{
		{"CONFIG_MANAGER", "v1", "", ""},
		{"header_format", "blue_header", "", ""},
		{"lock_sheet_config", "unlocked_text", "unlocked_currency", ""},
		{"conditional_formatting", "", "Mandatory", ""},
		{"column_width", "30", "", "20"},
		{"HEADER", "Name", "Amount", "Active"},
		{"example_row", "Jane", "10.5", "Yes"},
		{"", "Alice", "100", "Yes"},
		{"", "Bob", "abc", "No"},
		{"", "Carol", "", "Yes"},
	})
}

func dropdownSheet() *Table {
	return NewTable("Dropdown_Lists", [][]string{
		{"HEADER", "Active", "Unknown", "Name"},
		{"error_type", "warning", "", ""},
		{"input_title", "Pick one", "", ""},
		{"", "Yes", "x", "Alice"},
		{"", "No", "", ""},
		{"", "", "", "Bob"},
	})
}

func optionSheet() *Table {
	return NewTable("Data_Validation", [][]string{
		{"apply_to", "validate", "source", "error_type", "input_title", "input_message", "error_title", "error_message"},
		{"Name", "list", "=Picklists!$A$2:$A$4", "", "", "", "Bad name", "Pick a listed name"},
		{"Missing", "list", "a,b", "", "", "", "", ""},
	})
}

func picklistSheet() *Table {
	return NewTable("Picklists", [][]string{
		{"Names"},
		{"Alice"},
		{"Bob"},
		{"Carol"},
	})
}

func conditionalSheet() *Table {
	return NewTable("Conditional_Formatting", [][]string{
		{"apply_to", "type", "criteria", "format"},
		{"Amount", "cell", ">", "error_highlight"},
		{"Active", "formula", `=$C3="No"`, "neutral_highlight"},
		{"Nope", "formula", "=TRUE", "good_highlight"},
	})
}

func newTemplate(t *testing.T, opts ...Option) *Template {
	t.Helper()
	tmpl, err := New(mainSheet(), opts...)
	require.NoError(t, err)
	return tmpl
}

// recorder is a SheetWriter that logs every call.
type recorder struct {
	calls  []string
	sheets map[string]bool
}

func newRecorder() *recorder {
	return &recorder{sheets: make(map[string]bool)}
}

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) AddSheet(name string) error {
	r.sheets[name] = true
	r.log("AddSheet %s", name)
	return nil
}

func (r *recorder) HasSheet(name string) bool { return r.sheets[name] }

func (r *recorder) HideSheet(name string) error {
	r.log("HideSheet %s", name)
	return nil
}

func (r *recorder) WriteRow(sheet string, row int, values []any) error {
	r.log("WriteRow %s %d", sheet, row)
	return nil
}

func (r *recorder) SetStyle(sheet string, rng CellRange, style Style) error {
	r.log("SetStyle %s %s %s", sheet, rng, style)
	return nil
}

func (r *recorder) AddValidation(sheet string, rng CellRange, rule ValidationRule) error {
	r.log("AddValidation %s %s %s", sheet, rng, rule.Column)
	return nil
}

func (r *recorder) AddConditionalFormat(sheet string, rng CellRange, rule ConditionalRule) error {
	r.log("AddConditionalFormat %s %s %s %s", sheet, rng, rule.Type, rule.Format)
	return nil
}

func (r *recorder) SetColumnWidth(sheet string, col int, width float64) error {
	r.log("SetColumnWidth %s %d %g", sheet, col, width)
	return nil
}

func (r *recorder) HideRowsAfter(sheet string, row int) error {
	r.log("HideRowsAfter %s %d", sheet, row)
	return nil
}

func (r *recorder) HideColumnsAfter(sheet string, col int) error {
	r.log("HideColumnsAfter %s %d", sheet, col)
	return nil
}

func (r *recorder) ProtectSheet(sheet string, sp *SheetProtection) error {
	r.log("ProtectSheet %s", sheet)
	return nil
}

// first returns the index of the first call starting with prefix, or -1.
func (r *recorder) first(prefix string) int {
	for i, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			return i
		}
	}
	return -1
}

func (r *recorder) matching(prefix string) []string {
	var out []string
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

var testCtx = context.Background()
