package xltemplate

import (
	"fmt"
	"strings"
)

// ValidationKind is the type of a data validation rule.
type ValidationKind string

const (
	ValidateList ValidationKind = "list"
	// ValidateAny accepts every value and only shows the input message.
	ValidateAny ValidationKind = "any"
)

// ErrorType is how the spreadsheet reacts to a value that fails validation.
type ErrorType string

const (
	ErrorStop        ErrorType = "stop"
	ErrorWarning     ErrorType = "warning"
	ErrorInformation ErrorType = "information"
)

func parseErrorType(s string) (ErrorType, error) {
	switch t := ErrorType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ErrorStop, nil
	case ErrorStop, ErrorWarning, ErrorInformation:
		return t, nil
	}
	return "", fmt.Errorf("error_type %q must be one of stop, warning, information", s)
}

// ValidationRule is the data validation applied to one column's data cells.
type ValidationRule struct {
	Column string
	Kind   ValidationKind
	// Source is a range reference without the leading "=". It is empty when
	// List holds literal values.
	Source       string
	List         []string
	ErrorType    ErrorType
	InputTitle   string
	InputMessage string
	ErrorTitle   string
	ErrorMessage string
}

// Option keys shared by both validation tables.
const (
	optApplyTo      = "apply_to"
	optValidate     = "validate"
	optSource       = "source"
	optErrorType    = "error_type"
	optInputTitle   = "input_title"
	optInputMessage = "input_message"
	optErrorTitle   = "error_title"
	optErrorMessage = "error_message"
)

var messageOptions = []string{optErrorType, optInputTitle, optInputMessage, optErrorTitle, optErrorMessage}

func (r *ValidationRule) set(key, value string) error {
	switch key {
	case optErrorType:
		t, err := parseErrorType(value)
		if err != nil {
			return err
		}
		r.ErrorType = t
	case optInputTitle:
		r.InputTitle = value
	case optInputMessage:
		r.InputMessage = value
	case optErrorTitle:
		r.ErrorTitle = value
	case optErrorMessage:
		r.ErrorMessage = value
	default:
		return fmt.Errorf("%w %q", ErrUnknownOption, key)
	}
	return nil
}

// ResolveListValidation builds list rules from a dropdown table. The table's
// first column labels rows: one HEADER row naming target columns, optional
// message rows (error_type, input_title, ...) and blank-labelled rows holding
// the list values. Columns that are not template headers get no rule. The
// returned table is what must be written to the hidden sheet the sources
// point at: every named column at its original position, values packed from
// row 2. It depends on the dropdown table only, so templates sharing one
// dropdown table agree on the hidden sheet.
func ResolveListValidation(t *Table, sheet string, headers []string) ([]ValidationRule, *Table, []Diagnostic, error) {
	labels, values := t.labelled()
	headerRow := -1
	for i, l := range labels {
		if l == string(KindHeader) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, nil, []Diagnostic{{
			Severity:  SeverityWarning,
			Component: "dropdown lists",
			Message:   fmt.Sprintf("sheet %q has no HEADER row, list validation disabled", t.Name),
		}}, nil
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	var diags []Diagnostic
	var rules []ValidationRule
	names := make([]string, len(values[headerRow]))
	lists := make([][]string, len(values[headerRow]))
	for j, cell := range values[headerRow] {
		h := strings.TrimSpace(cell)
		if h == "" {
			continue
		}

		rule := ValidationRule{Column: h, Kind: ValidateList, ErrorType: ErrorStop}
		for i, l := range labels {
			v := ""
			if j < len(values[i]) {
				v = strings.TrimSpace(values[i][j])
			}
			switch {
			case i == headerRow || v == "":
			case l == "":
				lists[j] = append(lists[j], v)
			case known[h] && contains(messageOptions, l):
				if err := rule.set(l, v); err != nil {
					return nil, nil, nil, configError("dropdown lists", h, err)
				}
			}
		}
		if len(lists[j]) > 0 {
			names[j] = h
		}

		switch {
		case !known[h]:
			diags = append(diags, Diagnostic{
				Severity:  SeverityInfo,
				Component: "dropdown lists",
				Message:   fmt.Sprintf("column %q is not a template header, skipped", h),
			})
		case len(lists[j]) == 0:
			diags = append(diags, Diagnostic{
				Severity:  SeverityWarning,
				Component: "dropdown lists",
				Message:   fmt.Sprintf("column %q has no list values, skipped", h),
			})
		default:
			letter := ColumnName(j + 1)
			rule.Source = fmt.Sprintf("%s!$%s$2:$%s$%d", quoteSheet(sheet), letter, letter, len(lists[j])+1)
			rules = append(rules, rule)
		}
	}

	for i, l := range labels {
		if l != "" && l != string(KindHeader) && !contains(messageOptions, l) {
			diags = append(diags, Diagnostic{
				Severity:  SeverityInfo,
				Component: "dropdown lists",
				Message:   fmt.Sprintf("row %d label %q ignored", i+1, l),
			})
		}
	}
	if len(rules) == 0 {
		return nil, nil, diags, nil
	}
	return rules, listTable(sheet, names, lists), diags, nil
}

// listTable lays out the named lists at their column positions. Trailing
// unnamed columns are dropped.
func listTable(sheet string, names []string, lists [][]string) *Table {
	width, depth := 0, 0
	for j, n := range names {
		if n == "" {
			continue
		}
		width = j + 1
		if len(lists[j]) > depth {
			depth = len(lists[j])
		}
	}
	rows := make([][]string, depth+1)
	for i := range rows {
		rows[i] = make([]string, width)
	}
	for j := 0; j < width; j++ {
		if names[j] == "" {
			continue
		}
		rows[0][j] = names[j]
		for i, v := range lists[j] {
			rows[i+1][j] = v
		}
	}
	return &Table{Name: sheet, Rows: rows}
}

func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var optionColumns = []string{
	optApplyTo, optValidate, optSource, optErrorType,
	optInputTitle, optInputMessage, optErrorTitle, optErrorMessage,
}

// ResolveOptionValidation builds rules from an explicit option table, one rule
// per row keyed by its apply_to column. Only non-blank fields are kept. A
// column name outside the fixed option schema is an error; rows naming an
// unknown target column or an unsupported kind are dropped. When several rows
// target the same column the last one wins.
func ResolveOptionValidation(t *Table, headers []string) ([]ValidationRule, []Diagnostic, error) {
	names, rows := t.records()
	hasApplyTo := false
	for _, n := range names {
		if n == "" {
			continue
		}
		if !contains(optionColumns, n) {
			return nil, nil, configError("validation options", n,
				fmt.Errorf("%w (accepted: %s)", ErrUnknownOption, strings.Join(optionColumns, ", ")))
		}
		if n == optApplyTo {
			hasApplyTo = true
		}
	}
	if !hasApplyTo {
		return nil, nil, configError("validation options", optApplyTo, fmt.Errorf("required column is missing"))
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}

	var diags []Diagnostic
	drop := func(row int, format string, args ...any) {
		diags = append(diags, Diagnostic{
			Severity:  SeverityWarning,
			Component: "validation options",
			Message:   fmt.Sprintf("row %d: ", row+2) + fmt.Sprintf(format, args...),
		})
	}

	index := make(map[string]int)
	var rules []ValidationRule
	for i, r := range rows {
		fields := make(map[string]string)
		for j, n := range names {
			if n == "" || j >= len(r) {
				continue
			}
			if v := strings.TrimSpace(r[j]); v != "" {
				fields[n] = v
			}
		}

		target := fields[optApplyTo]
		if target == "" {
			drop(i, "apply_to is blank")
			continue
		}
		if !known[target] {
			drop(i, "apply_to %q is not a template header", target)
			continue
		}

		rule := ValidationRule{Column: target, Kind: ValidateList, ErrorType: ErrorStop}
		if k, ok := fields[optValidate]; ok {
			rule.Kind = ValidationKind(strings.ToLower(k))
		}
		if rule.Kind != ValidateList && rule.Kind != ValidateAny {
			drop(i, "validate %q is not supported", fields[optValidate])
			continue
		}
		if src, ok := fields[optSource]; ok {
			if strings.HasPrefix(src, "=") {
				rule.Source = strings.TrimPrefix(src, "=")
			} else {
				for _, item := range strings.Split(src, ",") {
					if item = strings.TrimSpace(item); item != "" {
						rule.List = append(rule.List, item)
					}
				}
			}
		}
		if rule.Kind == ValidateList && rule.Source == "" && len(rule.List) == 0 {
			drop(i, "list validation for %q has no source", target)
			continue
		}
		for _, key := range messageOptions {
			if v, ok := fields[key]; ok {
				if err := rule.set(key, v); err != nil {
					return nil, nil, configError("validation options", target, err)
				}
			}
		}

		if pos, dup := index[target]; dup {
			rules[pos] = rule
			continue
		}
		index[target] = len(rules)
		rules = append(rules, rule)
	}
	return rules, diags, nil
}
