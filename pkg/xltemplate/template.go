package xltemplate

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultListSheet names the hidden sheet holding dropdown list values.
	DefaultListSheet = "Dropdown_Lists"
	// DefaultPicklistSheet names the hidden sheet holding the option table's lists.
	DefaultPicklistSheet = "Picklists"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a non-fatal finding recorded while building a template.
type Diagnostic struct {
	Severity  Severity
	Component string
	Message   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Component, d.Message)
}

type templateConfig struct {
	ctx           context.Context
	dropdown      *Table
	listSheet     string
	options       *Table
	picklists     *Table
	picklistSheet string
	conditional   *Table
	filter        string
}

// Option configures New.
type Option func(*templateConfig) error

// WithDropdownLists attaches the range-sourced validation table. Its values
// are written to a hidden sheet named after the table, or DefaultListSheet.
func WithDropdownLists(t *Table) Option {
	return func(c *templateConfig) error {
		c.dropdown = t
		if t != nil && t.Name != "" {
			c.listSheet = t.Name
		}
		return nil
	}
}

// WithValidationOptions attaches the explicit per-column option table and the
// picklist table its range sources point at.
func WithValidationOptions(options, picklists *Table) Option {
	return func(c *templateConfig) error {
		c.options = options
		c.picklists = picklists
		if picklists != nil && picklists.Name != "" {
			c.picklistSheet = picklists.Name
		}
		return nil
	}
}

// WithConditionalFormatting attaches the conditional formatting rule table.
func WithConditionalFormatting(t *Table) Option {
	return func(c *templateConfig) error {
		c.conditional = t
		return nil
	}
}

// WithRowFilter keeps only the data rows for which the expression is true.
func WithRowFilter(expression string) Option {
	return func(c *templateConfig) error {
		c.filter = strings.TrimSpace(expression)
		return nil
	}
}

// WithContext sets the context whose zerolog logger receives diagnostics.
func WithContext(ctx context.Context) Option {
	return func(c *templateConfig) error {
		if ctx == nil {
			return fmt.Errorf("nil context")
		}
		c.ctx = ctx
		return nil
	}
}

// Template is a parsed main sheet with its resolved rule sets. It is not
// modified after New returns.
type Template struct {
	name     string
	settings *Settings
	columns  []Column
	data     [][]string

	listRules     []ValidationRule
	listTable     *Table
	optionRules   []ValidationRule
	picklistTable *Table
	condRules     []ConditionalRule

	diags []Diagnostic
}

// New parses a main sheet whose first column labels settings rows and whose
// blank-labelled rows are data, then resolves the optional rule tables.
func New(main *Table, opts ...Option) (*Template, error) {
	cfg := &templateConfig{
		ctx:           context.Background(),
		listSheet:     DefaultListSheet,
		picklistSheet: DefaultPicklistSheet,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying template option: %w", err)
		}
	}
	if main == nil || len(main.Rows) == 0 {
		return nil, configError("template", "", fmt.Errorf("main sheet is empty"))
	}

	labels, values := main.labelled()
	var settingLabels []string
	var settingValues, data [][]string
	for i, label := range labels {
		if label == "" {
			if !blankRow(values[i]) {
				data = append(data, values[i])
			}
			continue
		}
		settingLabels = append(settingLabels, label)
		settingValues = append(settingValues, values[i])
	}

	settings, err := ParseSettings(settingLabels, settingValues)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", main.Name, err)
	}
	if !settings.Has(KindHeader) {
		return nil, configError("template", main.Name, ErrMissingHeader)
	}

	var keep []int
	for i, h := range settings.Headers() {
		if h != "" {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, configError("template", main.Name, ErrNoColumns)
	}
	settings = settings.project(keep)
	for i, row := range data {
		projected := make([]string, len(keep))
		for j, idx := range keep {
			if idx < len(row) {
				projected[j] = strings.TrimSpace(row[idx])
			}
		}
		data[i] = projected
	}

	columns, diags, err := settings.columns()
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", main.Name, err)
	}

	t := &Template{
		name:     main.Name,
		settings: settings,
		columns:  columns,
		data:     data,
		diags:    diags,
	}

	if cfg.filter != "" {
		filtered, err := filterRows(cfg.filter, t.Headers(), t.data)
		if err != nil {
			return nil, configError("row filter", cfg.filter, err)
		}
		t.data = filtered
	}

	headers := t.Headers()
	if !cfg.dropdown.IsEmpty() {
		rules, table, d, err := ResolveListValidation(cfg.dropdown, cfg.listSheet, headers)
		if err != nil {
			return nil, err
		}
		t.listRules, t.listTable = rules, table
		t.diags = append(t.diags, d...)
	}
	if !cfg.options.IsEmpty() {
		rules, d, err := ResolveOptionValidation(cfg.options, headers)
		if err != nil {
			return nil, err
		}
		t.optionRules = rules
		t.diags = append(t.diags, d...)
		if !cfg.picklists.IsEmpty() {
			t.picklistTable = &Table{Name: cfg.picklistSheet, Rows: cfg.picklists.Rows}
		}
	}
	if !cfg.conditional.IsEmpty() {
		rules, d := ResolveConditionalRules(cfg.conditional, headers)
		t.condRules = rules
		t.diags = append(t.diags, d...)
	}

	logDiagnostics(cfg.ctx, t.name, t.diags)
	return t, nil
}

func logDiagnostics(ctx context.Context, sheet string, diags []Diagnostic) {
	l := zerolog.Ctx(ctx)
	for _, d := range diags {
		ev := l.Debug()
		if d.Severity == SeverityWarning {
			ev = l.Warn()
		}
		ev.Str("sheet", sheet).Str("component", d.Component).Msg(d.Message)
	}
}

// Name returns the main sheet name the template was read from.
func (t *Template) Name() string { return t.name }

// Settings returns the parsed settings block.
func (t *Template) Settings() *Settings { return t.settings }

// Columns returns the output columns in order.
func (t *Template) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Headers returns the HEADER label of every output column.
func (t *Template) Headers() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Header
	}
	return out
}

// Column looks a column up by header.
func (t *Template) Column(header string) (Column, bool) {
	for _, c := range t.columns {
		if c.Header == header {
			return c, true
		}
	}
	return Column{}, false
}

// DataRowCount returns the number of data rows.
func (t *Template) DataRowCount() int { return len(t.data) }

// DistinctValues returns the distinct non-blank values of a column in the
// order they first occur.
func (t *Template) DistinctValues(header string) ([]string, error) {
	col, ok := t.Column(header)
	if !ok {
		return nil, configError("template", header, fmt.Errorf("no such column in sheet %q", t.name))
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.data {
		v := row[col.Index]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

// HasValue reports whether any data row holds value in the column.
func (t *Template) HasValue(header, value string) bool {
	col, ok := t.Column(header)
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	for _, row := range t.data {
		if row[col.Index] == value {
			return true
		}
	}
	return false
}

// ListRules returns the range-sourced validation rules.
func (t *Template) ListRules() []ValidationRule { return t.listRules }

// ListTable returns the dropdown list table to place on a hidden sheet, or nil.
func (t *Template) ListTable() *Table { return t.listTable }

// OptionRules returns the explicit per-column validation rules.
func (t *Template) OptionRules() []ValidationRule { return t.optionRules }

// PicklistTable returns the option table's picklists to place on a hidden
// sheet, or nil.
func (t *Template) PicklistTable() *Table { return t.picklistTable }

// ConditionalRules returns the explicit conditional formatting rules.
func (t *Template) ConditionalRules() []ConditionalRule { return t.condRules }

// Diagnostics returns the non-fatal findings recorded by New.
func (t *Template) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(t.diags))
	copy(out, t.diags)
	return out
}
