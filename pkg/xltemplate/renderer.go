package xltemplate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// SheetWriter is the spreadsheet file writer a Renderer drives. Rows and
// columns are 1-based.
type SheetWriter interface {
	AddSheet(name string) error
	HasSheet(name string) bool
	HideSheet(name string) error
	WriteRow(sheet string, row int, values []any) error
	SetStyle(sheet string, rng CellRange, style Style) error
	AddValidation(sheet string, rng CellRange, rule ValidationRule) error
	AddConditionalFormat(sheet string, rng CellRange, rule ConditionalRule) error
	SetColumnWidth(sheet string, col int, width float64) error
	HideRowsAfter(sheet string, row int) error
	HideColumnsAfter(sheet string, col int) error
	ProtectSheet(sheet string, sp *SheetProtection) error
}

// Renderer writes rendered views through a SheetWriter.
type Renderer struct {
	w SheetWriter
}

// NewRenderer creates a renderer for one workbook.
func NewRenderer(w SheetWriter) *Renderer {
	return &Renderer{w: w}
}

// SheetOptions names the output sheet and its protection password.
type SheetOptions struct {
	// Name of the output sheet; the template name when empty.
	Name     string
	Password string
}

// RenderSheet writes one template view as a new sheet. The steps run in a
// fixed order: values, hidden list sheets, header formats, list validation
// then option validation, explicit conditional formats then mandatory
// highlights, column widths and finally locking and protection.
func (r *Renderer) RenderSheet(ctx context.Context, t *Template, v *View, opts SheetOptions) error {
	sheet := opts.Name
	if sheet == "" {
		sheet = t.Name()
	}
	l := zerolog.Ctx(ctx).With().Str("sheet", sheet).Logger()

	start, err := v.DataStartRow()
	if err != nil {
		return err
	}
	end, err := v.DataEndRow()
	if err != nil {
		return err
	}
	if _, err := v.HeaderRow(); err != nil {
		return err
	}
	first, dataLast, last := start+1, end+1, v.Len()

	if err := r.w.AddSheet(sheet); err != nil {
		return fmt.Errorf("adding sheet %q: %w", sheet, err)
	}
	for i, row := range v.Rows {
		if err := r.w.WriteRow(sheet, i+1, row.Values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	for _, tbl := range []*Table{t.ListTable(), t.PicklistTable()} {
		if err := r.writeHiddenTable(tbl); err != nil {
			return err
		}
	}

	for i, row := range v.Rows {
		if row.Band != BandHeader {
			continue
		}
		for _, c := range v.Columns {
			if err := r.w.SetStyle(sheet, ColumnRange(c.Index+1, i+1, i+1), headerStyleFor(row.Kind, c)); err != nil {
				return fmt.Errorf("formatting header row %d: %w", i+1, err)
			}
		}
	}

	overridden := make(map[string]bool)
	for _, rule := range t.OptionRules() {
		overridden[rule.Column] = true
	}
	var rules []ValidationRule
	for _, rule := range t.ListRules() {
		if overridden[rule.Column] {
			l.Debug().Str("column", rule.Column).Msg("list validation replaced by option validation")
			continue
		}
		rules = append(rules, rule)
	}
	rules = append(rules, t.OptionRules()...)
	for _, rule := range rules {
		c, ok := t.Column(rule.Column)
		if !ok {
			continue
		}
		if err := r.w.AddValidation(sheet, ColumnRange(c.Index+1, first, last), rule); err != nil {
			return fmt.Errorf("adding validation to %q: %w", rule.Column, err)
		}
	}

	conditional := t.ConditionalRules()
	for _, c := range v.Columns {
		if c.Mandatory {
			conditional = append(conditional, MandatoryRule(c, first))
		}
	}
	for _, rule := range conditional {
		c, ok := t.Column(rule.Column)
		if !ok {
			continue
		}
		if err := r.w.AddConditionalFormat(sheet, ColumnRange(c.Index+1, first, dataLast), rule); err != nil {
			return fmt.Errorf("adding conditional format to %q: %w", rule.Column, err)
		}
	}

	for _, c := range v.Columns {
		if err := r.w.SetColumnWidth(sheet, c.Index+1, c.Width); err != nil {
			return fmt.Errorf("setting width of %q: %w", c.Header, err)
		}
	}

	if opts.Password != "" {
		if err := r.protect(sheet, v, opts.Password); err != nil {
			return err
		}
	}

	l.Debug().
		Int("rows", last).
		Int("data_rows", v.BandSize(BandData)).
		Int("extra_rows", v.BandSize(BandExtra)).
		Int("validations", len(rules)).
		Int("conditional_formats", len(conditional)).
		Bool("protected", opts.Password != "").
		Msg("sheet rendered")
	return nil
}

func headerStyleFor(kind RowKind, c Column) Style {
	switch kind {
	case KindDescriptionHeader:
		return StyleDescription
	case KindExampleRow:
		return StyleExample
	}
	return c.HeaderFormat
}

func (r *Renderer) writeHiddenTable(tbl *Table) error {
	if tbl.IsEmpty() || r.w.HasSheet(tbl.Name) {
		return nil
	}
	if err := r.w.AddSheet(tbl.Name); err != nil {
		return fmt.Errorf("adding hidden sheet %q: %w", tbl.Name, err)
	}
	for i, row := range tbl.Rows {
		if err := r.w.WriteRow(tbl.Name, i+1, toValues(row)); err != nil {
			return fmt.Errorf("writing hidden sheet %q row %d: %w", tbl.Name, i+1, err)
		}
	}
	if err := r.w.HideSheet(tbl.Name); err != nil {
		return fmt.Errorf("hiding sheet %q: %w", tbl.Name, err)
	}
	return nil
}

func (r *Renderer) protect(sheet string, v *View, password string) error {
	rules, err := LockRules(v)
	if err != nil {
		return err
	}
	rules = append([]ProtectionRule{HideOutside(v.Len(), len(v.Columns))}, rules...)
	sp, err := NewSheetProtection(password, rules...)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheet, err)
	}

	if err := r.w.HideRowsAfter(sheet, sp.LastRow); err != nil {
		return fmt.Errorf("hiding rows: %w", err)
	}
	if err := r.w.HideColumnsAfter(sheet, sp.LastColumn); err != nil {
		return fmt.Errorf("hiding columns: %w", err)
	}
	for _, u := range sp.UnlockedRanges {
		if err := r.w.SetStyle(sheet, u.Range, u.Style); err != nil {
			return fmt.Errorf("unlocking %s: %w", u.Range, err)
		}
	}
	if err := r.w.ProtectSheet(sheet, sp); err != nil {
		return fmt.Errorf("protecting sheet %q: %w", sheet, err)
	}
	return nil
}
