package xltemplate

import (
	"fmt"
	"strings"
)

// ProtectionRule contributes to how a sheet is protected.
type ProtectionRule interface {
	// Apply applies the protection rule to the sheet
	Apply(sheetProtection *SheetProtection) error

	// Description returns a human-readable description of the rule
	Description() string
}

// UnlockedRange is a block of cells left editable, written with Style.
type UnlockedRange struct {
	Range CellRange
	Style Style
}

// SheetProtection holds the protection plan of one sheet. Cells are locked
// unless they fall in an unlocked range.
type SheetProtection struct {
	Password string
	// LastRow and LastColumn bound the visible area; zero means no hiding.
	LastRow        int
	LastColumn     int
	UnlockedRanges []UnlockedRange

	AllowSelectLocked   bool
	AllowSelectUnlocked bool
	AllowFormatColumns  bool
	AllowFilter         bool
}

// NewSheetProtection applies rules to a fresh plan.
func NewSheetProtection(password string, rules ...ProtectionRule) (*SheetProtection, error) {
	sp := &SheetProtection{
		Password:            password,
		AllowSelectLocked:   true,
		AllowSelectUnlocked: true,
	}
	for _, r := range rules {
		if err := r.Apply(sp); err != nil {
			return nil, fmt.Errorf("applying %q: %w", r.Description(), err)
		}
	}
	return sp, nil
}

type hideOutsideRule struct {
	lastRow, lastCol int
}

func (r *hideOutsideRule) Apply(sp *SheetProtection) error {
	if r.lastRow < 1 || r.lastCol < 1 {
		return fmt.Errorf("visible area %dx%d is empty", r.lastRow, r.lastCol)
	}
	sp.LastRow, sp.LastColumn = r.lastRow, r.lastCol
	return nil
}

func (r *hideOutsideRule) Description() string {
	return fmt.Sprintf("Hide rows after %d and columns after %s", r.lastRow, ColumnName(r.lastCol))
}

// HideOutside hides every row after lastRow and every column after lastCol.
func HideOutside(lastRow, lastCol int) ProtectionRule {
	return &hideOutsideRule{lastRow: lastRow, lastCol: lastCol}
}

type unlockRangeRule struct {
	ranges []UnlockedRange
}

func (r *unlockRangeRule) Apply(sp *SheetProtection) error {
	for _, u := range r.ranges {
		if !u.Style.IsUnlocked() {
			return fmt.Errorf("style %q does not unlock cells", u.Style)
		}
		if u.Range.Empty() {
			continue
		}
		sp.UnlockedRanges = append(sp.UnlockedRanges, u)
	}
	return nil
}

func (r *unlockRangeRule) Description() string {
	var parts []string
	for _, u := range r.ranges {
		parts = append(parts, fmt.Sprintf("%s as %s", u.Range, u.Style))
	}
	return fmt.Sprintf("Unlock ranges: %s", strings.Join(parts, ", "))
}

// UnlockRange leaves a range editable, formatted with an unlocked style.
func UnlockRange(rng CellRange, style Style) ProtectionRule {
	return &unlockRangeRule{ranges: []UnlockedRange{{Range: rng, Style: style}}}
}

// LockRules derives the column locking of a rendered view from each column's
// lock config. When no column names an unlocked style every data and extra
// cell stays editable as text. Otherwise a column with an unlocked style is
// editable over the data and extra bands, and any other column is locked
// except for its extra band.
func LockRules(v *View) ([]ProtectionRule, error) {
	start, err := v.DataStartRow()
	if err != nil {
		return nil, err
	}
	first, last := start+1, v.Len()
	extra := v.ExtraStartRow()

	configured := false
	for _, c := range v.Columns {
		if c.Lock != "" {
			configured = true
			break
		}
	}
	if !configured {
		rng := CellRange{StartCol: 1, StartRow: first, EndCol: len(v.Columns), EndRow: last}
		return []ProtectionRule{UnlockRange(rng, StyleUnlockedText)}, nil
	}

	var rules []ProtectionRule
	for _, c := range v.Columns {
		col := c.Index + 1
		switch {
		case c.Lock != "":
			rules = append(rules, UnlockRange(ColumnRange(col, first, last), c.Lock))
		case extra >= 0:
			rules = append(rules, UnlockRange(ColumnRange(col, extra+1, last), StyleUnlockedText))
		}
	}
	return rules, nil
}
