package xltemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSheetProtection(t *testing.T) {
	sp, err := NewSheetProtection("secret",
		HideOutside(10, 3),
		UnlockRange(ColumnRange(1, 3, 10), StyleUnlockedText),
		UnlockRange(ColumnRange(2, 11, 10), StyleUnlockedText),
	)
	require.NoError(t, err)

	assert.Equal(t, "secret", sp.Password)
	assert.Equal(t, 10, sp.LastRow)
	assert.Equal(t, 3, sp.LastColumn)
	assert.True(t, sp.AllowSelectLocked)
	assert.True(t, sp.AllowSelectUnlocked)
	require.Len(t, sp.UnlockedRanges, 1, "empty ranges are skipped")
	assert.Equal(t, "A3:A10", sp.UnlockedRanges[0].Range.String())
}

func TestNewSheetProtection_RuleErrors(t *testing.T) {
	_, err := NewSheetProtection("pw", HideOutside(0, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hide rows after 0")

	_, err = NewSheetProtection("pw", UnlockRange(ColumnRange(1, 1, 2), StyleBoldHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A1:A2 as bold_header")
}

func unlocked(t *testing.T, v *View) []string {
	t.Helper()
	rules, err := LockRules(v)
	require.NoError(t, err)
	sp, err := NewSheetProtection("pw", rules...)
	require.NoError(t, err)
	var out []string
	for _, u := range sp.UnlockedRanges {
		out = append(out, u.Range.String()+" "+string(u.Style))
	}
	return out
}

func TestLockRules_ConfiguredColumns(t *testing.T) {
	tmpl := newTemplate(t)

	v, err := tmpl.Render(RenderOptions{ExtraRows: true, ExtraRowCount: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"A3:A10 unlocked_text",
		"B3:B10 unlocked_currency",
		"C6:C10 unlocked_text",
	}, unlocked(t, v))

	v, err = tmpl.Render(RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"A3:A5 unlocked_text",
		"B3:B5 unlocked_currency",
	}, unlocked(t, v), "locked columns stay locked without extra rows")
}

func TestLockRules_NoLockConfig(t *testing.T) {
	main := NewTable("MAIN", [][]string{
		{"HEADER", "A", "B"},
		{"lock_sheet_config", "", "locked"},
		{"", "1", "2"},
		{"", "3", "4"},
	})
	tmpl, err := New(main)
	require.NoError(t, err)

	v, err := tmpl.Render(RenderOptions{ExtraRows: true, ExtraRowCount: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A2:B5 unlocked_text"}, unlocked(t, v))
}

func TestLockRules_RequiresDataBand(t *testing.T) {
	_, err := LockRules(&View{Sheet: "MAIN", Rows: []Row{{Band: BandHeader, Kind: KindHeader}}})
	var structErr *StructureError
	assert.ErrorAs(t, err, &structErr)
}
