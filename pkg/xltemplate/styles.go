package xltemplate

import (
	"fmt"
	"sort"
	"strings"
)

// Style names a presentation style from the fixed style table. Settings rows
// and option tables refer to styles by these names only.
type Style string

const (
	StyleBoldHeader  Style = "bold_header"
	StyleBlueHeader  Style = "blue_header"
	StyleGreenHeader Style = "green_header"
	StyleDarkHeader  Style = "dark_header"
	StyleGreyHeader  Style = "grey_header"
	StyleDescription Style = "description"
	StyleExample     Style = "example"

	StyleMandatoryHighlight Style = "mandatory_highlight"
	StyleErrorHighlight     Style = "error_highlight"
	StyleGoodHighlight      Style = "good_highlight"
	StyleNeutralHighlight   Style = "neutral_highlight"

	StyleUnlockedText     Style = "unlocked_text"
	StyleUnlockedNumber   Style = "unlocked_number"
	StyleUnlockedInteger  Style = "unlocked_integer"
	StyleUnlockedCurrency Style = "unlocked_currency"
	StyleUnlockedPercent  Style = "unlocked_percent"
	StyleUnlockedDate     Style = "unlocked_date"
)

// CellStyle defines the attributes of a named style.
type CellStyle struct {
	FontName   string
	FontSize   float64
	FontBold   bool
	FontItalic bool
	FontColor  string

	FillColor   string
	FillPattern int

	Alignment     string // "left", "center", "right"
	VerticalAlign string // "top", "middle", "bottom"

	BorderStyle string
	BorderColor string

	NumberFormat string

	WrapText bool
	Locked   bool
}

// StyleBuilder provides a fluent API for building cell styles
type StyleBuilder struct {
	style CellStyle
}

// NewStyleBuilder creates a new style builder with default values
func NewStyleBuilder() *StyleBuilder {
	return &StyleBuilder{
		style: CellStyle{
			FontName:      "Arial",
			FontSize:      10,
			VerticalAlign: "center",
			Locked:        true,
		},
	}
}

// Font sets the font properties
func (b *StyleBuilder) Font(name string, size float64) *StyleBuilder {
	b.style.FontName = name
	b.style.FontSize = size
	return b
}

// Bold sets the font to bold
func (b *StyleBuilder) Bold() *StyleBuilder {
	b.style.FontBold = true
	return b
}

// Italic sets the font to italic
func (b *StyleBuilder) Italic() *StyleBuilder {
	b.style.FontItalic = true
	return b
}

// FontColor sets the font color (hex format)
func (b *StyleBuilder) FontColor(color string) *StyleBuilder {
	b.style.FontColor = color
	return b
}

// Fill sets the cell background color
func (b *StyleBuilder) Fill(color string) *StyleBuilder {
	b.style.FillColor = color
	b.style.FillPattern = 1
	return b
}

// Align sets the horizontal alignment
func (b *StyleBuilder) Align(alignment string) *StyleBuilder {
	b.style.Alignment = alignment
	return b
}

// Border sets a thin border of the given color on all sides
func (b *StyleBuilder) Border(color string) *StyleBuilder {
	b.style.BorderStyle = "thin"
	b.style.BorderColor = color
	return b
}

// NumberFormat sets the number format
func (b *StyleBuilder) NumberFormat(format string) *StyleBuilder {
	b.style.NumberFormat = format
	return b
}

// WrapText enables text wrapping
func (b *StyleBuilder) WrapText() *StyleBuilder {
	b.style.WrapText = true
	return b
}

// Locked sets the cell locked state
func (b *StyleBuilder) Locked(locked bool) *StyleBuilder {
	b.style.Locked = locked
	return b
}

// Build returns the built style
func (b *StyleBuilder) Build() CellStyle {
	return b.style
}

func headerStyle(fill, font string) CellStyle {
	return NewStyleBuilder().
		Font("Arial", 11).
		Bold().
		FontColor(font).
		Fill(fill).
		Border("#A6A6A6").
		Align("center").
		WrapText().
		Build()
}

func highlightStyle(fill, font string) CellStyle {
	b := NewStyleBuilder().Fill(fill)
	if font != "" {
		b.FontColor(font)
	}
	return b.Build()
}

func unlockedStyle(numFmt string) CellStyle {
	b := NewStyleBuilder().Locked(false)
	if numFmt == "" {
		return b.Align("left").WrapText().Build()
	}
	return b.Align("right").NumberFormat(numFmt).Build()
}

var styleTable = map[Style]CellStyle{
	StyleBoldHeader:  headerStyle("#FFFFFF", "#000000"),
	StyleBlueHeader:  headerStyle("#4472C4", "#FFFFFF"),
	StyleGreenHeader: headerStyle("#70AD47", "#FFFFFF"),
	StyleDarkHeader:  headerStyle("#44546A", "#FFFFFF"),
	StyleGreyHeader:  headerStyle("#D9D9D9", "#000000"),
	StyleDescription: NewStyleBuilder().Italic().Fill("#F2F2F2").Border("#A6A6A6").WrapText().Build(),
	StyleExample:     NewStyleBuilder().Italic().FontColor("#7F7F7F").Border("#A6A6A6").Build(),

	StyleMandatoryHighlight: highlightStyle("#FFFF00", ""),
	StyleErrorHighlight:     highlightStyle("#FFC7CE", "#9C0006"),
	StyleGoodHighlight:      highlightStyle("#C6EFCE", "#006100"),
	StyleNeutralHighlight:   highlightStyle("#FFEB9C", "#9C5700"),

	StyleUnlockedText:     unlockedStyle(""),
	StyleUnlockedNumber:   unlockedStyle("#,##0.00"),
	StyleUnlockedInteger:  unlockedStyle("0"),
	StyleUnlockedCurrency: unlockedStyle("$#,##0.00"),
	StyleUnlockedPercent:  unlockedStyle("0.00%"),
	StyleUnlockedDate:     unlockedStyle("yyyy-mm-dd"),
}

// ParseStyle resolves a style name from a settings cell. Surrounding
// whitespace is ignored; the match is case-sensitive.
func ParseStyle(name string) (Style, error) {
	s := Style(strings.TrimSpace(name))
	if _, ok := styleTable[s]; !ok {
		return "", fmt.Errorf("%w %q (accepted: %s)", ErrUnknownStyle, name, strings.Join(StyleNames(), ", "))
	}
	return s, nil
}

// StyleNames lists every recognized style name in sorted order.
func StyleNames() []string {
	names := make([]string, 0, len(styleTable))
	for s := range styleTable {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// Attributes returns the style's attribute record.
func (s Style) Attributes() CellStyle {
	return styleTable[s]
}

// Valid reports whether s is in the style table.
func (s Style) Valid() bool {
	_, ok := styleTable[s]
	return ok
}

// IsUnlocked reports whether s is a lock-config style, one that leaves cells
// editable on a protected sheet.
func (s Style) IsUnlocked() bool {
	switch s {
	case StyleUnlockedText, StyleUnlockedNumber, StyleUnlockedInteger,
		StyleUnlockedCurrency, StyleUnlockedPercent, StyleUnlockedDate:
		return true
	}
	return false
}

// IsNumeric reports whether cells using s hold numbers.
func (s Style) IsNumeric() bool {
	switch s {
	case StyleUnlockedNumber, StyleUnlockedInteger, StyleUnlockedCurrency, StyleUnlockedPercent:
		return true
	}
	return false
}
