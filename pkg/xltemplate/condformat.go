package xltemplate

import (
	"fmt"
	"strings"
)

// ConditionalRule is one conditional format applied to a column's data cells.
type ConditionalRule struct {
	Column   string
	Type     string
	Criteria string
	Value    string
	Format   Style
}

var conditionalTypes = []string{
	"cell", "formula", "text", "duplicate", "unique", "blanks", "no_blanks",
	"errors", "no_errors", "top", "bottom", "average",
}

var conditionalColumns = []string{"apply_to", "type", "criteria", "format"}

// ResolveConditionalRules reads a rule table with the columns apply_to, type,
// criteria, format and an optional value. Invalid rows are dropped. A table
// missing one of the required columns yields no rules.
func ResolveConditionalRules(t *Table, headers []string) ([]ConditionalRule, []Diagnostic) {
	names, rows := t.records()
	pos := make(map[string]int, len(names))
	for i, n := range names {
		if n != "" {
			pos[strings.ToLower(n)] = i
		}
	}
	var missing []string
	for _, c := range conditionalColumns {
		if _, ok := pos[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, []Diagnostic{{
			Severity:  SeverityWarning,
			Component: "conditional formatting",
			Message:   fmt.Sprintf("sheet %q lacks columns %s, conditional formatting disabled", t.Name, strings.Join(missing, ", ")),
		}}
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}
	get := func(r []string, col string) string {
		i, ok := pos[col]
		if !ok || i >= len(r) {
			return ""
		}
		return strings.TrimSpace(r[i])
	}

	var rules []ConditionalRule
	var diags []Diagnostic
	for i, r := range rows {
		rule := ConditionalRule{
			Column:   get(r, "apply_to"),
			Type:     strings.ToLower(get(r, "type")),
			Criteria: get(r, "criteria"),
			Value:    get(r, "value"),
		}
		format := get(r, "format")
		var reason string
		switch {
		case !known[rule.Column]:
			reason = fmt.Sprintf("apply_to %q is not a template header", rule.Column)
		case rule.Type == "":
			reason = "type is blank"
		case !contains(conditionalTypes, rule.Type):
			reason = fmt.Sprintf("type %q is not supported", rule.Type)
		case rule.Criteria == "":
			reason = "criteria is blank"
		case !Style(format).Valid():
			reason = fmt.Sprintf("format %q is not a known style", format)
		}
		if reason != "" {
			diags = append(diags, Diagnostic{
				Severity:  SeverityInfo,
				Component: "conditional formatting",
				Message:   fmt.Sprintf("row %d dropped: %s", i+2, reason),
			})
			continue
		}
		rule.Format = Style(format)
		rules = append(rules, rule)
	}
	return rules, diags
}

// MandatoryRule highlights blank cells of a mandatory column. firstDataRow is
// the 1-based sheet row the rule's range starts at.
func MandatoryRule(col Column, firstDataRow int) ConditionalRule {
	return ConditionalRule{
		Column:   col.Header,
		Type:     "formula",
		Criteria: fmt.Sprintf(`=$%s%d=""`, col.Letter(), firstDataRow),
		Format:   StyleMandatoryHighlight,
	}
}
