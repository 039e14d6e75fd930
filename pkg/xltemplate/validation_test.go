package xltemplate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureHeaders = []string{"Name", "Amount", "Active"}

func TestResolveListValidation(t *testing.T) {
	rules, table, diags, err := ResolveListValidation(dropdownSheet(), DefaultListSheet, fixtureHeaders)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	active := rules[0]
	assert.Equal(t, "Active", active.Column)
	assert.Equal(t, ValidateList, active.Kind)
	assert.Equal(t, "'Dropdown_Lists'!$A$2:$A$3", active.Source)
	assert.Equal(t, ErrorWarning, active.ErrorType)
	assert.Equal(t, "Pick one", active.InputTitle)

	name := rules[1]
	assert.Equal(t, "Name", name.Column)
	assert.Equal(t, "'Dropdown_Lists'!$C$2:$C$3", name.Source, "lists keep their column and are packed without gaps")
	assert.Equal(t, ErrorStop, name.ErrorType)

	require.NotNil(t, table)
	assert.Equal(t, DefaultListSheet, table.Name)
	assert.Equal(t, [][]string{
		{"Active", "Unknown", "Name"},
		{"Yes", "x", "Alice"},
		{"No", "", "Bob"},
	}, table.Rows)

	var skipped bool
	for _, d := range diags {
		if d.Severity == SeverityInfo && d.Component == "dropdown lists" {
			skipped = true
		}
	}
	assert.True(t, skipped, "unknown column is reported")
}

func TestResolveListValidation_QuotesSheetName(t *testing.T) {
	tbl := NewTable("x", [][]string{{"HEADER", "Name"}, {"", "a"}})
	rules, _, _, err := ResolveListValidation(tbl, "Bob's lists", fixtureHeaders)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "'Bob''s lists'!$A$2:$A$2", rules[0].Source)
}

func TestResolveListValidation_NoHeaderRow(t *testing.T) {
	tbl := NewTable("Dropdown_Lists", [][]string{{"", "Yes"}, {"", "No"}})
	rules, table, diags, err := ResolveListValidation(tbl, DefaultListSheet, fixtureHeaders)
	require.NoError(t, err)
	assert.Nil(t, rules)
	assert.Nil(t, table)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestResolveListValidation_EmptyListSkipped(t *testing.T) {
	tbl := NewTable("Dropdown_Lists", [][]string{{"HEADER", "Name", "Active"}, {"", "", "Yes"}})
	rules, table, diags, err := ResolveListValidation(tbl, DefaultListSheet, fixtureHeaders)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Active", rules[0].Column)
	assert.Equal(t, "'Dropdown_Lists'!$B$2:$B$2", rules[0].Source)
	assert.Equal(t, [][]string{{"", "Active"}, {"", "Yes"}}, table.Rows)
	assert.NotEmpty(t, diags)
}

func TestResolveListValidation_SharedTableIndependentOfTemplate(t *testing.T) {
	tbl := NewTable("Dropdown_Lists", [][]string{
		{"HEADER", "Region", "Status", "Name"},
		{"", "North", "Open", "Ann"},
		{"", "South", "Closed", ""},
	})

	orders, ordersTable, _, err := ResolveListValidation(tbl, DefaultListSheet, []string{"Region", "Status"})
	require.NoError(t, err)
	customers, customersTable, _, err := ResolveListValidation(tbl, DefaultListSheet, []string{"Name", "Status"})
	require.NoError(t, err)

	assert.Equal(t, ordersTable.Rows, customersTable.Rows)
	require.Len(t, orders, 2)
	require.Len(t, customers, 2)
	assert.Equal(t, "Status", orders[1].Column)
	assert.Equal(t, "Status", customers[0].Column)
	assert.Equal(t, "'Dropdown_Lists'!$B$2:$B$3", orders[1].Source)
	assert.Equal(t, orders[1].Source, customers[0].Source)
	assert.Equal(t, "'Dropdown_Lists'!$C$2:$C$2", customers[1].Source)
}

func TestResolveListValidation_BadErrorType(t *testing.T) {
	tbl := NewTable("Dropdown_Lists", [][]string{
		{"HEADER", "Name"},
		{"error_type", "explode"},
		{"", "a"},
	})
	_, _, _, err := ResolveListValidation(tbl, DefaultListSheet, fixtureHeaders)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "Name", cfgErr.Key)
}

func TestResolveOptionValidation(t *testing.T) {
	rules, diags, err := ResolveOptionValidation(optionSheet(), fixtureHeaders)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	r := rules[0]
	assert.Equal(t, "Name", r.Column)
	assert.Equal(t, ValidateList, r.Kind)
	assert.Equal(t, "Picklists!$A$2:$A$4", r.Source)
	assert.Empty(t, r.List)
	assert.Equal(t, "Bad name", r.ErrorTitle)
	assert.Equal(t, "Pick a listed name", r.ErrorMessage)
	assert.Equal(t, ErrorStop, r.ErrorType)

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Missing")
}

func TestResolveOptionValidation_LiteralListAndLastWins(t *testing.T) {
	tbl := NewTable("Data_Validation", [][]string{
		{"apply_to", "validate", "source", "input_message"},
		{"Active", "list", "Yes, No", "first"},
		{"Amount", "any", "", "Enter an amount"},
		{"Active", "list", "Y,N,", "second"},
	})
	rules, diags, err := ResolveOptionValidation(tbl, fixtureHeaders)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, rules, 2)

	assert.Equal(t, "Active", rules[0].Column, "replacement keeps the first position")
	assert.Equal(t, []string{"Y", "N"}, rules[0].List)
	assert.Equal(t, "second", rules[0].InputMessage)

	assert.Equal(t, ValidateAny, rules[1].Kind)
	assert.Equal(t, "Enter an amount", rules[1].InputMessage)
}

func TestResolveOptionValidation_IsIdempotent(t *testing.T) {
	first, _, err := ResolveOptionValidation(optionSheet(), fixtureHeaders)
	require.NoError(t, err)
	second, _, err := ResolveOptionValidation(optionSheet(), fixtureHeaders)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveOptionValidation_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want error
	}{
		{
			name: "unknown option column",
			rows: [][]string{{"apply_to", "colour"}, {"Name", "red"}},
			want: ErrUnknownOption,
		},
		{
			name: "missing apply_to",
			rows: [][]string{{"validate", "source"}, {"list", "a,b"}},
		},
		{
			name: "bad error type",
			rows: [][]string{{"apply_to", "source", "error_type"}, {"Name", "a", "loud"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResolveOptionValidation(NewTable("Data_Validation", tt.rows), fixtureHeaders)
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestResolveOptionValidation_DroppedRows(t *testing.T) {
	tbl := NewTable("Data_Validation", [][]string{
		{"apply_to", "validate", "source"},
		{"", "list", "a"},
		{"Name", "whole", "1"},
		{"Name", "list", ""},
		{"Name", "list", "ok"},
	})
	rules, diags, err := ResolveOptionValidation(tbl, fixtureHeaders)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []string{"ok"}, rules[0].List)
	assert.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, SeverityWarning, d.Severity)
	}
}
