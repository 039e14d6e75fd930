// Package xlsource reads the tables a template is built from, either from a
// local workbook or from a Google spreadsheet.
package xlsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// ErrSheetNotFound is returned by a Source for a sheet it does not hold.
var ErrSheetNotFound = errors.New("sheet not found")

// Source returns a sheet as a table of cell text.
type Source interface {
	Table(ctx context.Context, sheet string) (*xltemplate.Table, error)
}

// SheetNames names the sheets a template is read from. Only Main is
// required; an empty name or a missing sheet disables that feature.
type SheetNames struct {
	Main        string
	Dropdown    string
	Options     string
	Picklists   string
	Conditional string
}

// DefaultSheetNames are the names used by the sample source workbook.
var DefaultSheetNames = SheetNames{
	Main:        "MAIN",
	Dropdown:    xltemplate.DefaultListSheet,
	Options:     "Data_Validation",
	Picklists:   xltemplate.DefaultPicklistSheet,
	Conditional: "Conditional_Formatting",
}

// Load reads the named sheets from src and builds a template. Extra options
// such as a row filter are passed through to xltemplate.New.
func Load(ctx context.Context, src Source, names SheetNames, opts ...xltemplate.Option) (*xltemplate.Template, error) {
	if names.Main == "" {
		return nil, &xltemplate.ConfigurationError{Component: "source", Key: "main", Err: errors.New("main sheet name is required")}
	}
	main, err := src.Table(ctx, names.Main)
	if err != nil {
		return nil, fmt.Errorf("reading main sheet %q: %w", names.Main, err)
	}

	dropdown, err := optional(ctx, src, names.Dropdown)
	if err != nil {
		return nil, err
	}
	options, err := optional(ctx, src, names.Options)
	if err != nil {
		return nil, err
	}
	picklists, err := optional(ctx, src, names.Picklists)
	if err != nil {
		return nil, err
	}
	conditional, err := optional(ctx, src, names.Conditional)
	if err != nil {
		return nil, err
	}

	all := []xltemplate.Option{
		xltemplate.WithContext(ctx),
		xltemplate.WithDropdownLists(dropdown),
		xltemplate.WithValidationOptions(options, picklists),
		xltemplate.WithConditionalFormatting(conditional),
	}
	return xltemplate.New(main, append(all, opts...)...)
}

func optional(ctx context.Context, src Source, sheet string) (*xltemplate.Table, error) {
	if sheet == "" {
		return nil, nil
	}
	t, err := src.Table(ctx, sheet)
	if errors.Is(err, ErrSheetNotFound) {
		zerolog.Ctx(ctx).Debug().Str("sheet", sheet).Msg("optional sheet not found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return t, nil
}
