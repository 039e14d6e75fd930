package xlsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/locvowork/xlfilecreator/pkg/xltemplate"
)

// GoogleAuth selects how the Sheets API is called. CredentialsFile, a
// service account key, takes precedence over APIKey. The API key only reads
// spreadsheets shared with anyone holding the link.
type GoogleAuth struct {
	APIKey          string
	CredentialsFile string
}

// GoogleSheet reads sheets of one Google spreadsheet.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleSheet creates a reader for a spreadsheet. Extra client options are
// appended after the authentication options.
func NewGoogleSheet(ctx context.Context, spreadsheetID string, auth GoogleAuth, opts ...option.ClientOption) (*GoogleSheet, error) {
	if spreadsheetID == "" {
		return nil, &xltemplate.ConfigurationError{Component: "google sheets", Key: "spreadsheet_id", Err: errors.New("is required")}
	}
	var clientOpts []option.ClientOption
	switch {
	case auth.CredentialsFile != "":
		data, err := os.ReadFile(auth.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("google: sheet: reading credentials: %w", err)
		}
		config, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("google: sheet: parsing credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithHTTPClient(config.Client(ctx)))
	case auth.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(auth.APIKey))
	}

	svc, err := sheets.NewService(ctx, append(clientOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("google: sheet: unable to create sheet service: %w", err)
	}
	return &GoogleSheet{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Table returns the formatted values of a whole sheet.
func (g *GoogleSheet) Table(ctx context.Context, sheet string) (*xltemplate.Table, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, sheetRange(sheet)).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %q: %s", ErrSheetNotFound, sheet, apiErr.Message)
		}
		return nil, fmt.Errorf("google: sheet: reading %q: %w", sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			if v != nil {
				rows[i][j] = fmt.Sprint(v)
			}
		}
	}
	return xltemplate.NewTable(sheet, rows), nil
}

func sheetRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
