package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// SheetsWriter appends report grids to a Google Sheets tab.
type SheetsWriter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// LoadCredentials returns service account JSON, preferring the inline value.
func LoadCredentials(inlineJSON, file string) ([]byte, error) {
	if s := strings.TrimSpace(inlineJSON); s != "" {
		return []byte(s), nil
	}
	if file = strings.TrimSpace(file); file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// NewSheetsWriter authenticates with service account credentials. Extra
// options are passed to the Sheets client.
func NewSheetsWriter(ctx context.Context, spreadsheetID, sheetName string, credentialsJSON []byte, opts ...goption.ClientOption) (*SheetsWriter, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if len(credentialsJSON) > 0 {
		opts = append([]goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, opts...)
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsWriter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// Upload appends rows below the existing content of the tab and returns
// the updated range.
func (w *SheetsWriter) Upload(ctx context.Context, rows [][]string) (string, error) {
	values := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	rng := fmt.Sprintf("%s!A1", w.sheetName)
	resp, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", w.sheetName, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}
