// Package sheets wraps the Google Sheets API for the three operations the
// pipeline needs: reading the lookup rules, reading recorded transaction
// ids, and appending + resorting new rows.
package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/markis/budget-importer/internal/model"
)

const (
	// dateColumnIndex is the zero-based column holding the transaction date
	// in the six-column row layout.
	dateColumnIndex = 3
	rowWidth        = 6
)

// Client wraps a Sheets service bound to one spreadsheet.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewClient creates a Sheets client authenticated with a service-account
// credentials file.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string, log zerolog.Logger) (*Client, error) {
	service, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// CategoryRules reads the lookup sheet and returns payee-keyed rules.
func (c *Client) CategoryRules(ctx context.Context, sheetName string) (map[string]model.CategoryRule, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, sheetName+"!A:C").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading lookup sheet %s: %w", sheetName, err)
	}

	rules := ParseRuleRows(resp.Values)
	c.log.Info().Int("rules", len(rules)).Msg("loaded category rules")
	return rules, nil
}

// ExistingIDs reads the first column of the destination sheet and returns
// the set of already-recorded transaction ids.
func (c *Client) ExistingIDs(ctx context.Context, sheetName string) (map[string]bool, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading existing ids from %s: %w", sheetName, err)
	}

	ids := ParseIDRows(resp.Values)
	c.log.Info().Int("existing", len(ids)).Msg("loaded recorded transaction ids")
	return ids, nil
}

// Append adds rows after the sheet's existing content. Values go through the
// USER_ENTERED parser so date and number cells keep the sheet's display
// conventions.
func (c *Client) Append(ctx context.Context, sheetName string, rows []model.SheetRow) error {
	if len(rows) == 0 {
		return nil
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = row
	}

	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, sheetName+"!A:F", &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending %d rows to %s: %w", len(rows), sheetName, err)
	}

	c.log.Info().Int("rows", len(rows)).Msg("appended rows")
	return nil
}

// SortByDate resorts the whole data range (below the header) by the date
// column, most recent first.
func (c *Client) SortByDate(ctx context.Context, sheetName string) error {
	sheetID, err := c.sheetID(ctx, sheetName)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			SortRange: &sheets.SortRangeRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    1, // keep the header in place
					StartColumnIndex: 0,
					EndColumnIndex:   rowWidth,
				},
				SortSpecs: []*sheets.SortSpec{{
					DimensionIndex: dateColumnIndex,
					SortOrder:      "DESCENDING",
				}},
			},
		}},
	}

	if _, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sorting %s by date: %w", sheetName, err)
	}
	return nil
}

func (c *Client) sheetID(ctx context.Context, sheetName string) (int64, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("getting spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == sheetName {
			return sheet.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", sheetName)
}
