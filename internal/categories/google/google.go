// Package google reads the category lists from a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"registro/internal/categories"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads the church category sheet. The configured range has income
// categories in the first column and expense categories in the second.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
}

var _ categories.Source = (*Client)(nil)

const defaultRange = "church_data!A2:B1000"

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Auth via GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_CATEGORIES_RANGE (default "church_data!A2:B1000").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	readRange := strings.TrimSpace(os.Getenv("GOOGLE_CATEGORIES_RANGE"))
	if readRange == "" {
		readRange = defaultRange
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, readRange: readRange}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Categories reads the configured range. Column 0 feeds incomes, column 1
// feeds expenses; blank cells are skipped, order is preserved, and
// duplicates are kept as-is.
func (c *Client) Categories(ctx context.Context) (categories.Catalog, error) {
	if c.svc == nil {
		return categories.Catalog{}, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		return categories.Catalog{}, fmt.Errorf("read %s: %w", c.readRange, err)
	}
	return ParseRows(resp.Values), nil
}

// ParseRows splits raw sheet rows into the two category columns.
func ParseRows(rows [][]any) categories.Catalog {
	var cat categories.Catalog
	for _, row := range rows {
		if v := cellString(row, 0); v != "" {
			cat.Incomes = append(cat.Incomes, v)
		}
		if v := cellString(row, 1); v != "" {
			cat.Expenses = append(cat.Expenses, v)
		}
	}
	return cat
}

func cellString(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}
