// Package sheets talks to the Google Sheets API for the spreadsheet sink and
// the reference-data source.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	formsapp "github.com/formhub/backend/internal/application/forms"
	"github.com/formhub/backend/internal/domain/shared"
	infraconfig "github.com/formhub/backend/internal/infrastructure/config"
)

// Ensure Client implements SheetAppender
var _ formsapp.SheetAppender = (*Client)(nil)

// ErrSheetNotFound reports a tab that does not exist in the spreadsheet.
var ErrSheetNotFound = shared.NewDomainError("SHEET_NOT_FOUND", "sheet tab not found in the spreadsheet")

// Client wraps the Sheets API for a single configured spreadsheet.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithLogger sets a custom logger for Client
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Sheets client from service-account credentials. Inline
// JSON wins over a key file when both are set.
func NewClient(ctx context.Context, cfg *infraconfig.SheetsConfig, opts ...ClientOption) (*Client, error) {
	if cfg == nil || cfg.SpreadsheetID == "" {
		return nil, shared.ErrConfiguration
	}

	var clientOpts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), sheetsapi.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("invalid sheets credentials: %w", err)
		}
		clientOpts = append(clientOpts, option.WithTokenSource(creds.TokenSource))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheetsapi.SpreadsheetsScope))
	default:
		return nil, shared.ErrConfiguration
	}

	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	client := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AppendRow appends one row to the named tab and returns the range that was
// written. When the tab does not exist yet it is created with the given
// header row and the append is retried exactly once.
func (c *Client) AppendRow(ctx context.Context, sheetName string, header []string, row []interface{}) (string, error) {
	writtenRange, err := c.append(ctx, sheetName, row)
	if err == nil {
		return writtenRange, nil
	}
	if !isMissingSheet(err) {
		return "", fmt.Errorf("failed to append to sheet %q: %w", sheetName, err)
	}

	if err := c.EnsureSheet(ctx, sheetName, header); err != nil {
		return "", err
	}
	writtenRange, err = c.append(ctx, sheetName, row)
	if err != nil {
		return "", fmt.Errorf("failed to append to sheet %q after creating it: %w", sheetName, err)
	}
	return writtenRange, nil
}

func (c *Client) append(ctx context.Context, sheetName string, row []interface{}) (string, error) {
	resp, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, RangeForSheet(sheetName), &sheetsapi.ValueRange{
			Values: [][]interface{}{row},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

// EnsureSheet creates the named tab with a header row. A tab created
// concurrently by another writer is not an error.
func (c *Client) EnsureSheet(ctx context.Context, sheetName string, header []string) error {
	c.logger.Info("Creating sheet tab",
		zap.String("spreadsheet_id", c.spreadsheetID),
		zap.String("sheet", sheetName))

	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{Title: sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("failed to create sheet %q: %w", sheetName, err)
		}
		// Someone else created the tab, and with it the header.
		return nil
	}

	if len(header) == 0 {
		return nil
	}
	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, RangeForSheet(sheetName), &sheetsapi.ValueRange{
			Values: [][]interface{}{headerRow},
		}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write header for sheet %q: %w", sheetName, err)
	}
	return nil
}

// Values reads a range from the named tab. A missing tab is reported as
// ErrSheetNotFound, never as an empty result.
func (c *Client) Values(ctx context.Context, readRange string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to read range %q: %w", readRange, err)
	}
	return resp.Values, nil
}

// RangeForSheet builds an A1 range covering the whole named tab, quoting the
// name so tabs with spaces work.
func RangeForSheet(sheetName string) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!A1"
}

// isMissingSheet recognizes the API response for a range that names a tab
// the spreadsheet does not have.
func isMissingSheet(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Message, "Unable to parse range")
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Message, "already exists")
}
