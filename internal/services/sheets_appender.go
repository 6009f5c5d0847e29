package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ahmetcoskunkizilkaya/acres-intake/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// AppendError carries the HTTP status and body of a failed append. Status is
// zero when the request never got a response.
type AppendError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AppendError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("sheets append failed: %v", e.Err)
	}
	return fmt.Sprintf("sheets append failed: status %d", e.StatusCode)
}

func (e *AppendError) Unwrap() error {
	return e.Err
}

type SheetsConfig struct {
	SheetID string
	Range   string
	// Endpoint overrides the Sheets API base URL.
	Endpoint string
	Timeout  time.Duration
}

// SheetsAppender appends rows with the signed-in user's own access token.
type SheetsAppender struct {
	cfg        SheetsConfig
	httpClient *http.Client
}

func NewSheetsAppender(cfg SheetsConfig) *SheetsAppender {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if cfg.Range == "" {
		cfg.Range = "Sheet1!A1"
	}
	return &SheetsAppender{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (a *SheetsAppender) AppendRow(ctx context.Context, accessToken string, row dto.SheetRow) error {
	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, a.httpClient),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if a.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.cfg.Endpoint))
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return &AppendError{Err: fmt.Errorf("failed to create sheets client: %w", err)}
	}

	values := &sheets.ValueRange{Values: [][]interface{}{row.Values()}}
	_, err = srv.Spreadsheets.Values.Append(a.cfg.SheetID, a.cfg.Range, values).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return &AppendError{StatusCode: gerr.Code, Body: gerr.Body, Err: err}
		}
		return &AppendError{Err: err}
	}
	return nil
}
