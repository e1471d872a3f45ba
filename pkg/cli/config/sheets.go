package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/repository"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Sheets holds Google Sheets configuration
type Sheets struct {
	SpreadsheetID   string
	Worksheet       string
	CredentialsFile string
}

// Flags returns CLI flags for Sheets configuration
func (s *Sheets) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sheets-id",
			Usage:       "Spreadsheet ID holding the incident log",
			Category:    "Sheets",
			Sources:     cli.EnvVars("INTAKE_SHEETS_ID"),
			Destination: &s.SpreadsheetID,
		},
		&cli.StringFlag{
			Name:        "sheets-worksheet",
			Usage:       "Worksheet (tab) name",
			Category:    "Sheets",
			Value:       "Incidentes",
			Sources:     cli.EnvVars("INTAKE_SHEETS_WORKSHEET"),
			Destination: &s.Worksheet,
		},
		&cli.StringFlag{
			Name:        "sheets-credentials",
			Usage:       "Service account JSON file (application default credentials when empty)",
			Category:    "Sheets",
			Sources:     cli.EnvVars("INTAKE_SHEETS_CREDENTIALS"),
			Destination: &s.CredentialsFile,
		},
	}
}

// Configure creates a Sheets repository
func (s *Sheets) Configure(ctx context.Context) (*repository.Sheets, error) {
	if !s.IsConfigured() {
		return nil, goerr.New("spreadsheet ID is not set")
	}

	var opts []option.ClientOption
	if s.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	}

	repo, err := repository.NewSheets(ctx, s.SpreadsheetID, s.Worksheet, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init sheets",
			goerr.V("spreadsheet", s.SpreadsheetID),
			goerr.V("worksheet", s.Worksheet),
		)
	}
	return repo, nil
}

// IsConfigured checks if Sheets is properly configured
func (s *Sheets) IsConfigured() bool {
	return s.SpreadsheetID != ""
}

// LogValue returns structured log value
func (s Sheets) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("spreadsheet", s.SpreadsheetID),
		slog.String("worksheet", s.Worksheet),
		slog.Bool("has_credentials_file", s.CredentialsFile != ""),
	)
}
