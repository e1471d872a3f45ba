package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ReportedAtLayout is the format of the trailing "Hora de reporte" cell
const ReportedAtLayout = "2006-01-02 15:04:05"

// Sheets implements Repository on a Google Sheets worksheet. Row 1 holds the 21
// column headers plus "Hora de reporte"; column A holds the codes.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string

	headerOnce sync.Once
	headerErr  error
}

// NewSheets creates a Sheets repository. opts are passed to the Sheets client,
// e.g. option.WithCredentialsFile.
func NewSheets(ctx context.Context, spreadsheetID, worksheet string, opts ...option.ClientOption) (*Sheets, error) {
	if spreadsheetID == "" {
		return nil, goerr.New("spreadsheet ID is required")
	}
	if worksheet == "" {
		return nil, goerr.New("worksheet name is required")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create sheets client")
	}

	s := &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
	}
	if err := s.ensureHeader(ctx); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Sheets repository initialized successfully",
		"spreadsheetID", spreadsheetID,
		"worksheet", worksheet,
	)
	return s, nil
}

func (s *Sheets) a1(cells string) string {
	return fmt.Sprintf("'%s'!%s", s.worksheet, cells)
}

func headerRow() []any {
	row := make([]any, 0, types.ColumnCount+1)
	for _, h := range types.Headers() {
		row = append(row, h)
	}
	return append(row, types.ReportedAtHeader)
}

// ensureHeader writes the header row once when row 1 is empty. A different
// existing header is left untouched.
func (s *Sheets) ensureHeader(ctx context.Context) error {
	s.headerOnce.Do(func() {
		resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("1:1")).Context(ctx).Do()
		if err != nil {
			s.headerErr = goerr.Wrap(err, "failed to read header row",
				goerr.V("spreadsheetID", s.spreadsheetID),
				goerr.V("worksheet", s.worksheet))
			return
		}

		if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
			if fmt.Sprint(resp.Values[0][0]) != types.ColumnCode.Header() {
				ctxlog.From(ctx).Warn("worksheet header row does not match the record layout",
					"first_cell", resp.Values[0][0])
			}
			return
		}

		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, s.a1("A1"), &sheets.ValueRange{
			Values: [][]any{headerRow()},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			s.headerErr = goerr.Wrap(err, "failed to write header row")
		}
	})
	return s.headerErr
}

// ListCodes reads column A below the header
func (s *Sheets) ListCodes(ctx context.Context) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.a1("A2:A")).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read codes", goerr.V("worksheet", s.worksheet))
	}

	codes := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if code := fmt.Sprint(row[0]); code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

// AppendRecord appends 22 cells: the 21 record fields and the report timestamp
func (s *Sheets) AppendRecord(ctx context.Context, entry *model.Entry) error {
	if entry == nil {
		return goerr.New("entry is nil")
	}

	row := make([]any, 0, types.ColumnCount+1)
	for _, v := range entry.Record.Fields() {
		row = append(row, v)
	}
	row = append(row, entry.ReportedAt.Format(ReportedAtLayout))

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, s.a1("A1"), &sheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return goerr.Wrap(err, "failed to append row",
			goerr.V("code", entry.Code()),
			goerr.V("worksheet", s.worksheet))
	}
	return nil
}

// Close is a no-op; the Sheets client holds no connection
func (s *Sheets) Close() error {
	return nil
}

var _ interfaces.Repository = (*Sheets)(nil)
