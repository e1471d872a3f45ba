package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const (
	formatJSON = "json"
	formatTSV  = "tsv"
	formatPipe = "pipe"
)

type parseConfig struct {
	text   string
	format string
	row    bool
	save   bool
	dryRun bool
}

func (p *parseConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Aliases:     []string{"t"},
			Usage:       "Report text (read from stdin when empty)",
			Destination: &p.text,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format (json, tsv, pipe)",
			Value:       formatJSON,
			Destination: &p.format,
			Validator: func(v string) error {
				switch v {
				case formatJSON, formatTSV, formatPipe:
					return nil
				}
				return goerr.New("invalid output format", goerr.V("format", v))
			},
		},
		&cli.BoolFlag{
			Name:        "row",
			Usage:       "Treat the input as a pipe-delimited row and repair it",
			Destination: &p.row,
		},
		&cli.BoolFlag{
			Name:        "save",
			Usage:       "Validate, assign a code and append the record",
			Destination: &p.save,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "With --save, assign a code without appending",
			Destination: &p.dryRun,
		},
	}
}

// parseOutput is the JSON document printed by the parse command
type parseOutput struct {
	ID         string            `json:"id,omitempty"`
	Code       string            `json:"code,omitempty"`
	Fields     []string          `json:"fields"`
	Record     map[string]string `json:"record"`
	Summary    string            `json:"summary"`
	Advisories []model.Advisory  `json:"advisories,omitempty"`
	Saved      bool              `json:"saved"`
}

func cmdParse() *cli.Command {
	var (
		parseCfg    parseConfig
		pipelineCfg pipelineConfig
	)

	return &cli.Command{
		Name:  "parse",
		Usage: "Interpret one report and print the record",
		Flags: joinFlags(parseCfg.Flags(), pipelineCfg.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			input := parseCfg.text
			if input == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read stdin")
				}
				input = string(data)
			}

			uc, repo, err := pipelineCfg.build(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			outcome, err := runParse(ctx, uc, parseCfg, input)
			if err != nil {
				var missing *model.MissingFieldsError
				if errors.As(err, &missing) {
					fmt.Fprintln(os.Stderr, missing.Error())
				}
				return err
			}

			return writeOutcome(os.Stdout, os.Stderr, parseCfg.format, outcome)
		},
	}
}

func runParse(ctx context.Context, uc usecase.IntakeUseCase, cfg parseConfig, input string) (*model.Outcome, error) {
	opts := usecase.SubmitOptions{DryRun: cfg.dryRun}

	switch {
	case cfg.row && cfg.save:
		return uc.SubmitRow(ctx, firstLine(input), opts)
	case cfg.row:
		return uc.RepairRow(ctx, firstLine(input))
	case cfg.save:
		return uc.Submit(ctx, input, opts)
	default:
		return uc.Parse(ctx, input)
	}
}

// firstLine returns the first non-blank line; a row never spans lines
func firstLine(input string) string {
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// writeOutcome prints the record to out. For tsv and pipe formats the summary and
// advisories go to info so out stays machine readable.
func writeOutcome(out, info io.Writer, format string, outcome *model.Outcome) error {
	rec := outcome.Entry.Record

	switch format {
	case formatTSV, formatPipe:
		sep := "\t"
		if format == formatPipe {
			sep = "|"
		}
		fields := rec.Fields()
		for i, f := range fields {
			fields[i] = strings.NewReplacer("\t", " ", "\n", " ", sep, " ").Replace(f)
		}
		if _, err := fmt.Fprintln(out, strings.Join(fields, sep)); err != nil {
			return goerr.Wrap(err, "failed to write record")
		}

		if _, err := fmt.Fprintln(info, outcome.Summary); err != nil {
			return goerr.Wrap(err, "failed to write summary")
		}
		for _, a := range outcome.Advisories {
			if _, err := fmt.Fprintf(info, "note: %s\n", a.Message); err != nil {
				return goerr.Wrap(err, "failed to write advisory")
			}
		}
		return nil

	default:
		doc := parseOutput{
			ID:         outcome.Entry.ID.String(),
			Code:       outcome.Entry.Code(),
			Fields:     rec.Fields(),
			Record:     rec.Map(),
			Summary:    outcome.Summary,
			Advisories: outcome.Advisories,
			Saved:      outcome.Saved,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(doc); err != nil {
			return goerr.Wrap(err, "failed to encode record")
		}
		return nil
	}
}
