package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/cli"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/repository"
	"github.com/secmon-lab/intake/pkg/service/extract"
	"github.com/secmon-lab/intake/pkg/service/repair"
	"github.com/secmon-lab/intake/pkg/usecase"
)

func sampleOutcome() *model.Outcome {
	var rec model.Record
	rec.Set(types.ColumnCode, "INC-07-03-001")
	rec.Set(types.ColumnSystem, "VPN")
	rec.Set(types.ColumnDescription, "línea 1\tcon|barra")
	return &model.Outcome{
		Entry:      &model.Entry{ID: "sub-1", Record: rec},
		Summary:    rec.Summary(),
		Advisories: []model.Advisory{{Message: "moved \"VPN\" from channel to system"}},
		Saved:      true,
	}
}

func TestWriteOutcome(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var out, info bytes.Buffer
		gt.NoError(t, cli.WriteOutcome(&out, &info, "json", sampleOutcome()))
		gt.Equal(t, info.Len(), 0)

		var doc map[string]any
		gt.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		gt.Equal(t, doc["code"], any("INC-07-03-001"))
		gt.Equal(t, doc["saved"], any(true))
		gt.Equal(t, len(doc["fields"].([]any)), types.ColumnCount)
	})

	t.Run("tsv", func(t *testing.T) {
		var out, info bytes.Buffer
		gt.NoError(t, cli.WriteOutcome(&out, &info, "tsv", sampleOutcome()))

		line := strings.TrimSuffix(out.String(), "\n")
		fields := strings.Split(line, "\t")
		gt.Equal(t, len(fields), types.ColumnCount)
		gt.Equal(t, fields[types.ColumnDescription], "línea 1 con|barra")
		gt.S(t, info.String()).Contains("note: moved")
	})

	t.Run("pipe", func(t *testing.T) {
		var out, info bytes.Buffer
		gt.NoError(t, cli.WriteOutcome(&out, &info, "pipe", sampleOutcome()))

		fields := strings.Split(strings.TrimSuffix(out.String(), "\n"), "|")
		gt.Equal(t, len(fields), types.ColumnCount)
		gt.Equal(t, fields[types.ColumnDescription], "línea 1\tcon barra")
	})
}

func TestFirstLine(t *testing.T) {
	gt.Equal(t, cli.FirstLine("\n  \n|a|b|\n|c|"), "|a|b|")
	gt.Equal(t, cli.FirstLine(""), "")
}

func TestRunParse(t *testing.T) {
	ctx := context.Background()

	loc, err := time.LoadLocation("America/La_Paz")
	gt.NoError(t, err)
	now := time.Date(2026, time.March, 7, 12, 0, 0, 0, loc)
	clock := func() time.Time { return now }

	vocab, err := model.DefaultVocabulary()
	gt.NoError(t, err)
	x, err := extract.New(vocab, extract.WithLocation(loc), extract.WithClock(clock))
	gt.NoError(t, err)

	repo := repository.NewMemory()
	uc := usecase.NewIntake(x, repair.New(x, model.DefaultPolicy()), repo, usecase.WithClock(clock))

	text := "A las 09:15 se detectó alerta en Zabbix por caída de VPN en La Paz."

	outcome, err := cli.RunParse(ctx, uc, text, false, false, false)
	gt.NoError(t, err)
	gt.Equal(t, outcome.Entry.Code(), "")

	outcome, err = cli.RunParse(ctx, uc, text, false, true, true)
	gt.NoError(t, err)
	gt.Equal(t, outcome.Entry.Code(), "INC-07-03-001")
	gt.Equal(t, len(repo.Entries()), 0)

	outcome, err = cli.RunParse(ctx, uc, text, false, true, false)
	gt.NoError(t, err)
	gt.True(t, outcome.Saved)
	gt.Equal(t, len(repo.Entries()), 1)

	outcome, err = cli.RunParse(ctx, uc, "\n| |2026-03-07 09:15|VPN||Caída|||la paz|\n", true, false, false)
	gt.NoError(t, err)
	gt.Equal(t, outcome.Entry.Record.Get(types.ColumnSystem), "VPN")

	_, err = cli.RunParse(ctx, uc, "Se reportó un problema", false, true, false)
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("missing system, missing location")
}
