package usecase

import (
	"strings"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/service/extract"
	"github.com/secmon-lab/intake/pkg/service/repair"
)

// Assemble builds a complete record from free text using the heuristics only.
// Soft defaults are applied, status is derived and reserved columns stay blank.
func Assemble(x *extract.Extractor, policy model.Policy, text string) model.Record {
	rec := extractRecord(x, text)

	for col, def := range policy.Defaults {
		if rec.Get(col) == "" {
			rec.Set(col, def)
		}
	}
	if rec.Get(types.ColumnStatus) == "" {
		rec.Set(types.ColumnStatus, repair.DeriveStatus(&rec).String())
	}
	rec.ClearReserved()

	return rec
}

// extractRecord runs every extractor exactly once. Columns nothing could be
// derived for stay empty.
func extractRecord(x *extract.Extractor, text string) model.Record {
	text = strings.TrimSpace(text)
	temporal := x.Temporal(text)

	var rec model.Record
	rec.Set(types.ColumnOpenedAt, temporal.OpenedAt)
	rec.Set(types.ColumnChannel, x.Channel(text))
	rec.Set(types.ColumnEventType, x.EventType(text))
	rec.Set(types.ColumnDescription, text)
	rec.Set(types.ColumnSystem, x.System(text))
	rec.Set(types.ColumnArea, x.Area(text))
	rec.Set(types.ColumnLocation, x.Place(text))
	rec.Set(types.ColumnImpact, x.Impact(text))
	rec.Set(types.ColumnClassification, x.Classification(text))
	rec.Set(types.ColumnImmediateAction, x.ImmediateAction(text))
	rec.Set(types.ColumnResolution, x.Resolution(text))
	rec.Set(types.ColumnCoordinatingUnit, x.CoordinatingUnit(text))
	rec.Set(types.ColumnOwner, x.Owner(text))
	rec.Set(types.ColumnClosedAt, temporal.ClosedAt)
	rec.Set(types.ColumnDuration, temporal.Duration)
	return rec
}

// mergeDraft fills the empty columns of rec with the draft values. Values equal
// to a soft default are treated as empty. Code, status and reserved columns are
// never taken from the draft.
func mergeDraft(rec *model.Record, draft model.Record, policy model.Policy) int {
	filled := 0
	for _, col := range types.Columns() {
		switch {
		case col == types.ColumnCode, col == types.ColumnStatus, col.IsReserved():
			continue
		}

		value := draft.Get(col)
		if value == "" {
			continue
		}
		current := rec.Get(col)
		if current != "" && current != policy.Defaults[col] {
			continue
		}
		if current == value {
			continue
		}
		rec.Set(col, value)
		filled++
	}
	return filled
}
