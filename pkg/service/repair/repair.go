// Package repair fixes records whose values landed in the wrong column, typically
// after a language model shifted or swapped fields, and enforces the record invariants.
package repair

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"github.com/secmon-lab/intake/pkg/service/extract"
)

// Order matters: later detectors may act on slots vacated by earlier ones.
var positionalDetectors = []types.Column{
	types.ColumnImpact,
	types.ColumnStatus,
	types.ColumnEventType,
	types.ColumnChannel,
	types.ColumnCoordinatingUnit,
	types.ColumnOwner,
	types.ColumnSystem,
	types.ColumnLocation,
}

var multiHitDetectors = []types.Column{
	types.ColumnImmediateAction,
	types.ColumnResolution,
}

// Columns restricted to a closed label set. Unknown values are cleared.
var closedColumns = []types.Column{
	types.ColumnChannel,
	types.ColumnEventType,
	types.ColumnImpact,
	types.ColumnStatus,
	types.ColumnCoordinatingUnit,
}

var (
	codeRE     = regexp.MustCompile(`^INC-\d{2}-\d{2}-(?:\d{3}|T\d{6})$`)
	durationRE = regexp.MustCompile(`^\d+ horas \d+ minutos$`)
)

// Repairer runs the column repair pass
type Repairer struct {
	x      *extract.Extractor
	policy model.Policy
}

// New creates a Repairer backed by the extractor's vocabulary
func New(x *extract.Extractor, policy model.Policy) *Repairer {
	return &Repairer{x: x, policy: policy}
}

// Policy returns the default and required column policy
func (r *Repairer) Policy() model.Policy {
	return r.policy
}

// Repair returns the repaired copy of rec and one advisory per correction.
// Repair(Repair(rec)) == Repair(rec).
func (r *Repairer) Repair(rec model.Record) (model.Record, []model.Advisory) {
	var advisories []model.Advisory

	r.normalizeTemporal(&rec, &advisories, false)

	// A move only fills an empty home and empties a foreign slot, so the number of
	// misplaced values strictly decreases and the loop terminates.
	for {
		moved := r.relocate(&rec, &advisories)
		changed := r.canonicalize(&rec, &advisories)
		if !moved && !changed {
			break
		}
	}

	r.finalize(&rec, &advisories)
	return rec, advisories
}

// Validate applies the required-column policy. The error is a *model.MissingFieldsError.
func (r *Repairer) Validate(rec *model.Record) error {
	return r.policy.Validate(rec)
}

func (r *Repairer) relocate(rec *model.Record, advisories *[]model.Advisory) bool {
	moved := false

	for _, home := range positionalDetectors {
		if rec.Get(home) != "" {
			continue
		}
		for _, pos := range types.Columns() {
			if pos == home {
				continue
			}
			value := rec.Get(pos)
			if value == "" || r.validAt(pos, value) {
				continue
			}
			canonical, ok := r.x.Recognize(home, value)
			if !ok {
				continue
			}
			rec.Set(home, canonical)
			rec.Set(pos, "")
			*advisories = append(*advisories, moveAdvisory(value, pos, home))
			moved = true
			break
		}
	}

	for _, home := range multiHitDetectors {
		if rec.Get(home) != "" {
			continue
		}
		var hits []string
		for _, pos := range types.Columns() {
			if pos == home {
				continue
			}
			value := rec.Get(pos)
			if value == "" || r.validAt(pos, value) {
				continue
			}
			if _, ok := r.x.Recognize(home, value); !ok {
				continue
			}
			hits = append(hits, value)
			rec.Set(pos, "")
			*advisories = append(*advisories, moveAdvisory(value, pos, home))
		}
		if len(hits) > 0 {
			rec.Set(home, strings.Join(hits, "; "))
			moved = true
		}
	}

	return moved
}

// normalizeTemporal rewrites open, close and duration into the record formats.
// Unreadable values stay in place for the relocation pass unless clearUnreadable
// is set.
func (r *Repairer) normalizeTemporal(rec *model.Record, advisories *[]model.Advisory, clearUnreadable bool) {
	loc := r.x.Location()

	var opened time.Time
	if value := rec.Get(types.ColumnOpenedAt); value != "" {
		if t, ok := r.x.DateTime(value, time.Time{}); ok {
			opened = t
			r.rewrite(rec, types.ColumnOpenedAt, t.In(loc).Format(model.DateTimeLayout), advisories)
		} else if clearUnreadable {
			r.clear(rec, types.ColumnOpenedAt, advisories)
		}
	}

	if value := rec.Get(types.ColumnClosedAt); value != "" {
		if t, ok := r.x.DateTime(value, opened); ok {
			r.rewrite(rec, types.ColumnClosedAt, t.In(loc).Format(model.DateTimeLayout), advisories)
		} else if clearUnreadable {
			r.clear(rec, types.ColumnClosedAt, advisories)
		}
	}

	if value := rec.Get(types.ColumnDuration); value != "" {
		if d, ok := extract.Duration(value); ok {
			r.rewrite(rec, types.ColumnDuration, d, advisories)
		} else if clearUnreadable {
			r.clear(rec, types.ColumnDuration, advisories)
		}
	}
}

func (r *Repairer) rewrite(rec *model.Record, col types.Column, value string, advisories *[]model.Advisory) {
	old := rec.Get(col)
	if old == value {
		return
	}
	rec.Set(col, value)
	*advisories = append(*advisories, model.Advisory{
		Message: fmt.Sprintf("%s %q rewritten as %q", col.Label(), old, value),
		Column:  col.String(),
	})
}

func (r *Repairer) clear(rec *model.Record, col types.Column, advisories *[]model.Advisory) {
	*advisories = append(*advisories, model.Advisory{
		Message: fmt.Sprintf("cleared unreadable %s value %q", col.Label(), rec.Get(col)),
		Column:  col.String(),
	})
	rec.Set(col, "")
}

// validAt reports whether value is acceptable at its current position, in which
// case it is never moved.
func (r *Repairer) validAt(col types.Column, value string) bool {
	switch col {
	case types.ColumnDescription:
		return true
	case types.ColumnCode:
		return codeRE.MatchString(value)
	case types.ColumnOpenedAt, types.ColumnClosedAt:
		rec := model.Record{}
		rec.Set(col, value)
		if col == types.ColumnOpenedAt {
			_, ok := rec.OpenedAt(r.x.Location())
			return ok
		}
		_, ok := rec.ClosedAt(r.x.Location())
		return ok
	case types.ColumnDuration:
		return durationRE.MatchString(value)
	case types.ColumnVulnerability, types.ColumnCause, types.ColumnThreatID, types.ColumnThreat:
		return false
	}

	_, ok := r.x.Recognize(col, value)
	return ok
}

// canonicalize maps recognized values to their canonical label. Unknown values in
// closed columns become the description when it is empty and are cleared otherwise.
func (r *Repairer) canonicalize(rec *model.Record, advisories *[]model.Advisory) bool {
	changed := false

	for _, col := range closedColumns {
		value := rec.Get(col)
		if value == "" {
			continue
		}
		canonical, ok := r.x.Recognize(col, value)
		if !ok && rec.Get(types.ColumnDescription) == "" {
			rec.Set(types.ColumnDescription, value)
			rec.Set(col, "")
			*advisories = append(*advisories, moveAdvisory(value, col, types.ColumnDescription))
			changed = true
			continue
		}
		if !ok {
			rec.Set(col, "")
			*advisories = append(*advisories, model.Advisory{
				Message: fmt.Sprintf("cleared unknown %s value %q", col.Label(), value),
				Column:  col.String(),
			})
			changed = true
			continue
		}
		if canonical != value {
			rec.Set(col, canonical)
			changed = true
		}
	}

	// Open-ended columns keep unknown values as free text
	if value := rec.Get(types.ColumnSystem); value != "" {
		if canonical, ok := r.x.Recognize(types.ColumnSystem, value); ok && canonical != value {
			rec.Set(types.ColumnSystem, canonical)
			changed = true
		}
	}

	if value := rec.Get(types.ColumnLocation); value != "" {
		canonical, ok := r.x.Recognize(types.ColumnLocation, value)
		if !ok {
			canonical = r.x.Place(value)
		}
		if canonical != "" && canonical != value {
			rec.Set(types.ColumnLocation, canonical)
			changed = true
		}
	}

	if value := rec.Get(types.ColumnOwner); value != "" {
		if canonical, ok := r.x.Recognize(types.ColumnOwner, value); ok && canonical != value {
			rec.Set(types.ColumnOwner, canonical)
			changed = true
		}
	}

	return changed
}

// finalize enforces the invariants that do not depend on column positions
func (r *Repairer) finalize(rec *model.Record, advisories *[]model.Advisory) {
	if value := rec.Get(types.ColumnClassification); value != "" {
		if canonical, ok := r.x.Recognize(types.ColumnClassification, value); ok {
			rec.Set(types.ColumnClassification, canonical)
		} else {
			reclassified := r.x.Classification(value + " " + rec.Get(types.ColumnDescription))
			rec.Set(types.ColumnClassification, reclassified)
			*advisories = append(*advisories, model.Advisory{
				Message: fmt.Sprintf("unknown classification %q replaced by %q", value, reclassified),
				Column:  types.ColumnClassification.String(),
			})
		}
	}

	for col, def := range r.policy.Defaults {
		if rec.Get(col) == "" {
			rec.Set(col, def)
		}
	}

	for _, col := range types.Columns() {
		if col.IsReserved() && rec.Get(col) != "" {
			*advisories = append(*advisories, model.Advisory{
				Message: fmt.Sprintf("reserved %s column was cleared", col.Label()),
				Column:  col.String(),
			})
		}
	}
	rec.ClearReserved()

	r.normalizeTemporal(rec, advisories, true)

	loc := r.x.Location()
	if closed, ok := rec.ClosedAt(loc); ok {
		if opened, ok := rec.OpenedAt(loc); ok && closed.Before(opened) {
			rec.Set(types.ColumnClosedAt, "")
			*advisories = append(*advisories, model.Advisory{
				Message: "close time earlier than open time was dropped",
				Column:  types.ColumnClosedAt.String(),
			})
		}
	}
	if rec.Get(types.ColumnDuration) == "" {
		rec.Set(types.ColumnDuration, extract.ElapsedDuration(
			rec.Get(types.ColumnOpenedAt), rec.Get(types.ColumnClosedAt), loc))
	}

	if rec.Get(types.ColumnStatus) == "" {
		rec.Set(types.ColumnStatus, DeriveStatus(rec).String())
	}
}

// DeriveStatus is Closed when the record has a close time, Under investigation otherwise
func DeriveStatus(rec *model.Record) types.Status {
	if rec.Get(types.ColumnClosedAt) != "" {
		return types.StatusClosed
	}
	return types.StatusUnderInvestigation
}

func moveAdvisory(value string, from, to types.Column) model.Advisory {
	return model.Advisory{
		Message: fmt.Sprintf("moved %q from %s to %s", value, from.Label(), to.Label()),
		Column:  to.String(),
	}
}
