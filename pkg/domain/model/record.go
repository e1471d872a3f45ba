package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/intake/pkg/domain/types"
)

// DateTimeLayout is the literal format of the open and close columns
const DateTimeLayout = "2006-01-02 15:04"

// Record is the fixed 21-field representation of one incident.
// Empty string means unknown or not stated.
type Record [types.ColumnCount]string

// Get returns the value at the column
func (r *Record) Get(c types.Column) string {
	if !c.IsValid() {
		return ""
	}
	return r[c]
}

// Set stores a trimmed value at the column
func (r *Record) Set(c types.Column, v string) {
	if !c.IsValid() {
		return
	}
	r[c] = strings.TrimSpace(v)
}

// Fields returns the record as an ordered slice of 21 values
func (r *Record) Fields() []string {
	out := make([]string, types.ColumnCount)
	copy(out, r[:])
	return out
}

// Map returns the record keyed by column name
func (r *Record) Map() map[string]string {
	out := make(map[string]string, types.ColumnCount)
	for _, c := range types.Columns() {
		out[c.String()] = r[c]
	}
	return out
}

// ClearReserved blanks the columns owned by the external threat classification process
func (r *Record) ClearReserved() {
	for _, c := range types.Columns() {
		if c.IsReserved() {
			r[c] = ""
		}
	}
}

// OpenedAt parses the open timestamp in loc. ok is false when the column is empty or malformed.
func (r *Record) OpenedAt(loc *time.Location) (time.Time, bool) {
	return parseDateTime(r[types.ColumnOpenedAt], loc)
}

// ClosedAt parses the close timestamp in loc. ok is false when the column is empty or malformed.
func (r *Record) ClosedAt(loc *time.Location) (time.Time, bool) {
	return parseDateTime(r[types.ColumnClosedAt], loc)
}

func parseDateTime(v string, loc *time.Location) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateTimeLayout, v, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Summary renders the one-paragraph interpretation shown before a record is saved
func (r *Record) Summary() string {
	parts := []struct {
		label string
		col   types.Column
	}{
		{"Apertura", types.ColumnOpenedAt},
		{"Modo", types.ColumnChannel},
		{"Sistema", types.ColumnSystem},
		{"Área", types.ColumnArea},
		{"Ubicación", types.ColumnLocation},
		{"Clasificación", types.ColumnClassification},
		{"Descripción", types.ColumnDescription},
		{"Acción inmediata", types.ColumnImmediateAction},
		{"Solución", types.ColumnResolution},
		{"Encargado", types.ColumnOwner},
		{"Cierre", types.ColumnClosedAt},
		{"Tiempo de solución", types.ColumnDuration},
		{"Estado", types.ColumnStatus},
	}

	var sentences []string
	for _, p := range parts {
		v := r[p.col]
		if v == "" {
			continue
		}
		if !strings.HasSuffix(v, ".") {
			v += "."
		}
		sentences = append(sentences, fmt.Sprintf("%s: %s", p.label, v))
	}
	return strings.Join(sentences, " ")
}

// Advisory is an informational note about an automatic correction
type Advisory struct {
	Message string `json:"message"`
	Column  string `json:"column,omitempty"`
}

// NormalizeFields coerces an arbitrary list of values into exactly 21 fields.
// Excess values are folded into the description column, which absorbs the tokens
// that follow it; missing values are padded with empty strings.
func NormalizeFields(fields []string) (Record, []Advisory) {
	var rec Record
	var advisories []Advisory

	trimmed := make([]string, len(fields))
	for i, f := range fields {
		trimmed[i] = strings.TrimSpace(f)
	}

	switch {
	case len(trimmed) > types.ColumnCount:
		excess := len(trimmed) - types.ColumnCount
		desc := int(types.ColumnDescription)
		merged := make([]string, 0, types.ColumnCount)
		merged = append(merged, trimmed[:desc]...)
		merged = append(merged, joinNonEmpty(trimmed[desc:desc+excess+1], " | "))
		merged = append(merged, trimmed[desc+excess+1:]...)
		copy(rec[:], merged)
		advisories = append(advisories, Advisory{
			Message: fmt.Sprintf("received %d fields instead of %d; %d extra fields were merged into the description", len(trimmed), types.ColumnCount, excess),
			Column:  types.ColumnDescription.String(),
		})

	case len(trimmed) < types.ColumnCount:
		copy(rec[:], trimmed)
		advisories = append(advisories, Advisory{
			Message: fmt.Sprintf("received %d fields instead of %d; %d missing fields were left empty", len(trimmed), types.ColumnCount, types.ColumnCount-len(trimmed)),
		})

	default:
		copy(rec[:], trimmed)
	}

	return rec, advisories
}

// ParseRow splits a pipe-delimited line and normalizes it to 21 fields. A leading
// "|" is an empty code column; a line framed as a markdown table row ("| a | b |")
// loses one outer pipe on each side unless it already splits into 21 fields.
func ParseRow(line string) (Record, []Advisory) {
	line = strings.TrimSpace(line)
	if strings.Trim(line, "| \t") == "" {
		return NormalizeFields(nil)
	}

	fields := strings.Split(line, "|")
	if len(fields) != types.ColumnCount && isFramed(line) {
		fields = fields[1 : len(fields)-1]
	}
	return NormalizeFields(fields)
}

func isFramed(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

func joinNonEmpty(values []string, sep string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
