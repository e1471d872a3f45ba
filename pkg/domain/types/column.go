package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Column is the position of a field in the 21-column record
type Column int

const (
	ColumnCode Column = iota
	ColumnOpenedAt
	ColumnChannel
	ColumnEventType
	ColumnDescription
	ColumnSystem
	ColumnArea
	ColumnLocation
	ColumnImpact
	ColumnClassification
	ColumnImmediateAction
	ColumnResolution
	ColumnCoordinatingUnit
	ColumnOwner
	ColumnClosedAt
	ColumnDuration
	ColumnStatus
	ColumnVulnerability
	ColumnCause
	ColumnThreatID
	ColumnThreat

	// ColumnCount is the fixed number of fields in a record
	ColumnCount = 21
)

var columnNames = [ColumnCount]string{
	"code",
	"opened_at",
	"channel",
	"event_type",
	"description",
	"system",
	"area",
	"location",
	"impact",
	"classification",
	"immediate_action",
	"resolution",
	"coordinating_unit",
	"owner",
	"closed_at",
	"duration",
	"status",
	"vulnerability",
	"cause",
	"threat_id",
	"threat",
}

// Sheet headers, in the language of the spreadsheet the records end up in
var columnHeaders = [ColumnCount]string{
	"CODIGO",
	"Fecha y Hora de Apertura",
	"Modo Reporte",
	"Evento/ Incidente",
	"Descripción Evento/ Incidente",
	"Sistema",
	"Area",
	"Ubicación",
	"Impacto",
	"Clasificación",
	"Acción Inmediata",
	"Solución",
	"Area de GTIC - Coordinando",
	"Encargado SI",
	"Fecha y Hora de Cierre",
	"Tiempo Solución",
	"Estado",
	"Vulnerabilidad",
	"Causa",
	"ID Amenaza",
	"Amenaza",
}

// ReportedAtHeader is the header of the extra server timestamp cell written after the record
const ReportedAtHeader = "Hora de reporte"

// Columns returns every column in positional order
func Columns() []Column {
	cols := make([]Column, ColumnCount)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// IsValid checks if the column is inside the schema
func (c Column) IsValid() bool {
	return c >= 0 && c < ColumnCount
}

// String returns the snake_case name of the column
func (c Column) String() string {
	if !c.IsValid() {
		return "unknown"
	}
	return columnNames[c]
}

// Header returns the spreadsheet header of the column
func (c Column) Header() string {
	if !c.IsValid() {
		return ""
	}
	return columnHeaders[c]
}

// Label returns a human readable name, e.g. "coordinating unit"
func (c Column) Label() string {
	return strings.ReplaceAll(c.String(), "_", " ")
}

// IsReserved reports whether the column is only filled by an external classification process
func (c Column) IsReserved() bool {
	switch c {
	case ColumnVulnerability, ColumnCause, ColumnThreatID, ColumnThreat:
		return true
	default:
		return false
	}
}

// Headers returns all sheet headers in positional order
func Headers() []string {
	headers := make([]string, ColumnCount)
	copy(headers, columnHeaders[:])
	return headers
}

// ParseColumn resolves a column from its snake_case or spaced name
func ParseColumn(name string) (Column, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	for i, n := range columnNames {
		if n == key {
			return Column(i), nil
		}
	}
	return 0, goerr.New("unknown column", goerr.V("name", name))
}
