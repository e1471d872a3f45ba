// Package extract pulls dates, times and controlled-vocabulary labels out of
// free-text Spanish incident descriptions. Every extractor is a pure function of
// the text; the keyword tables are compiled once from a model.Vocabulary.
package extract

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// DefaultTimezone is the reference timezone used to resolve "today" and missing years
const DefaultTimezone = "America/La_Paz"

// Extractor holds the compiled keyword tables. It is immutable after New and safe
// for concurrent use.
type Extractor struct {
	loc *time.Location
	now func() time.Time

	channels          *ruleSet
	systems           *ruleSet
	areas             *ruleSet
	coordinatingUnits *ruleSet
	impacts           *ruleSet
	eventTypes        *ruleSet
	statuses          *ruleSet
	classifications   *ruleSet
	actions           *ruleSet
	resolutions       *ruleSet

	places *gazetteer
	owners *ownerMatcher
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLocation sets the reference timezone
func WithLocation(loc *time.Location) Option {
	return func(x *Extractor) {
		if loc != nil {
			x.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) {
		if now != nil {
			x.now = now
		}
	}
}

// New compiles the vocabulary into an Extractor
func New(vocab *model.Vocabulary, opts ...Option) (*Extractor, error) {
	if vocab == nil {
		return nil, goerr.New("vocabulary is required")
	}

	x := &Extractor{
		loc: time.UTC,
		now: time.Now,
	}
	if loc, err := time.LoadLocation(DefaultTimezone); err == nil {
		x.loc = loc
	}
	for _, opt := range opts {
		opt(x)
	}

	tables := []struct {
		name  string
		rules []model.Rule
		dst   **ruleSet
	}{
		{"channels", vocab.Channels, &x.channels},
		{"systems", vocab.Systems, &x.systems},
		{"areas", vocab.Areas, &x.areas},
		{"coordinating_units", vocab.CoordinatingUnits, &x.coordinatingUnits},
		{"impacts", vocab.Impacts, &x.impacts},
		{"event_types", vocab.EventTypes, &x.eventTypes},
		{"statuses", vocab.Statuses, &x.statuses},
		{"classifications", vocab.Classifications, &x.classifications},
		{"actions", vocab.Actions, &x.actions},
		{"resolutions", vocab.Resolutions, &x.resolutions},
	}
	for _, t := range tables {
		set, err := compileRules(t.rules)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to compile vocabulary table", goerr.V("table", t.name))
		}
		*t.dst = set
	}

	places, err := newGazetteer(vocab.Locations)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile gazetteer")
	}
	x.places = places

	owners, err := newOwnerMatcher(vocab.OwnerCues, x.notPersonName)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile owner cues")
	}
	x.owners = owners

	return x, nil
}

// Location returns the reference timezone
func (x *Extractor) Location() *time.Location {
	return x.loc
}

// Now returns the current time in the reference timezone
func (x *Extractor) Now() time.Time {
	return x.now().In(x.loc)
}

// Channel classifies how the incident was reported
func (x *Extractor) Channel(text string) string {
	return x.channels.first(Fold(text))
}

// System returns the first affected system in vocabulary priority order
func (x *Extractor) System(text string) string {
	return x.systems.first(Fold(text))
}

// Area returns the affected organizational area
func (x *Extractor) Area(text string) string {
	return x.areas.first(Fold(text))
}

// CoordinatingUnit maps unit keywords to their short code
func (x *Extractor) CoordinatingUnit(text string) string {
	return x.coordinatingUnits.first(Fold(text))
}

// Impact returns the stated impact level
func (x *Extractor) Impact(text string) string {
	return x.impacts.first(Fold(text))
}

// EventType tells events from incidents. Empty when the text uses neither word.
func (x *Extractor) EventType(text string) string {
	return x.eventTypes.first(Fold(text))
}

// ImmediateAction collects every matching action label, joined with "; "
func (x *Extractor) ImmediateAction(text string) string {
	return strings.Join(x.actions.all(Fold(text)), "; ")
}

// Resolution collects every matching resolution label, joined with "; "
func (x *Extractor) Resolution(text string) string {
	return strings.Join(x.resolutions.all(Fold(text)), "; ")
}

// Classification resolves exactly one of the fixed labels: the matching group,
// Multi-component when two or more groups match, Other when none does.
func (x *Extractor) Classification(text string) string {
	groups := x.classifications.all(Fold(text))
	switch len(groups) {
	case 0:
		return types.ClassificationOther.String()
	case 1:
		return groups[0]
	default:
		return types.ClassificationMultiComponent.String()
	}
}

// Place returns the normalized location of the incident
func (x *Extractor) Place(text string) string {
	return x.places.locate(text)
}

// Owner returns a likely responsible person. Best effort: the capitalized-words
// fallback can pick up any proper noun, so the value needs human confirmation.
func (x *Extractor) Owner(text string) string {
	return x.owners.find(text)
}

// Recognize reports whether a whole column value has the shape expected by col
// and returns its canonical form.
func (x *Extractor) Recognize(col types.Column, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	switch col {
	case types.ColumnChannel:
		return x.channels.exact(value)
	case types.ColumnSystem:
		return x.systems.exact(value)
	case types.ColumnImpact:
		return x.impacts.exact(value)
	case types.ColumnEventType:
		return x.eventTypes.exact(value)
	case types.ColumnStatus:
		if label, ok := x.statuses.exact(value); ok {
			return label, true
		}
		for _, s := range types.Statuses {
			if Fold(s.String()) == Fold(value) {
				return s.String(), true
			}
		}
		return "", false
	case types.ColumnCoordinatingUnit:
		return x.coordinatingUnits.exact(value)
	case types.ColumnClassification:
		for _, c := range types.Classifications {
			if Fold(c.String()) == Fold(value) {
				return c.String(), true
			}
		}
		return x.classifications.exact(value)
	case types.ColumnArea:
		if label := x.areas.first(Fold(value)); label != "" {
			return value, true
		}
		return "", false
	case types.ColumnLocation:
		return x.places.recognize(value)
	case types.ColumnOwner:
		if looksLikePersonName(value) && !x.notPersonName(value) {
			return TitleCase(value), true
		}
		return "", false
	case types.ColumnImmediateAction:
		if len(x.actions.all(Fold(value))) > 0 {
			return value, true
		}
		return "", false
	case types.ColumnResolution:
		if len(x.resolutions.all(Fold(value))) > 0 {
			return value, true
		}
		return "", false
	}

	return "", false
}

// notPersonName rejects capitalized sequences that are places, systems or channels
func (x *Extractor) notPersonName(candidate string) bool {
	folded := Fold(candidate)
	if x.places.mentionsCity(folded) {
		return true
	}
	if x.systems.first(folded) != "" || x.channels.first(folded) != "" {
		return true
	}
	if x.coordinatingUnits.first(folded) != "" || x.areas.first(folded) != "" {
		return true
	}
	return false
}
