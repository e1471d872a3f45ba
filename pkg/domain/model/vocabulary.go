package model

import (
	_ "embed"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/types"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Rule maps keywords or regular expressions to a canonical label.
// A keyword ending with "*" matches as a word prefix, otherwise as a whole word.
// Aliases are only compared against whole column values.
type Rule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty"`
}

// Validate validates the rule
func (r *Rule) Validate() error {
	if r.Label == "" {
		return goerr.New("rule label is required")
	}
	if len(r.Keywords) == 0 && len(r.Patterns) == 0 && len(r.Aliases) == 0 {
		return goerr.New("rule requires at least one keyword, pattern or alias",
			goerr.V("label", r.Label))
	}
	for _, p := range r.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return goerr.Wrap(err, "invalid rule pattern",
				goerr.V("label", r.Label),
				goerr.V("pattern", p))
		}
	}
	return nil
}

// Gazetteer holds the place names recognized in free text
type Gazetteer struct {
	Country        string   `yaml:"country"`
	Cities         []string `yaml:"cities"`
	National       []string `yaml:"national"`
	NationalLabel  string   `yaml:"national_label"`
	Citywide       []string `yaml:"citywide"`
	CitywideSuffix string   `yaml:"citywide_suffix"`
	BranchPrefixes []string `yaml:"branch_prefixes"`
	BranchLabel    string   `yaml:"branch_label"`
}

// Vocabulary holds every keyword table used by the entity classifiers and the repair pass
type Vocabulary struct {
	Channels          []Rule    `yaml:"channels"`
	Systems           []Rule    `yaml:"systems"`
	Areas             []Rule    `yaml:"areas"`
	CoordinatingUnits []Rule    `yaml:"coordinating_units"`
	Impacts           []Rule    `yaml:"impacts"`
	EventTypes        []Rule    `yaml:"event_types"`
	Statuses          []Rule    `yaml:"statuses"`
	Classifications   []Rule    `yaml:"classifications"`
	Actions           []Rule    `yaml:"actions"`
	Resolutions       []Rule    `yaml:"resolutions"`
	Locations         Gazetteer `yaml:"locations"`
	OwnerCues         []string  `yaml:"owner_cues"`
}

// DefaultVocabulary returns the embedded vocabulary
func DefaultVocabulary() (*Vocabulary, error) {
	return ParseVocabulary(defaultVocabularyYAML)
}

// ParseVocabulary decodes and validates a YAML vocabulary
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, goerr.Wrap(err, "failed to parse vocabulary YAML")
	}
	if err := v.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid vocabulary")
	}
	return &v, nil
}

// Validate validates the vocabulary
func (v *Vocabulary) Validate() error {
	tables := []struct {
		name     string
		rules    []Rule
		required bool
	}{
		{"channels", v.Channels, true},
		{"systems", v.Systems, true},
		{"areas", v.Areas, false},
		{"coordinating_units", v.CoordinatingUnits, true},
		{"impacts", v.Impacts, false},
		{"event_types", v.EventTypes, false},
		{"statuses", v.Statuses, false},
		{"classifications", v.Classifications, true},
		{"actions", v.Actions, false},
		{"resolutions", v.Resolutions, false},
	}

	for _, table := range tables {
		if table.required && len(table.rules) == 0 {
			return goerr.New("vocabulary table is empty", goerr.V("table", table.name))
		}
		for i, r := range table.rules {
			if err := r.Validate(); err != nil {
				return goerr.Wrap(err, "invalid rule at index",
					goerr.V("table", table.name),
					goerr.V("index", i))
			}
		}
	}

	for _, r := range v.Classifications {
		c := types.Classification(r.Label)
		if !c.IsValid() || c == types.ClassificationMultiComponent || c == types.ClassificationOther {
			return goerr.New("classification rule label must be a pattern group",
				goerr.V("label", r.Label))
		}
	}

	for _, r := range v.Statuses {
		if !isValidStatus(r.Label) {
			return goerr.New("invalid status label", goerr.V("label", r.Label))
		}
	}

	for _, r := range v.EventTypes {
		if r.Label != types.EventTypeEvent.String() && r.Label != types.EventTypeIncident.String() {
			return goerr.New("invalid event type label", goerr.V("label", r.Label))
		}
	}

	if len(v.Locations.Cities) == 0 {
		return goerr.New("at least one city is required in the gazetteer")
	}

	return nil
}

func isValidStatus(label string) bool {
	for _, s := range types.Statuses {
		if s.String() == label {
			return true
		}
	}
	return false
}

// Labels returns the labels of a rule table in priority order
func Labels(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Label)
	}
	return out
}
