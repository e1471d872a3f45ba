package extract

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/model"
)

type compiledRule struct {
	label    string
	matchers []*regexp.Regexp
	// folded whole values accepted as this label
	values map[string]struct{}
}

// ruleSet is an ordered, immutable list of rules. Earlier rules win.
type ruleSet struct {
	rules []compiledRule
}

func compileRules(rules []model.Rule) (*ruleSet, error) {
	set := &ruleSet{rules: make([]compiledRule, 0, len(rules))}

	for _, r := range rules {
		cr := compiledRule{
			label:  r.Label,
			values: map[string]struct{}{Fold(r.Label): {}},
		}

		for _, kw := range r.Keywords {
			re, err := keywordRegexp(kw)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to compile keyword",
					goerr.V("label", r.Label),
					goerr.V("keyword", kw))
			}
			cr.matchers = append(cr.matchers, re)
			if !strings.HasSuffix(kw, "*") {
				cr.values[Fold(kw)] = struct{}{}
			}
		}

		for _, p := range r.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to compile pattern",
					goerr.V("label", r.Label),
					goerr.V("pattern", p))
			}
			cr.matchers = append(cr.matchers, re)
		}

		for _, a := range r.Aliases {
			cr.values[Fold(a)] = struct{}{}
		}

		set.rules = append(set.rules, cr)
	}

	return set, nil
}

func keywordRegexp(kw string) (*regexp.Regexp, error) {
	folded := Fold(strings.TrimSpace(kw))
	prefix := strings.HasSuffix(folded, "*")
	folded = strings.TrimSuffix(folded, "*")
	if folded == "" {
		return nil, goerr.New("empty keyword")
	}

	expr := `\b` + regexp.QuoteMeta(folded)
	if !prefix {
		expr += `\b`
	}
	return regexp.Compile(expr)
}

func (r *compiledRule) match(folded string) bool {
	for _, m := range r.matchers {
		if m.MatchString(folded) {
			return true
		}
	}
	return false
}

// first returns the label of the first rule matching the folded text
func (s *ruleSet) first(folded string) string {
	for i := range s.rules {
		if s.rules[i].match(folded) {
			return s.rules[i].label
		}
	}
	return ""
}

// all returns the labels of every matching rule, in rule order
func (s *ruleSet) all(folded string) []string {
	var labels []string
	for i := range s.rules {
		if s.rules[i].match(folded) {
			labels = append(labels, s.rules[i].label)
		}
	}
	return labels
}

// exact resolves a whole column value to a canonical label
func (s *ruleSet) exact(value string) (string, bool) {
	key := Fold(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	for i := range s.rules {
		if _, ok := s.rules[i].values[key]; ok {
			return s.rules[i].label, true
		}
	}
	return "", false
}
