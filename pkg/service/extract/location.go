package extract

import (
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/intake/pkg/domain/model"
)

type city struct {
	name  string
	regex *regexp.Regexp
}

// gazetteer resolves place mentions to the normalized location format
type gazetteer struct {
	country        string
	cities         []city
	national       *ruleSet
	nationalLabel  string
	citywide       *ruleSet
	citywideSuffix string
	branchRE       *regexp.Regexp
	branchLabel    string
}

func newGazetteer(g model.Gazetteer) (*gazetteer, error) {
	out := &gazetteer{
		country:        g.Country,
		nationalLabel:  g.NationalLabel,
		citywideSuffix: g.CitywideSuffix,
		branchLabel:    g.BranchLabel,
	}
	if out.nationalLabel == "" {
		out.nationalLabel = "Nacional"
	}
	if out.branchLabel == "" {
		out.branchLabel = "Agencia"
	}

	for _, name := range g.Cities {
		re, err := keywordRegexp(name)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid city", goerr.V("city", name))
		}
		out.cities = append(out.cities, city{name: name, regex: re})
	}

	var err error
	if out.national, err = compileRules([]model.Rule{{Label: out.nationalLabel, Keywords: g.National}}); err != nil {
		return nil, goerr.Wrap(err, "invalid national phrase")
	}
	if out.citywide, err = compileRules([]model.Rule{{Label: "citywide", Keywords: g.Citywide}}); err != nil {
		return nil, goerr.Wrap(err, "invalid citywide phrase")
	}

	if len(g.BranchPrefixes) > 0 {
		prefixes := make([]string, 0, len(g.BranchPrefixes))
		for _, p := range g.BranchPrefixes {
			prefixes = append(prefixes, regexp.QuoteMeta(strings.TrimSpace(p)))
		}
		// Branch names are the capitalized words right after the prefix
		expr := `\b(?i:` + strings.Join(prefixes, "|") + `)\s+(\p{Lu}[\p{L}\d]*(?:\s+\p{Lu}[\p{L}\d]*)?)`
		if out.branchRE, err = regexp.Compile(expr); err != nil {
			return nil, goerr.Wrap(err, "invalid branch prefixes")
		}
	}

	return out, nil
}

func (g *gazetteer) withCountry(place string) string {
	if g.country == "" {
		return place
	}
	return place + ", " + g.country
}

// firstCity returns the first gazetteer city mentioned in folded text, in gazetteer order
func (g *gazetteer) firstCity(folded string) string {
	for _, c := range g.cities {
		if c.regex.MatchString(folded) {
			return c.name
		}
	}
	return ""
}

func (g *gazetteer) mentionsCity(folded string) bool {
	return g.firstCity(folded) != ""
}

func (g *gazetteer) isCity(name string) bool {
	key := Fold(strings.TrimSpace(name))
	for _, c := range g.cities {
		if Fold(c.name) == key {
			return true
		}
	}
	return false
}

// locate applies, in order: national phrases, branch mentions, citywide phrases
// with a city, then a plain city mention.
func (g *gazetteer) locate(text string) string {
	folded := Fold(text)

	if g.national.first(folded) != "" {
		return g.withCountry(g.nationalLabel)
	}

	cityName := g.firstCity(folded)

	if branch := g.branch(text); branch != "" {
		place := g.branchLabel + " " + branch
		if cityName != "" && Fold(cityName) != Fold(branch) {
			return place + " - " + g.withCountry(cityName)
		}
		return g.withCountry(place)
	}

	if cityName == "" {
		return ""
	}
	if g.citywide.first(folded) != "" && g.citywideSuffix != "" {
		return g.withCountry(cityName) + " " + g.citywideSuffix
	}
	return g.withCountry(cityName)
}

// branch returns the title-cased branch name, skipping names that are plain cities
func (g *gazetteer) branch(text string) string {
	if g.branchRE == nil {
		return ""
	}
	for _, m := range g.branchRE.FindAllStringSubmatch(text, -1) {
		if g.isCity(m[1]) {
			continue
		}
		return TitleCase(m[1])
	}
	return ""
}

// recognize accepts whole values that already look like a location: a bare
// gazetteer city, or any value naming the country or the national label.
func (g *gazetteer) recognize(value string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, c := range g.cities {
		if Fold(c.name) == Fold(value) {
			return g.withCountry(c.name), true
		}
	}

	folded := Fold(value)
	if g.country != "" && strings.Contains(folded, Fold(g.country)) {
		return value, true
	}
	if folded == Fold(g.nationalLabel) || g.national.first(folded) != "" {
		return g.withCountry(g.nationalLabel), true
	}
	return "", false
}
