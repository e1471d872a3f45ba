package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
)

var (
	nameWords    = `(\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+){0,2})`
	capitalSeqRE = regexp.MustCompile(`\p{Lu}\p{Ll}+(?:\s+\p{Lu}\p{Ll}+){1,3}`)
)

// Words that start sentences or describe things rather than people. Compared folded.
var nameStopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		el la los las un una unos unas de del al a en y o u se no por para con sin
		desde hasta hoy ayer anteayer manana tarde noche este esta estos estas ese esa
		lunes martes miercoles jueves viernes sabado domingo
		enero febrero marzo abril mayo junio julio agosto septiembre setiembre octubre noviembre diciembre
		incidente evento usuario usuarios equipo equipos servidor servidores cliente clientes
		sistema sistemas area servicio servicios caso reporte alerta favor buenos buenas saludos
		estimado estimados estimada gracias`) {
		nameStopWords[w] = struct{}{}
	}
}

type ownerMatcher struct {
	cues   []*regexp.Regexp
	reject func(string) bool
}

// newOwnerMatcher compiles cue phrases. Longer cues are tried first so that
// "encargado es" wins over "encargado".
func newOwnerMatcher(cues []string, reject func(string) bool) (*ownerMatcher, error) {
	sorted := make([]string, 0, len(cues))
	for _, c := range cues {
		if c = strings.TrimSpace(c); c != "" {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	m := &ownerMatcher{reject: reject}
	for _, c := range sorted {
		words := strings.Fields(c)
		for i := range words {
			words[i] = regexp.QuoteMeta(words[i])
		}
		re, err := regexp.Compile(`\b(?i:` + strings.Join(words, `\s+`) + `)\s*[:\-]?\s*` + nameWords)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid owner cue", goerr.V("cue", c))
		}
		m.cues = append(m.cues, re)
	}
	return m, nil
}

// find returns the first cue-introduced name, else the first capitalized 2 to 3
// word sequence that is not a stop word, place or system.
func (m *ownerMatcher) find(text string) string {
	for _, re := range m.cues {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			if name := m.accept(strings.Fields(match[1]), 1); name != "" {
				return name
			}
		}
	}

	for _, seq := range capitalSeqRE.FindAllString(text, -1) {
		words := strings.Fields(seq)
		for len(words) > 0 && isStopWord(words[0]) {
			words = words[1:]
		}
		if len(words) > 3 {
			words = words[:3]
		}
		if name := m.accept(words, 2); name != "" {
			return name
		}
	}
	return ""
}

// accept shortens the candidate from the right until it is no longer rejected
func (m *ownerMatcher) accept(words []string, minWords int) string {
	for n := len(words); n >= minWords; n-- {
		candidate := words[:n]
		if hasStopWord(candidate) {
			continue
		}
		joined := strings.Join(candidate, " ")
		if m.reject != nil && m.reject(joined) {
			continue
		}
		return TitleCase(joined)
	}
	return ""
}

func isStopWord(w string) bool {
	_, ok := nameStopWords[Fold(w)]
	return ok
}

func hasStopWord(words []string) bool {
	for _, w := range words {
		if isStopWord(w) {
			return true
		}
	}
	return false
}

// looksLikePersonName checks the shape of a whole value: two or three
// capitalized alphabetic words, none of them a stop word.
func looksLikePersonName(value string) bool {
	words := strings.Fields(value)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		if isStopWord(w) {
			return false
		}
		for i, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
			if i == 0 && !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return true
}
