package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/secmon-lab/intake/pkg/domain/model"
)

// Temporal is the (open, close, duration) triple derived from free text.
// Every value uses the record formats and is empty when it cannot be derived.
type Temporal struct {
	OpenedAt string
	ClosedAt string
	Duration string
}

// ClockTime is a time of day in 24-hour form
type ClockTime struct {
	Hour   int
	Minute int
}

// String returns HH:MM
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

var months = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

type datePattern struct {
	name  string
	regex *regexp.Regexp
	parse func(m []string, currentYear int) (year int, month time.Month, day int, ok bool)
}

// Date patterns in priority order; the first valid match wins.
var datePatterns = []datePattern{
	{
		name:  "iso",
		regex: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		parse: func(m []string, _ int) (int, time.Month, int, bool) {
			return atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]), true
		},
	},
	{
		name:  "spanish_long",
		regex: regexp.MustCompile(`\b(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)(?:\s+(?:de|del)\s+(\d{4}))?\b`),
		parse: func(m []string, currentYear int) (int, time.Month, int, bool) {
			year := currentYear
			if m[3] != "" {
				year = atoi(m[3])
			}
			return year, months[m[2]], atoi(m[1]), true
		},
	},
	{
		name:  "numeric",
		// numbers touching ":" belong to a time ("09:15-09:40"), not a date
		regex: regexp.MustCompile(`(?:^|[^\d:])(\d{1,2})([/-])(\d{1,2})(?:[/-](\d{4}|\d{2}))?(:\d|\d)?`),
		parse: func(m []string, currentYear int) (int, time.Month, int, bool) {
			if m[5] != "" {
				return 0, 0, 0, false
			}
			year := currentYear
			switch len(m[4]) {
			case 4:
				year = atoi(m[4])
			case 2:
				year = 2000 + atoi(m[4])
			}
			return year, time.Month(atoi(m[3])), atoi(m[1]), true
		},
	},
}

var relativeDates = []struct {
	regex  *regexp.Regexp
	offset int
}{
	{regexp.MustCompile(`\b(?:anteayer|antes de ayer)\b`), -2},
	{regexp.MustCompile(`\bayer\b`), -1},
	{regexp.MustCompile(`\bhoy\b`), 0},
}

// 24-hour HH:MM with an optional am/pm marker, "H am|pm", or "H de la mañana|tarde|noche"
var timeRE = regexp.MustCompile(
	`\b([01]?\d|2[0-3]):([0-5]\d)\b(?:\s*([ap])\.?\s?m\b\.?|\s+de\s+la\s+(manana|tarde|noche)\b)?` +
		`|\b(1[0-2]|0?[1-9])\s*([ap])\.?\s?m\b\.?` +
		`|\b(1[0-2]|0?[1-9])\s+de\s+la\s+(manana|tarde|noche)\b`)

var (
	hoursPhraseRE   = regexp.MustCompile(`(?:^|[^\d:])(\d{1,3})\s*(?:horas?|hrs?|h)\b`)
	minutesPhraseRE = regexp.MustCompile(`(?:^|[^\d:])(\d{1,4})\s*(?:minutos?|mins?)\b`)
	halfHourRE      = regexp.MustCompile(`\bmedia hora\b`)
	durationRE      = regexp.MustCompile(`^\d+ horas \d+ minutos$`)
)

// ExtractDate finds the first explicit date in text. Absolute dates take precedence
// over relative words such as "ayer". A missing year resolves to the current year
// in the reference timezone.
func (x *Extractor) ExtractDate(text string) (time.Time, bool) {
	folded := Fold(text)
	now := x.now().In(x.loc)

	for _, p := range datePatterns {
		for _, m := range p.regex.FindAllStringSubmatch(folded, -1) {
			year, month, day, ok := p.parse(m, now.Year())
			if !ok {
				continue
			}
			if d, ok := validDate(year, month, day, x.loc); ok {
				return d, true
			}
		}
	}

	for _, r := range relativeDates {
		if r.regex.MatchString(folded) {
			y, m, d := now.AddDate(0, 0, r.offset).Date()
			return time.Date(y, m, d, 0, 0, 0, 0, x.loc), true
		}
	}

	return time.Time{}, false
}

// ExtractTimes returns every time of day in order of appearance, normalized to
// 24-hour form and deduplicated.
func (x *Extractor) ExtractTimes(text string) []ClockTime {
	folded := Fold(text)

	var out []ClockTime
	seen := make(map[ClockTime]struct{})
	for _, m := range timeRE.FindAllStringSubmatch(folded, -1) {
		var ct ClockTime
		switch {
		case m[1] != "":
			ct = ClockTime{Hour: atoi(m[1]), Minute: atoi(m[2])}
			if m[3] != "" {
				ct.Hour = applyMeridiem(ct.Hour, m[3])
			} else {
				ct.Hour = applyPeriod(ct.Hour, m[4])
			}
		case m[5] != "":
			ct = ClockTime{Hour: applyMeridiem(atoi(m[5]), m[6])}
		case m[7] != "":
			ct = ClockTime{Hour: applyPeriod(atoi(m[7]), m[8])}
		default:
			continue
		}

		if _, ok := seen[ct]; ok {
			continue
		}
		seen[ct] = struct{}{}
		out = append(out, ct)
	}
	return out
}

// applyMeridiem converts 12-hour values: 12 am -> 0, h pm -> h+12 for h != 12.
// Hours already past noon are left untouched.
func applyMeridiem(hour int, marker string) int {
	switch marker {
	case "a":
		if hour == 12 {
			return 0
		}
	case "p":
		if hour < 12 {
			return hour + 12
		}
	}
	return hour
}

// applyPeriod converts "de la mañana|tarde|noche" to 24-hour form
func applyPeriod(hour int, period string) int {
	switch period {
	case "manana":
		return applyMeridiem(hour, "a")
	case "tarde":
		return applyMeridiem(hour, "p")
	case "noche":
		if hour == 12 {
			return 0
		}
		return applyMeridiem(hour, "p")
	}
	return hour
}

// Temporal derives open, close and duration. Open is the first time found on the
// resolved date (today when the text has no date). Close is the last distinct time,
// rolled to the next day when it is earlier than open. Nothing is fabricated when
// the text contains no time.
func (x *Extractor) Temporal(text string) Temporal {
	var result Temporal

	times := x.ExtractTimes(text)
	if len(times) > 0 {
		base, ok := x.ExtractDate(text)
		if !ok {
			y, m, d := x.now().In(x.loc).Date()
			base = time.Date(y, m, d, 0, 0, 0, 0, x.loc)
		}

		first := times[0]
		opened := at(base, first)
		result.OpenedAt = opened.Format(model.DateTimeLayout)

		if len(times) > 1 {
			last := times[len(times)-1]
			closed := at(base, last)
			if last.minutes() < first.minutes() {
				closed = closed.AddDate(0, 0, 1)
			}
			result.ClosedAt = closed.Format(model.DateTimeLayout)
			result.Duration = FormatDuration(closed.Sub(opened))
		}
	}

	if result.Duration == "" {
		if d, ok := DurationFromPhrases(text); ok {
			result.Duration = FormatDuration(d)
		}
	}

	return result
}

// DateTime reads a single date/time value written in any of the forms the
// extractor understands ("07/03/2026 9:15", "9:40 pm", "5 de marzo 10:00") and
// returns it as a point in time. A value without a date takes the date of base
// (today when base is zero) and rolls to the next day when it lands before base.
// A value without a time is rejected; times are never fabricated.
func (x *Extractor) DateTime(value string, base time.Time) (time.Time, bool) {
	if t, err := time.ParseInLocation(model.DateTimeLayout, value, x.loc); err == nil {
		return t, true
	}

	times := x.ExtractTimes(value)
	if len(times) == 0 {
		return time.Time{}, false
	}

	if day, ok := x.ExtractDate(value); ok {
		return at(day, times[0]), true
	}

	if base.IsZero() {
		y, m, d := x.now().In(x.loc).Date()
		base = time.Date(y, m, d, 0, 0, 0, 0, x.loc)
	}
	base = base.In(x.loc)
	t := at(base, times[0])
	if t.Before(base) {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

// Duration reads a duration value such as "25 min" or "1 hora 5 minutos" and
// renders it as "<N> horas <M> minutos".
func Duration(value string) (string, bool) {
	if durationRE.MatchString(value) {
		return value, true
	}
	d, ok := DurationFromPhrases(value)
	if !ok {
		return "", false
	}
	return FormatDuration(d), true
}

// ElapsedDuration computes the duration column from two record timestamps.
// It returns "" when either is missing or close is earlier than open.
func ElapsedDuration(openedAt, closedAt string, loc *time.Location) string {
	if openedAt == "" || closedAt == "" {
		return ""
	}
	o, err := time.ParseInLocation(model.DateTimeLayout, openedAt, loc)
	if err != nil {
		return ""
	}
	c, err := time.ParseInLocation(model.DateTimeLayout, closedAt, loc)
	if err != nil || c.Before(o) {
		return ""
	}
	return FormatDuration(c.Sub(o))
}

// DurationFromPhrases sums explicit "N horas" / "N minutos" phrases
func DurationFromPhrases(text string) (time.Duration, bool) {
	folded := Fold(text)

	total := 0
	found := false
	for _, m := range hoursPhraseRE.FindAllStringSubmatch(folded, -1) {
		total += atoi(m[1]) * 60
		found = true
	}
	for _, m := range minutesPhraseRE.FindAllStringSubmatch(folded, -1) {
		total += atoi(m[1])
		found = true
	}
	if halfHourRE.MatchString(folded) {
		total += 30
		found = true
	}

	if !found || total == 0 {
		return 0, false
	}
	return time.Duration(total) * time.Minute, true
}

// FormatDuration renders whole elapsed minutes as "<N> horas <M> minutos"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return ""
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%d horas %d minutos", total/60, total%60)
}

func at(day time.Time, ct ClockTime) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, ct.Hour, ct.Minute, 0, 0, day.Location())
}

func validDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
