package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const codePrefixFormat = "INC-%02d-%02d-"

var codeSuffixRE = regexp.MustCompile(`^(\d{3})$`)

// CodePrefix returns the per-day prefix of sequence codes, e.g. "INC-07-03-"
func CodePrefix(day int, month time.Month) string {
	return fmt.Sprintf(codePrefixFormat, day, int(month))
}

// NextCode computes the next unused sequence code for (day, month) given every
// previously issued code. Codes that do not follow the prefix + 3-digit shape are ignored.
func NextCode(day int, month time.Month, existing []string) string {
	prefix := CodePrefix(day, month)

	used := make(map[string]struct{}, len(existing))
	maxSeq := 0
	for _, code := range existing {
		code = strings.TrimSpace(code)
		used[code] = struct{}{}

		if !strings.HasPrefix(code, prefix) {
			continue
		}
		m := codeSuffixRE.FindStringSubmatch(code[len(prefix):])
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}

	seq := maxSeq + 1
	for {
		candidate := fmt.Sprintf("%s%03d", prefix, seq)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
		seq++
	}
}

// FallbackCode is used when the issued codes cannot be read. It is built from the
// wall clock so it never collides with the sequential form.
func FallbackCode(now time.Time) string {
	return CodePrefix(now.Day(), now.Month()) + "T" + now.Format("150405")
}
