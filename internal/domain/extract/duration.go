package extract

import (
	"regexp"
	"strconv"
)

// durationPattern is the whole duration grammar: an integer, optional
// whitespace, then "min", "minute" or "hour" in any case. There is no word
// boundary, so "30 minutes" and "2hours" both match. Hours are not converted.
var durationPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:min|hour|minute)`)

// MatchMaxDuration returns the integer of the first duration phrase in raw
// text. Only the first match is consulted. ok is false when nothing matches,
// the value is zero, or it does not fit an int.
func MatchMaxDuration(text string) (minutes int, ok bool) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
