package recipe

import (
	"regexp"
	"strconv"
	"strings"
)

// isoDuration matches ISO-8601 durations such as "PT1H30M" or "P1DT2H".
var isoDuration = regexp.MustCompile(`(?i)^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// Free text like "45 minutes" or "1 hour 10 mins".
var (
	plainHours   = regexp.MustCompile(`(?i)(\d+)\s*(?:h|hr|hrs|hour|hours)\b`)
	plainMinutes = regexp.MustCompile(`(?i)(\d+)\s*(?:m|min|mins|minute|minutes)\b`)
)

// parseMinutes converts a duration to whole minutes. It accepts ISO-8601
// durations, plain numbers (already minutes) and short English text.
// The second result is false when nothing could be parsed.
func parseMinutes(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}

	if m := isoDuration.FindStringSubmatch(s); m != nil && m[1]+m[2]+m[3]+m[4] != "" {
		total := num(m[1])*24*60 + num(m[2])*60 + num(m[3]) + num(m[4])/60
		return int(total + 0.5), true
	}

	var total int
	var found bool
	if m := plainHours.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1]) //nolint:errcheck
		total += h * 60
		found = true
	}
	if m := plainMinutes.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1]) //nolint:errcheck
		total += mins
		found = true
	}
	return total, found
}

func num(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
