package smil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/readalong-cli/readalong/util"
	"github.com/samber/mo"
)

var timecount = regexp.MustCompile(`(?i)^(?P<value>\d+(?:\.\d+)?|\.\d+)\s*(?P<unit>ms|min|h|s)$`)

var unitSeconds = map[string]float64{
	"h":   3600,
	"min": 60,
	"s":   1,
	"ms":  0.001,
}

// ParseClock parses a SMIL clock value into seconds.
//
// Accepted forms are full and partial clock values (hh:mm:ss[.frac],
// mm:ss[.frac]), timecounts with an h, min, s or ms suffix, and bare numbers
// which count seconds. Anything else, including the empty string, is None.
func ParseClock(value string) mo.Option[float64] {
	value = strings.TrimSpace(value)
	if value == "" {
		return mo.None[float64]()
	}

	if strings.Contains(value, ":") {
		return parseClockGroups(value)
	}

	if groups := util.ReGroups(timecount, value); len(groups) > 0 {
		n, err := strconv.ParseFloat(groups["value"], 64)
		if err != nil {
			return mo.None[float64]()
		}
		return mo.Some(n * unitSeconds[strings.ToLower(groups["unit"])])
	}

	return parseSeconds(value)
}

func parseClockGroups(value string) mo.Option[float64] {
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return mo.None[float64]()
	}

	seconds, ok := parseSeconds(parts[len(parts)-1]).Get()
	if !ok {
		return mo.None[float64]()
	}

	multiplier := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.ParseUint(parts[i], 10, 32)
		if err != nil {
			return mo.None[float64]()
		}
		seconds += float64(n) * multiplier
		multiplier *= 60
	}

	return mo.Some(seconds)
}

func parseSeconds(value string) mo.Option[float64] {
	if value == "" || strings.ContainsAny(value, "+-eExXpP") {
		return mo.None[float64]()
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return mo.None[float64]()
	}
	return mo.Some(n)
}

// FormatClock renders seconds as m:ss, or h:mm:ss past the hour.
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
