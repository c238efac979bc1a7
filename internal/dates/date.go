// Package dates parses the date and age formats found on scanned assessment
// forms.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericPattern is one explicit MM/DD/YYYY-style pattern. Capture group
// indexes locate year, month and day.
type numericPattern struct {
	re               *regexp.Regexp
	year, month, day int
}

// numericPatterns are tried in order before the layout fallback.
var numericPatterns = []numericPattern{
	{re: regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), month: 1, day: 2, year: 3},
	{re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), year: 1, month: 2, day: 3},
	{re: regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), month: 1, day: 2, year: 3},
}

// fallbackLayouts is the general date parse used when no explicit pattern
// matches.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04PM",
	"1-2-2006 15:04",
	"2006/01/02",
	"2006.01.02",
	"01.02.2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"Monday, January 2, 2006",
	"Monday, January 2 2006",
	"Mon, January 2, 2006",
	"Mon, Jan 2, 2006",
	"Mon Jan 2, 2006",
	"Mon Jan 2 2006",
	"Mon, 2 Jan 2006",
	"Mon Jan 2 15:04:05 2006",
	time.RFC1123,
	time.RFC1123Z,
	"January 2, 2006 3:04 PM",
	"1/2/06",
}

// Parse parses text into a calendar date. Unless keepTime is set the result
// is truncated to midnight UTC.
func Parse(text string, keepTime bool) (time.Time, bool) {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, p := range numericPatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[p.year])
		mo, _ := strconv.Atoi(m[p.month])
		d, _ := strconv.Atoi(m[p.day])
		if t, ok := calendarDate(y, mo, d); ok {
			return t, true
		}
		return time.Time{}, false
	}
	for _, layout := range fallbackLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if !keepTime {
			return midnight(t), true
		}
		return t, true
	}
	return time.Time{}, false
}

// calendarDate rejects dates that time.Date would silently normalise, such as
// February 30th.
func calendarDate(y, mo, d int) (time.Time, bool) {
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Format renders a parsed date canonically: YYYY-MM-DD, or RFC 3339 when a
// time of day is kept and present.
func Format(t time.Time, keepTime bool) string {
	if t.IsZero() {
		return ""
	}
	if keepTime && (t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0) {
		return t.Format(time.RFC3339)
	}
	return t.Format("2006-01-02")
}

// Normalize parses and re-formats text. Unparsable input yields "".
func Normalize(text string, keepTime bool) string {
	t, ok := Parse(text, keepTime)
	if !ok {
		return ""
	}
	return Format(t, keepTime)
}
