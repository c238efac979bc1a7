package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"formscan/internal/domain"
	"formscan/internal/fieldbag"
)

var (
	// "4-0", "4 0", "4;3", "4:11"
	agePairRe   = regexp.MustCompile(`(\d+)\s*[-;:\s]\s*(\d+)`)
	ageYearsRe  = regexp.MustCompile(`(?i)(\d+)\s*(?:years?|yrs?)\b`)
	ageMonthsRe = regexp.MustCompile(`(?i)(\d+)\s*(?:months?|mos?)\b`)
	digitsRe    = regexp.MustCompile(`\d+`)
)

// maxAgeYears bounds a plausible examinee age. Anything beyond it is treated
// as an OCR misread.
const maxAgeYears = 150

// ParseAge reads a chronological age from a {years, months} mapping, a
// numeric-pair string ("4-0"), verbose text ("4 years 3 months") or a bare
// number of years. Unparsable or implausible input yields a zero age.
func ParseAge(v any) domain.ChronologicalAge {
	return plausible(parseAge(v))
}

func parseAge(v any) domain.ChronologicalAge {
	switch t := v.(type) {
	case nil:
		return domain.ChronologicalAge{}
	case domain.ChronologicalAge:
		return t
	case string:
		return parseAgeText(t)
	}
	if b, ok := fieldbag.BagOf(v); ok {
		years, _ := b.Lookup("years", "year", "yrs")
		months, _ := b.Lookup("months", "month", "mos")
		return domain.ChronologicalAge{Years: toInt(years), Months: toInt(months)}
	}
	if fieldbag.IsScalar(v) {
		return domain.ChronologicalAge{Years: toInt(v)}
	}
	return domain.ChronologicalAge{}
}

func plausible(a domain.ChronologicalAge) domain.ChronologicalAge {
	if a.Years < 0 || a.Months < 0 || a.Years > maxAgeYears || a.Months > maxAgeYears*12 {
		return domain.ChronologicalAge{}
	}
	return a
}

func parseAgeText(s string) domain.ChronologicalAge {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.ChronologicalAge{}
	}
	if m := agePairRe.FindStringSubmatch(s); m != nil {
		y, errY := strconv.Atoi(m[1])
		mo, errM := strconv.Atoi(m[2])
		if errY != nil || errM != nil {
			return domain.ChronologicalAge{}
		}
		return domain.ChronologicalAge{Years: y, Months: mo}
	}
	var (
		age domain.ChronologicalAge
		err error
	)
	if m := ageYearsRe.FindStringSubmatch(s); m != nil {
		if age.Years, err = strconv.Atoi(m[1]); err != nil {
			return domain.ChronologicalAge{}
		}
	}
	if m := ageMonthsRe.FindStringSubmatch(s); m != nil {
		if age.Months, err = strconv.Atoi(m[1]); err != nil {
			return domain.ChronologicalAge{}
		}
	}
	return age
}

// toInt coerces a loosely-typed age component. Strings such as "08" or
// "5 yrs" fall back to their first run of digits.
func toInt(v any) int {
	if v == nil {
		return 0
	}
	if s, ok := v.(string); ok {
		d := digitsRe.FindString(s)
		if d == "" {
			return 0
		}
		n, err := strconv.Atoi(d)
		if err != nil {
			return 0
		}
		return n
	}
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// AgeBetween computes chronological age in whole years and remainder months
// from birth to test. Days are not rounded: a month only counts once the day
// of month has been reached.
func AgeBetween(birth, test time.Time) (domain.ChronologicalAge, bool) {
	if birth.IsZero() || test.IsZero() || test.Before(birth) {
		return domain.ChronologicalAge{}, false
	}
	months := (test.Year()-birth.Year())*12 + int(test.Month()) - int(birth.Month())
	if test.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		return domain.ChronologicalAge{}, false
	}
	return domain.ChronologicalAge{Years: months / 12, Months: months % 12}, true
}
