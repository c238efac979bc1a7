package assessment

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"formscan/internal/classifier"
	"formscan/internal/domain"
	"formscan/internal/ocrtext"
)

var intervalPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*-\s*(\d+(?:\.\d+)?)$`)

// rangeCheck builds a per-entry check that every score in one bucket is a
// number within [lo, hi].
func rangeCheck(key, name, bucket string, lo, hi float64, sev domain.ValidationSeverity, pick func(*domain.ScoreBuckets) map[string]any) *rule {
	expected := fmt.Sprintf("number in [%g, %g]", lo, hi)
	return &rule{
		ruleKey: key, ruleName: name,
		ruleType: domain.ValidationRuleFormat, severity: sev,
		validate: func(rec *domain.AssessmentRecord) []ValidationResult {
			m := pick(&rec.Scores)
			var results []ValidationResult
			for _, k := range sortedKeys(m) {
				fp := fmt.Sprintf("scores.%s.%s", bucket, k)
				f, ok := numeric(m[k])
				passed := ok && f >= lo && f <= hi
				msg := fmt.Sprintf("%s: %s is within range", name, fp)
				switch {
				case !ok:
					msg = fmt.Sprintf("%s: %s is not a number", name, fp)
				case !passed:
					msg = fmt.Sprintf("%s: %s is out of range (%g)", name, fp, f)
				}
				results = append(results, ValidationResult{
					Passed: passed, FieldPath: fp,
					ExpectedValue: expected, ActualValue: display(m[k]), Message: msg,
				})
			}
			return results
		},
	}
}

// FormatValidators returns the value-shape checks.
func FormatValidators() []*rule {
	return []*rule{
		{
			// Unidentified form types are reported by req.form_type.
			ruleKey: "fmt.form_type", ruleName: "Format: Recognised Form Type",
			ruleType: domain.ValidationRuleFormat, severity: domain.ValidationSeverityWarning,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				ft := strings.TrimSpace(rec.FormType)
				if ft == "" || strings.EqualFold(ft, domain.FormTypeUnknown) {
					return nil
				}
				known := classifier.KnownFormTypes()
				passed := false
				for _, k := range known {
					if strings.EqualFold(k, ft) {
						passed = true
						break
					}
				}
				msg := fmt.Sprintf("Format: Recognised Form Type: %s is a supported instrument", ft)
				if !passed {
					msg = fmt.Sprintf("Format: Recognised Form Type: %s is not one of %s", ft, strings.Join(known, ", "))
				}
				return []ValidationResult{{
					Passed: passed, FieldPath: "formType",
					ExpectedValue: "supported form type", ActualValue: ft, Message: msg,
				}}
			},
		},
		rangeCheck("fmt.percentiles", "Format: Percentile Range", "percentiles", 0, 100,
			domain.ValidationSeverityError,
			func(b *domain.ScoreBuckets) map[string]any { return b.Percentiles }),
		rangeCheck("fmt.standard_scores", "Format: Standard Score Range", "standardScores", 1, 200,
			domain.ValidationSeverityError,
			func(b *domain.ScoreBuckets) map[string]any { return b.StandardScores }),
		rangeCheck("fmt.raw_scores", "Format: Raw Score Non-Negative", "rawScores", 0, 1000,
			domain.ValidationSeverityWarning,
			func(b *domain.ScoreBuckets) map[string]any { return b.RawScores }),
		{
			ruleKey: "fmt.confidence_intervals", ruleName: "Format: Confidence Interval",
			ruleType: domain.ValidationRuleFormat, severity: domain.ValidationSeverityWarning,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				var results []ValidationResult
				for _, k := range sortedKeys(rec.Scores.ConfidenceIntervals) {
					v := rec.Scores.ConfidenceIntervals[k]
					fp := "scores.confidenceIntervals." + k
					passed := isInterval(v)
					msg := fmt.Sprintf("Format: Confidence Interval: %s is a valid range", fp)
					if !passed {
						msg = fmt.Sprintf("Format: Confidence Interval: %s is not a low-high range", fp)
					}
					results = append(results, ValidationResult{
						Passed: passed, FieldPath: fp,
						ExpectedValue: "low-high", ActualValue: display(v), Message: msg,
					})
				}
				return results
			},
		},
		{
			ruleKey: "fmt.chronological_age", ruleName: "Format: Chronological Age",
			ruleType: domain.ValidationRuleFormat, severity: domain.ValidationSeverityWarning,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				age := rec.ChronologicalAge
				passed := age.Years >= 0 && age.Months >= 0 && age.Months <= 11
				msg := "Format: Chronological Age: months are within 0-11"
				if !passed {
					msg = fmt.Sprintf("Format: Chronological Age: months out of range (%d)", age.Months)
				}
				return []ValidationResult{{
					Passed: passed, FieldPath: "chronologicalAge",
					ExpectedValue: "years >= 0, months 0-11",
					ActualValue:   fmt.Sprintf("%d;%d", age.Years, age.Months),
					Message:       msg,
				}}
			},
		},
	}
}

// isInterval accepts "70-82" style text and two-element numeric lists.
func isInterval(v any) bool {
	switch t := v.(type) {
	case string:
		m := intervalPattern.FindStringSubmatch(ocrtext.Flatten(t))
		if m == nil {
			return false
		}
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		return lo <= hi
	case []any:
		if len(t) != 2 {
			return false
		}
		lo, okLo := numeric(t[0])
		hi, okHi := numeric(t[1])
		return okLo && okHi && lo <= hi
	default:
		return false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
