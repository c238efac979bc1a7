// Package export renders stored assessments as CSV or an XLSX workbook.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"formscan/internal/domain"
	"formscan/internal/fieldbag"
	"formscan/internal/scores"
)

// columns defines the assessment summary header row.
var columns = []string{
	"Assessment ID",
	"Form Type",
	"Type Source",
	"Patient Name",
	"First Name",
	"Last Name",
	"Sex",
	"Grade",
	"Test Date",
	"Birth Date",
	"Age (Y;M)",
	"Validation Status",
	"AC Standard Score",
	"EC Standard Score",
	"Total Standard Score",
	"AC Percentile",
	"EC Percentile",
	"Total Percentile",
	"Score Count",
	"Created At",
}

// summaryScore is one headline score column resolved by alias lookup.
type summaryScore struct {
	bucket     scores.BucketName
	region     *regexp.Regexp
	candidates []string
}

// Scale regions. A key is only considered for a column when it names that
// column's region; the alias fallback then runs inside the region.
var (
	regionAC    = regexp.MustCompile(`^(?:AC|Ac|ac)(?:[^a-z]|$)|(?i:auditory)`)
	regionEC    = regexp.MustCompile(`^(?:EC|Ec|ec)(?:[^a-z]|$)|(?i:expressive)`)
	regionTotal = regexp.MustCompile(`(?i)total|composite`)
)

// summaryScores line up with columns 12..17.
var summaryScores = []summaryScore{
	{bucket: scores.BucketStandard, region: regionAC, candidates: []string{"Auditory Comprehension", "AC"}},
	{bucket: scores.BucketStandard, region: regionEC, candidates: []string{"Expressive Communication", "EC"}},
	{bucket: scores.BucketStandard, region: regionTotal, candidates: []string{"Total Language", "Total"}},
	{bucket: scores.BucketPercentile, region: regionAC, candidates: []string{"Auditory Comprehension", "AC"}},
	{bucket: scores.BucketPercentile, region: regionEC, candidates: []string{"Expressive Communication", "EC"}},
	{bucket: scores.BucketPercentile, region: regionTotal, candidates: []string{"Total Language", "Total"}},
}

const firstSummaryColumn = 12

// assessmentToRow converts one assessment to a row aligned with columns.
func assessmentToRow(a *domain.Assessment) []string {
	rec := &a.Record
	row := make([]string, len(columns))
	row[0] = a.ID.String()
	row[1] = rec.FormType
	row[2] = string(a.TypeSource)
	row[3] = rec.PatientInfo.Name
	row[4] = rec.PatientInfo.FirstName
	row[5] = rec.PatientInfo.LastName
	row[6] = rec.PatientInfo.Sex
	row[7] = rec.PatientInfo.Grade
	row[8] = rec.TestDate
	row[9] = rec.BirthDate
	row[10] = formatAge(rec.ChronologicalAge)
	row[11] = string(a.ValidationStatus)
	for i, s := range summaryScores {
		if v, ok := scores.LookupWhere(rec.Scores, s.bucket, s.region.MatchString, s.candidates...); ok {
			row[firstSummaryColumn+i] = formatValue(v)
		}
	}
	row[18] = strconv.Itoa(rec.Scores.Count())
	row[19] = a.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

func formatAge(age domain.ChronologicalAge) string {
	if age.TotalMonths() == 0 {
		return ""
	}
	return fmt.Sprintf("%d;%d", age.Years, age.Months)
}

// formatValue renders a score cell. Ranges stored as lists become "lo-hi".
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(t))
		for i := range t {
			parts[i] = formatValue(t[i])
		}
		return strings.Join(parts, "-")
	}
	if fieldbag.IsScalar(v) {
		return fieldbag.ScalarString(v)
	}
	return fmt.Sprintf("%v", fieldbag.ToPlain(v))
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string, now time.Time) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "assessments"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), ext)
}
