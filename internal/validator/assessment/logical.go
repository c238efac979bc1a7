package assessment

import (
	"fmt"

	"formscan/internal/dates"
	"formscan/internal/domain"
)

// ageTolerance is how far, in months, a reported age may drift from the age
// computed from the two dates.
const ageTolerance = 1

// LogicalValidators returns the cross-field checks. They stay silent when the
// fields they compare are missing; the required checks report those.
func LogicalValidators() []*rule {
	return []*rule{
		{
			ruleKey: "logic.birth_before_test", ruleName: "Logical: Birth Date Before Test Date",
			ruleType: domain.ValidationRuleLogical, severity: domain.ValidationSeverityError,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				birth, okB := dates.Parse(rec.BirthDate, false)
				test, okT := dates.Parse(rec.TestDate, false)
				if !okB || !okT {
					return nil
				}
				passed := birth.Before(test)
				msg := "Logical: Birth Date Before Test Date: birthDate precedes testDate"
				if !passed {
					msg = fmt.Sprintf("Logical: Birth Date Before Test Date: birthDate %s is not before testDate %s",
						rec.BirthDate, rec.TestDate)
				}
				return []ValidationResult{{
					Passed: passed, FieldPath: "birthDate",
					ExpectedValue: "before " + rec.TestDate, ActualValue: rec.BirthDate, Message: msg,
				}}
			},
		},
		{
			ruleKey: "logic.age_matches_dates", ruleName: "Logical: Age Matches Dates",
			ruleType: domain.ValidationRuleLogical, severity: domain.ValidationSeverityWarning,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				reported := rec.ChronologicalAge
				if reported.TotalMonths() == 0 {
					return nil
				}
				birth, okB := dates.Parse(rec.BirthDate, false)
				test, okT := dates.Parse(rec.TestDate, false)
				if !okB || !okT {
					return nil
				}
				computed, ok := dates.AgeBetween(birth, test)
				if !ok {
					return nil
				}
				diff := computed.TotalMonths() - reported.TotalMonths()
				if diff < 0 {
					diff = -diff
				}
				passed := diff <= ageTolerance
				msg := "Logical: Age Matches Dates: chronologicalAge agrees with birthDate and testDate"
				if !passed {
					msg = fmt.Sprintf("Logical: Age Matches Dates: reported %d;%d but dates give %d;%d",
						reported.Years, reported.Months, computed.Years, computed.Months)
				}
				return []ValidationResult{{
					Passed: passed, FieldPath: "chronologicalAge",
					ExpectedValue: fmt.Sprintf("%d;%d", computed.Years, computed.Months),
					ActualValue:   fmt.Sprintf("%d;%d", reported.Years, reported.Months),
					Message:       msg,
				}}
			},
		},
	}
}
