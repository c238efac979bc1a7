package assessment

import (
	"fmt"
	"strings"

	"formscan/internal/domain"
)

// requiredField builds a check that a text field of the record is filled in.
func requiredField(key, name, fieldPath string, sev domain.ValidationSeverity, extract func(*domain.AssessmentRecord) string) *rule {
	return &rule{
		ruleKey: key, ruleName: name,
		ruleType: domain.ValidationRuleRequired, severity: sev,
		validate: func(rec *domain.AssessmentRecord) []ValidationResult {
			val := strings.TrimSpace(extract(rec))
			return []ValidationResult{{
				Passed:        val != "",
				FieldPath:     fieldPath,
				ExpectedValue: "non-empty value",
				ActualValue:   val,
				Message:       fieldMessage(val != "", name, fieldPath),
			}}
		},
	}
}

func fieldMessage(passed bool, ruleName, fieldPath string) string {
	if passed {
		return fmt.Sprintf("%s: %s is present", ruleName, fieldPath)
	}
	return fmt.Sprintf("%s: %s is missing or empty", ruleName, fieldPath)
}

// RequiredFieldValidators returns the presence checks.
func RequiredFieldValidators() []*rule {
	return []*rule{
		{
			ruleKey: "req.form_type", ruleName: "Required: Known Form Type",
			ruleType: domain.ValidationRuleRequired, severity: domain.ValidationSeverityError,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				ft := strings.TrimSpace(rec.FormType)
				passed := ft != "" && !strings.EqualFold(ft, domain.FormTypeUnknown)
				msg := "Required: Known Form Type: formType is identified"
				if !passed {
					msg = "Required: Known Form Type: formType could not be identified"
				}
				return []ValidationResult{{
					Passed: passed, FieldPath: "formType",
					ExpectedValue: "known form type", ActualValue: ft, Message: msg,
				}}
			},
		},
		requiredField("req.patient.name", "Required: Patient Name", "patientInfo.name",
			domain.ValidationSeverityError,
			func(r *domain.AssessmentRecord) string { return r.PatientInfo.Name }),
		requiredField("req.test_date", "Required: Test Date", "testDate",
			domain.ValidationSeverityError,
			func(r *domain.AssessmentRecord) string { return r.TestDate }),
		requiredField("req.birth_date", "Required: Birth Date", "birthDate",
			domain.ValidationSeverityWarning,
			func(r *domain.AssessmentRecord) string { return r.BirthDate }),
		{
			ruleKey: "req.scores", ruleName: "Required: Any Score",
			ruleType: domain.ValidationRuleRequired, severity: domain.ValidationSeverityWarning,
			validate: func(rec *domain.AssessmentRecord) []ValidationResult {
				n := rec.Scores.Count()
				return []ValidationResult{{
					Passed: n > 0, FieldPath: "scores",
					ExpectedValue: "at least one score", ActualValue: fmt.Sprintf("%d", n),
					Message: fieldMessage(n > 0, "Required: Any Score", "scores"),
				}}
			},
		},
	}
}
