package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"formscan/internal/domain"
)

// ValidationResult is the outcome of one check against one field path.
type ValidationResult struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}

// rule is the shape every builtin check shares.
type rule struct {
	ruleKey  string
	ruleName string
	ruleType domain.ValidationRuleType
	severity domain.ValidationSeverity
	validate func(*domain.AssessmentRecord) []ValidationResult
}

func (r *rule) RuleKey() string                     { return r.ruleKey }
func (r *rule) RuleName() string                    { return r.ruleName }
func (r *rule) RuleType() domain.ValidationRuleType { return r.ruleType }
func (r *rule) Severity() domain.ValidationSeverity { return r.severity }

func (r *rule) Validate(_ context.Context, rec *domain.AssessmentRecord) []ValidationResult {
	if rec == nil {
		return nil
	}
	return r.validate(rec)
}

// numeric reads a score that may arrive as a number or as OCR text such as
// "<1" or " 75 ".
func numeric(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		s = strings.TrimLeft(s, "<>=≤≥ ")
		if s == "" {
			return 0, false
		}
		v = s
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func display(v any) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return s
}
