package validator

import (
	"context"

	"formscan/internal/domain"
	"formscan/internal/validator/assessment"
)

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(ctx context.Context, rec *domain.AssessmentRecord) []assessment.ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}
