// Package assessment holds the builtin post-normalization checks for
// assessment records.
package assessment

import (
	"context"

	"formscan/internal/domain"
)

// BuiltinValidator exposes one rule to the validator registry.
type BuiltinValidator struct {
	key      string
	name     string
	ruleType domain.ValidationRuleType
	sev      domain.ValidationSeverity
	fn       func(context.Context, *domain.AssessmentRecord) []ValidationResult
}

func (b *BuiltinValidator) Validate(ctx context.Context, rec *domain.AssessmentRecord) []ValidationResult {
	return b.fn(ctx, rec)
}
func (b *BuiltinValidator) RuleKey() string                     { return b.key }
func (b *BuiltinValidator) RuleName() string                    { return b.name }
func (b *BuiltinValidator) RuleType() domain.ValidationRuleType { return b.ruleType }
func (b *BuiltinValidator) Severity() domain.ValidationSeverity { return b.sev }

// AllBuiltinValidators returns every builtin rule in evaluation order:
// required, format, logical.
func AllBuiltinValidators() []*BuiltinValidator {
	groups := [][]*rule{RequiredFieldValidators(), FormatValidators(), LogicalValidators()}
	var all []*BuiltinValidator
	for _, g := range groups {
		for _, r := range g {
			all = append(all, &BuiltinValidator{
				key: r.RuleKey(), name: r.RuleName(),
				ruleType: r.RuleType(), sev: r.Severity(),
				fn: r.Validate,
			})
		}
	}
	return all
}
