package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"formscan/internal/domain"
)

// ValidationResultEntry represents a single validation result stored in the JSONB array.
type ValidationResultEntry struct {
	RuleKey       string                    `json:"rule_key"`
	RuleName      string                    `json:"rule_name"`
	RuleType      domain.ValidationRuleType `json:"rule_type"`
	Severity      domain.ValidationSeverity `json:"severity"`
	Passed        bool                      `json:"passed"`
	FieldPath     string                    `json:"field_path"`
	ExpectedValue string                    `json:"expected_value"`
	ActualValue   string                    `json:"actual_value"`
	Message       string                    `json:"message"`
	ValidatedAt   time.Time                 `json:"validated_at"`
}

// ValidationSummary holds aggregate counts of validation results.
type ValidationSummary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Outcome is the result of validating one record.
type Outcome struct {
	Status        domain.ValidationStatus `json:"validation_status"`
	Summary       ValidationSummary       `json:"summary"`
	Results       []ValidationResultEntry `json:"results"`
	FieldStatuses map[string]*FieldStatus `json:"field_statuses"`
}

// ResultsJSON marshals the result entries for the validation_results column.
func (o *Outcome) ResultsJSON() (json.RawMessage, error) {
	data, err := json.Marshal(o.Results)
	if err != nil {
		return nil, fmt.Errorf("marshaling validation results: %w", err)
	}
	return data, nil
}

// Engine runs every registered rule against a record.
type Engine struct {
	registry *Registry
	now      func() time.Time
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Validate runs all rules and derives the aggregate status: invalid when any
// error-severity check failed, warning when only warnings failed, else valid.
func (e *Engine) Validate(ctx context.Context, rec *domain.AssessmentRecord) *Outcome {
	now := e.now()
	out := &Outcome{Results: []ValidationResultEntry{}}
	hasError := false
	hasWarning := false

	for _, v := range e.registry.All() {
		if ctx.Err() != nil {
			break
		}
		for _, vr := range v.Validate(ctx, rec) {
			out.Results = append(out.Results, ValidationResultEntry{
				RuleKey:       v.RuleKey(),
				RuleName:      v.RuleName(),
				RuleType:      v.RuleType(),
				Severity:      v.Severity(),
				Passed:        vr.Passed,
				FieldPath:     vr.FieldPath,
				ExpectedValue: vr.ExpectedValue,
				ActualValue:   vr.ActualValue,
				Message:       vr.Message,
				ValidatedAt:   now,
			})
			out.Summary.Total++
			switch {
			case vr.Passed:
				out.Summary.Passed++
			case v.Severity() == domain.ValidationSeverityError:
				out.Summary.Errors++
				hasError = true
			default:
				out.Summary.Warnings++
				hasWarning = true
			}
		}
	}

	switch {
	case hasError:
		out.Status = domain.ValidationStatusInvalid
	case hasWarning:
		out.Status = domain.ValidationStatusWarning
	default:
		out.Status = domain.ValidationStatusValid
	}
	out.FieldStatuses = ComputeFieldStatuses(out.Results)
	return out
}
