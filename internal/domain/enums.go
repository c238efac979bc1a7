package domain

// TypeSource records how an assessment's form type was decided.
type TypeSource string

const (
	TypeSourceOverride   TypeSource = "override"
	TypeSourcePayload    TypeSource = "payload"
	TypeSourceClassifier TypeSource = "classifier"
	TypeSourceUnknown    TypeSource = "unknown"
)

// ValidationStatus represents the aggregate validation state of an assessment.
type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "pending"
	ValidationStatusValid   ValidationStatus = "valid"
	ValidationStatusWarning ValidationStatus = "warning"
	ValidationStatusInvalid ValidationStatus = "invalid"
)

// ValidValidationStatuses is the set of statuses accepted as list filters.
var ValidValidationStatuses = map[ValidationStatus]bool{
	ValidationStatusPending: true,
	ValidationStatusValid:   true,
	ValidationStatusWarning: true,
	ValidationStatusInvalid: true,
}

// ValidationRuleType categorises builtin validation rules.
type ValidationRuleType string

const (
	ValidationRuleRequired ValidationRuleType = "required_field"
	ValidationRuleFormat   ValidationRuleType = "format"
	ValidationRuleLogical  ValidationRuleType = "logical"
)

// ValidationSeverity determines whether a failed rule invalidates a record.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// FieldValidationStatus is the per-field outcome shown next to each value.
type FieldValidationStatus string

const (
	FieldStatusValid   FieldValidationStatus = "valid"
	FieldStatusInvalid FieldValidationStatus = "invalid"
	FieldStatusUnsure  FieldValidationStatus = "unsure"
)
