package domain

import "errors"

var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrEmptyPayload       = errors.New("payload and source text are both empty")
	ErrInvalidRecord      = errors.New("record does not match the canonical assessment shape")
	ErrInvalidFormType    = errors.New("invalid form type")
	ErrInvalidFilter      = errors.New("invalid list filter")
	ErrExportTooLarge     = errors.New("export exceeds maximum row count")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
)
