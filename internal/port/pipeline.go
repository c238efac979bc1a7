package port

import "formscan/internal/domain"

// FormClassifier identifies the assessment instrument from raw OCR text.
type FormClassifier interface {
	Classify(text string) domain.ClassificationResult
}

// RecordNormalizer turns an extraction payload into the canonical record.
type RecordNormalizer interface {
	Normalize(raw any, documentType string) domain.AssessmentRecord
	// HasEnricher reports whether formType gets form-specific score routing.
	HasEnricher(formType string) bool
}
