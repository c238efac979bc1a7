package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FormTypeUnknown is the form type assigned when classification fails and no
// caller override or payload hint is available.
const FormTypeUnknown = "Unknown"

// MaxFormTypeLength bounds a form type in characters. Longer values are OCR
// noise rather than a document type.
const MaxFormTypeLength = 64

// AssessmentRecord is the canonical, persistence-ready shape of one scanned
// assessment form.
type AssessmentRecord struct {
	FormType         string           `json:"formType"`
	PatientInfo      PatientInfo      `json:"patientInfo"`
	TestDate         string           `json:"testDate"`
	BirthDate        string           `json:"birthDate"`
	ChronologicalAge ChronologicalAge `json:"chronologicalAge"`
	Scores           ScoreBuckets     `json:"scores"`
	OtherFields      map[string]any   `json:"otherFields"`
}

// NewAssessmentRecord returns a record with every default in place.
func NewAssessmentRecord(formType string) AssessmentRecord {
	return AssessmentRecord{
		FormType:    formType,
		PatientInfo: PatientInfo{Extra: map[string]any{}},
		Scores:      NewScoreBuckets(),
		OtherFields: map[string]any{},
	}
}

// PatientInfo holds the examinee's identity. Keys the pipeline does not know
// about are carried in Extra and flattened back out when marshaled.
type PatientInfo struct {
	Name      string         `json:"name"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Sex       string         `json:"sex"`
	Grade     string         `json:"grade"`
	Extra     map[string]any `json:"-"`
}

// patientInfoKeys are the JSON names of PatientInfo's known fields.
var patientInfoKeys = []string{"name", "firstName", "lastName", "sex", "grade"}

// IsPatientInfoKey reports whether key is the JSON name of a known
// PatientInfo field.
func IsPatientInfoKey(key string) bool {
	for _, k := range patientInfoKeys {
		if k == key {
			return true
		}
	}
	return false
}

// RawKey returns the passthrough key for a value that cannot live under key:
// key+"Raw", then key+"Raw2" and so on until taken reports false.
func RawKey(key string, taken func(string) bool) string {
	alt := key + "Raw"
	for i := 2; taken(alt); i++ {
		alt = fmt.Sprintf("%sRaw%d", key, i)
	}
	return alt
}

// MarshalJSON flattens Extra alongside the known fields. An Extra entry whose
// key collides with a known field is written under its RawKey.
func (p PatientInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+len(patientInfoKeys))
	out["name"] = p.Name
	out["firstName"] = p.FirstName
	out["lastName"] = p.LastName
	out["sex"] = p.Sex
	out["grade"] = p.Grade
	taken := func(k string) bool {
		_, inOut := out[k]
		_, inExtra := p.Extra[k]
		return inOut || inExtra
	}
	for k, v := range p.Extra {
		if IsPatientInfoKey(k) {
			out[RawKey(k, taken)] = v
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. A known key holding something
// other than a string is kept in Extra under its RawKey.
func (p *PatientInfo) UnmarshalJSON(data []byte) error {
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	if all == nil {
		all = map[string]any{}
	}
	taken := func(k string) bool {
		_, ok := all[k]
		return ok
	}
	take := func(key string) string {
		v, ok := all[key]
		if !ok {
			return ""
		}
		delete(all, key)
		if s, isStr := v.(string); isStr {
			return s
		}
		if v != nil {
			all[RawKey(key, taken)] = v
		}
		return ""
	}
	p.Name = take("name")
	p.FirstName = take("firstName")
	p.LastName = take("lastName")
	p.Sex = take("sex")
	p.Grade = take("grade")
	p.Extra = all
	return nil
}

// ChronologicalAge is the examinee's age at administration.
type ChronologicalAge struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// TotalMonths returns the age expressed in months.
func (a ChronologicalAge) TotalMonths() int {
	return a.Years*12 + a.Months
}

// ScoreBuckets is the fixed five-bucket score taxonomy.
type ScoreBuckets struct {
	RawScores           map[string]any `json:"rawScores"`
	StandardScores      map[string]any `json:"standardScores"`
	Percentiles         map[string]any `json:"percentiles"`
	ConfidenceIntervals map[string]any `json:"confidenceIntervals"`
	CompositeScores     map[string]any `json:"compositeScores"`
}

// NewScoreBuckets returns five empty, non-nil buckets.
func NewScoreBuckets() ScoreBuckets {
	return ScoreBuckets{
		RawScores:           map[string]any{},
		StandardScores:      map[string]any{},
		Percentiles:         map[string]any{},
		ConfidenceIntervals: map[string]any{},
		CompositeScores:     map[string]any{},
	}
}

// Count returns the number of scores across all buckets.
func (b ScoreBuckets) Count() int {
	return len(b.RawScores) + len(b.StandardScores) + len(b.Percentiles) +
		len(b.ConfidenceIntervals) + len(b.CompositeScores)
}

// PatternMatch reports whether one signature phrase was found.
type PatternMatch struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// ClassificationResult is the outcome of signature-phrase classification.
type ClassificationResult struct {
	IsDocument      bool           `json:"isDocument"`
	DocumentType    string         `json:"documentType"`
	Confidence      float64        `json:"confidence"`
	MatchedPatterns []PatternMatch `json:"matchedPatterns"`
}

// Assessment is a persisted assessment record with its provenance.
type Assessment struct {
	ID                 uuid.UUID             `db:"id" json:"id"`
	FormType           string                `db:"form_type" json:"form_type"`
	PatientFirstName   string                `db:"patient_first_name" json:"patient_first_name"`
	PatientLastName    string                `db:"patient_last_name" json:"patient_last_name"`
	TestDate           string                `db:"test_date" json:"test_date"`
	TypeSource         TypeSource            `db:"type_source" json:"type_source"`
	Record             AssessmentRecord      `db:"-" json:"record"`
	RecordJSON         json.RawMessage       `db:"record" json:"-"`
	Classification     *ClassificationResult `db:"-" json:"classification,omitempty"`
	ClassificationJSON json.RawMessage       `db:"classification" json:"-"`
	ValidationStatus   ValidationStatus      `db:"validation_status" json:"validation_status"`
	ValidationResults  json.RawMessage       `db:"validation_results" json:"validation_results"`
	SourceText         string                `db:"source_text" json:"source_text,omitempty"`
	CreatedAt          time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time             `db:"updated_at" json:"updated_at"`
}

// AssessmentFilter narrows list and export queries.
type AssessmentFilter struct {
	FormType         string
	ValidationStatus ValidationStatus
	Offset           int
	Limit            int
}
