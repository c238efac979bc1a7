package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"formscan/internal/domain"
	"formscan/internal/export"
	"formscan/internal/fieldbag"
	"formscan/internal/ocrtext"
	"formscan/internal/port"
	"formscan/internal/scores"
	"formscan/internal/validator"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// IngestInput is the DTO for normalizing one extraction payload.
type IngestInput struct {
	Payload      json.RawMessage
	SourceText   string
	DocumentType string
}

// UpdateRecordInput is the DTO for replacing a stored record after manual correction.
type UpdateRecordInput struct {
	ID     uuid.UUID
	Record json.RawMessage
}

// PreviewResult is an ingest result that was not persisted.
type PreviewResult struct {
	Record         domain.AssessmentRecord      `json:"record"`
	TypeSource     domain.TypeSource            `json:"type_source"`
	Classification *domain.ClassificationResult `json:"classification,omitempty"`
	Validation     *validator.Outcome           `json:"validation"`
}

// ServiceConfig holds the tunables the assessment service reads.
type ServiceConfig struct {
	KeepSourceText  bool
	ExportMaxRows   int
	ExportBatchSize int
}

// AssessmentService defines the assessment ingestion and management contract.
type AssessmentService interface {
	Ingest(ctx context.Context, input *IngestInput) (*domain.Assessment, error)
	Preview(ctx context.Context, input *IngestInput) (*PreviewResult, error)
	Classify(ctx context.Context, text string) domain.ClassificationResult
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)
	List(ctx context.Context, filter domain.AssessmentFilter) ([]domain.Assessment, int, error)
	UpdateRecord(ctx context.Context, input *UpdateRecordInput) (*domain.Assessment, error)
	Renormalize(ctx context.Context, a *domain.Assessment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context, filter domain.AssessmentFilter, format ExportFormat, w io.Writer) error
}

type assessmentService struct {
	repo       port.AssessmentRepository
	classifier port.FormClassifier
	normalizer port.RecordNormalizer
	validator  *validator.Engine
	cfg        ServiceConfig
}

// NewAssessmentService creates a new AssessmentService implementation.
func NewAssessmentService(
	repo port.AssessmentRepository,
	formClassifier port.FormClassifier,
	recordNormalizer port.RecordNormalizer,
	validationEngine *validator.Engine,
	cfg ServiceConfig,
) AssessmentService {
	if cfg.ExportBatchSize <= 0 {
		cfg.ExportBatchSize = 200
	}
	return &assessmentService{
		repo:       repo,
		classifier: formClassifier,
		normalizer: recordNormalizer,
		validator:  validationEngine,
		cfg:        cfg,
	}
}

// pipelineResult is everything derived from one payload before persistence.
type pipelineResult struct {
	record         domain.AssessmentRecord
	typeSource     domain.TypeSource
	classification *domain.ClassificationResult
	outcome        *validator.Outcome
}

// run decodes the payload, resolves the form type, normalizes and validates.
// Form type precedence: caller override, the payload's own formType, the
// classifier over the source text, then Unknown.
func (s *assessmentService) run(ctx context.Context, input *IngestInput) (*pipelineResult, error) {
	payload := decodePayload(input.Payload)
	text := strings.TrimSpace(input.SourceText)
	if payload == "" && text == "" {
		return nil, domain.ErrEmptyPayload
	}

	res := &pipelineResult{}
	if text != "" {
		c := s.classifier.Classify(text)
		res.classification = &c
	}

	formType := strings.TrimSpace(input.DocumentType)
	if !fitsFormType(formType) {
		return nil, fmt.Errorf("%w: document type exceeds %d characters", domain.ErrInvalidFormType, domain.MaxFormTypeLength)
	}
	switch {
	case formType != "":
		res.typeSource = domain.TypeSourceOverride
	case payloadFormType(payload) != "":
		formType = payloadFormType(payload)
		res.typeSource = domain.TypeSourcePayload
	case res.classification != nil && res.classification.IsDocument:
		formType = res.classification.DocumentType
		res.typeSource = domain.TypeSourceClassifier
	default:
		formType = domain.FormTypeUnknown
		res.typeSource = domain.TypeSourceUnknown
	}

	res.record = s.normalizer.Normalize(payload, formType)
	res.outcome = s.validator.Validate(ctx, &res.record)
	return res, nil
}

// decodePayload returns the payload as JSON text. Extraction services often
// return their JSON as a string, sometimes wrapped in code fences; such
// strings are unwrapped.
func decodePayload(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	res := gjson.ParseBytes(trimmed)
	if res.Type == gjson.String {
		return strings.TrimSpace(ocrtext.StripCodeFences(res.Str))
	}
	return string(trimmed)
}

// payloadFormType returns the payload's own formType hint. An over-long hint
// is ignored so resolution falls through to the classifier.
func payloadFormType(payload string) string {
	if payload == "" {
		return ""
	}
	ft := fieldbag.ParseString(ocrtext.StripCodeFences(payload)).String("formType")
	if !fitsFormType(ft) {
		return ""
	}
	return ft
}

func fitsFormType(formType string) bool {
	return utf8.RuneCountInString(formType) <= domain.MaxFormTypeLength
}

func (s *assessmentService) Ingest(ctx context.Context, input *IngestInput) (*domain.Assessment, error) {
	res, err := s.run(ctx, input)
	if err != nil {
		return nil, err
	}

	a := &domain.Assessment{
		ID:             uuid.New(),
		TypeSource:     res.typeSource,
		Record:         res.record,
		Classification: res.classification,
	}
	if s.cfg.KeepSourceText {
		a.SourceText = input.SourceText
	}
	if err := applyOutcome(a, res.outcome); err != nil {
		return nil, fmt.Errorf("assessmentService.Ingest: %w", err)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("assessmentService.Ingest: %w", err)
	}
	log.Printf("assessmentService.Ingest: stored %s form=%s source=%s enriched=%t status=%s scores=%d",
		a.ID, a.Record.FormType, a.TypeSource, s.normalizer.HasEnricher(a.Record.FormType),
		a.ValidationStatus, a.Record.Scores.Count())
	return a, nil
}

func (s *assessmentService) Preview(ctx context.Context, input *IngestInput) (*PreviewResult, error) {
	res, err := s.run(ctx, input)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		Record:         res.record,
		TypeSource:     res.typeSource,
		Classification: res.classification,
		Validation:     res.outcome,
	}, nil
}

func (s *assessmentService) Classify(_ context.Context, text string) domain.ClassificationResult {
	return s.classifier.Classify(text)
}

func (s *assessmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *assessmentService) List(ctx context.Context, filter domain.AssessmentFilter) ([]domain.Assessment, int, error) {
	if err := checkFilter(&filter); err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.repo.List(ctx, filter)
}

func checkFilter(filter *domain.AssessmentFilter) error {
	if filter.Offset < 0 {
		return fmt.Errorf("%w: negative offset", domain.ErrInvalidFilter)
	}
	if filter.ValidationStatus != "" && !domain.ValidValidationStatuses[filter.ValidationStatus] {
		return fmt.Errorf("%w: unknown validation status %q", domain.ErrInvalidFilter, filter.ValidationStatus)
	}
	filter.FormType = strings.TrimSpace(filter.FormType)
	return nil
}

// UpdateRecord replaces a stored record with a consumer-edited one. The edit
// is not re-normalized; the bucket invariant is restored and the record is
// validated again.
func (s *assessmentService) UpdateRecord(ctx context.Context, input *UpdateRecordInput) (*domain.Assessment, error) {
	var rec domain.AssessmentRecord
	if err := json.Unmarshal(input.Record, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}
	if strings.TrimSpace(rec.FormType) == "" {
		return nil, fmt.Errorf("%w: formType is required", domain.ErrInvalidRecord)
	}
	if !fitsFormType(rec.FormType) {
		return nil, fmt.Errorf("%w: formType exceeds %d characters", domain.ErrInvalidRecord, domain.MaxFormTypeLength)
	}

	a, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	rec.Scores = scores.Reconcile(rec.Scores)
	if rec.OtherFields == nil {
		rec.OtherFields = map[string]any{}
	}
	if rec.PatientInfo.Extra == nil {
		rec.PatientInfo.Extra = map[string]any{}
	}
	a.Record = rec

	if err := applyOutcome(a, s.validator.Validate(ctx, &a.Record)); err != nil {
		return nil, fmt.Errorf("assessmentService.UpdateRecord: %w", err)
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	log.Printf("assessmentService.UpdateRecord: updated %s status=%s", a.ID, a.ValidationStatus)
	return a, nil
}

// Renormalize runs a stored record through the pipeline again, keeping its
// form type, and persists the result when anything changed.
func (s *assessmentService) Renormalize(ctx context.Context, a *domain.Assessment) error {
	before, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("assessmentService.Renormalize: %w", err)
	}

	a.Record = s.normalizer.Normalize(a.Record, a.Record.FormType)
	outcome := s.validator.Validate(ctx, &a.Record)

	after, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("assessmentService.Renormalize: %w", err)
	}
	if bytes.Equal(before, after) && outcome.Status == a.ValidationStatus {
		return nil
	}

	if err := applyOutcome(a, outcome); err != nil {
		return fmt.Errorf("assessmentService.Renormalize: %w", err)
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	log.Printf("assessmentService.Renormalize: updated %s status=%s", a.ID, a.ValidationStatus)
	return nil
}

func (s *assessmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("assessmentService.Delete: deleted %s", id)
	return nil
}

// Export writes every assessment matching filter. The filter's offset and
// limit are ignored; rows are fetched in batches.
func (s *assessmentService) Export(ctx context.Context, filter domain.AssessmentFilter, format ExportFormat, w io.Writer) error {
	if format != ExportXLSX && format != ExportCSV {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	if err := checkFilter(&filter); err != nil {
		return err
	}

	filter.Offset = 0
	filter.Limit = s.cfg.ExportBatchSize
	var items []domain.Assessment
	for {
		batch, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("assessmentService.Export: %w", err)
		}
		if s.cfg.ExportMaxRows > 0 && total > s.cfg.ExportMaxRows {
			return fmt.Errorf("%w: %d rows, limit %d", domain.ErrExportTooLarge, total, s.cfg.ExportMaxRows)
		}
		items = append(items, batch...)
		if len(batch) < filter.Limit || len(items) >= total {
			break
		}
		filter.Offset += len(batch)
	}

	log.Printf("assessmentService.Export: writing %d assessments as %s", len(items), format)
	if format == ExportXLSX {
		return export.WriteXLSX(w, items)
	}
	cw := export.NewCSVWriter(w)
	if _, err := w.Write(export.BOM); err != nil {
		return err
	}
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteAssessments(items); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// applyOutcome copies a validation outcome onto the assessment.
func applyOutcome(a *domain.Assessment, outcome *validator.Outcome) error {
	results, err := outcome.ResultsJSON()
	if err != nil {
		return err
	}
	a.ValidationStatus = outcome.Status
	a.ValidationResults = results
	return nil
}
