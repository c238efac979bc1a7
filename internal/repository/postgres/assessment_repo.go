package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"formscan/internal/domain"
	"formscan/internal/port"
)

type assessmentRepo struct {
	db *sqlx.DB
}

// NewAssessmentRepo creates a new PostgreSQL-backed AssessmentRepository.
func NewAssessmentRepo(db *sqlx.DB) port.AssessmentRepository {
	return &assessmentRepo{db: db}
}

func (r *assessmentRepo) Create(ctx context.Context, a *domain.Assessment) error {
	if err := encodeAssessment(a); err != nil {
		return fmt.Errorf("assessmentRepo.Create: %w", err)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `INSERT INTO assessments (
		id, form_type, patient_first_name, patient_last_name, test_date,
		type_source, record, classification,
		validation_status, validation_results, source_text,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8,
		$9, $10, $11,
		$12, $13
	)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.FormType, a.PatientFirstName, a.PatientLastName, a.TestDate,
		a.TypeSource, a.RecordJSON, nullableJSON(a.ClassificationJSON),
		a.ValidationStatus, a.ValidationResults, a.SourceText,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assessmentRepo.Create: %w", err)
	}
	return nil
}

func (r *assessmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	var a domain.Assessment
	err := r.db.GetContext(ctx, &a, "SELECT * FROM assessments WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("assessmentRepo.GetByID: %w", err)
	}
	if err := decodeAssessment(&a); err != nil {
		return nil, fmt.Errorf("assessmentRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *assessmentRepo) List(ctx context.Context, filter domain.AssessmentFilter) ([]domain.Assessment, int, error) {
	where, args := filterClause(filter)

	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM assessments"+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("assessmentRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT * FROM assessments%s
		 ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, where, n+1, n+2)
	args = append(args, filter.Limit, filter.Offset)

	var items []domain.Assessment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("assessmentRepo.List: %w", err)
	}
	for i := range items {
		if err := decodeAssessment(&items[i]); err != nil {
			return nil, 0, fmt.Errorf("assessmentRepo.List: %w", err)
		}
	}
	return items, total, nil
}

func (r *assessmentRepo) Update(ctx context.Context, a *domain.Assessment) error {
	if err := encodeAssessment(a); err != nil {
		return fmt.Errorf("assessmentRepo.Update: %w", err)
	}
	a.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE assessments SET
			form_type = $1, patient_first_name = $2, patient_last_name = $3, test_date = $4,
			type_source = $5, record = $6, classification = $7,
			validation_status = $8, validation_results = $9, updated_at = $10
		 WHERE id = $11`,
		a.FormType, a.PatientFirstName, a.PatientLastName, a.TestDate,
		a.TypeSource, a.RecordJSON, nullableJSON(a.ClassificationJSON),
		a.ValidationStatus, a.ValidationResults, a.UpdatedAt,
		a.ID)
	if err != nil {
		return fmt.Errorf("assessmentRepo.Update: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assessmentRepo.Update rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}

func (r *assessmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM assessments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("assessmentRepo.Delete: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assessmentRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}

func filterClause(f domain.AssessmentFilter) (string, []any) {
	var conds []string
	var args []any
	if f.FormType != "" {
		args = append(args, f.FormType)
		conds = append(conds, fmt.Sprintf("form_type = $%d", len(args)))
	}
	if f.ValidationStatus != "" {
		args = append(args, f.ValidationStatus)
		conds = append(conds, fmt.Sprintf("validation_status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// encodeAssessment fills the JSONB columns and the denormalised search
// columns from the typed record.
func encodeAssessment(a *domain.Assessment) error {
	rec, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	a.RecordJSON = rec
	a.FormType = a.Record.FormType
	a.PatientFirstName = a.Record.PatientInfo.FirstName
	a.PatientLastName = a.Record.PatientInfo.LastName
	a.TestDate = a.Record.TestDate

	a.ClassificationJSON = nil
	if a.Classification != nil {
		cls, err := json.Marshal(a.Classification)
		if err != nil {
			return fmt.Errorf("marshaling classification: %w", err)
		}
		a.ClassificationJSON = cls
	}
	if len(a.ValidationResults) == 0 {
		a.ValidationResults = json.RawMessage("[]")
	}
	return nil
}

func decodeAssessment(a *domain.Assessment) error {
	a.Record = domain.NewAssessmentRecord(a.FormType)
	if len(a.RecordJSON) > 0 {
		if err := json.Unmarshal(a.RecordJSON, &a.Record); err != nil {
			return fmt.Errorf("unmarshaling record %s: %w", a.ID, err)
		}
	}
	if len(a.ClassificationJSON) > 0 {
		var cls domain.ClassificationResult
		if err := json.Unmarshal(a.ClassificationJSON, &cls); err != nil {
			return fmt.Errorf("unmarshaling classification %s: %w", a.ID, err)
		}
		a.Classification = &cls
	}
	return nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
