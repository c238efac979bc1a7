package port

import (
	"context"

	"github.com/google/uuid"

	"formscan/internal/domain"
)

// AssessmentRepository defines the contract for assessment persistence.
type AssessmentRepository interface {
	Create(ctx context.Context, a *domain.Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)
	List(ctx context.Context, filter domain.AssessmentFilter) ([]domain.Assessment, int, error)
	Update(ctx context.Context, a *domain.Assessment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
