package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"formscan/internal/domain"
	"formscan/internal/service"
)

// MockAssessmentService is a mock implementation of service.AssessmentService.
type MockAssessmentService struct {
	mock.Mock
}

func (m *MockAssessmentService) Ingest(ctx context.Context, input *service.IngestInput) (*domain.Assessment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assessment), args.Error(1)
}

func (m *MockAssessmentService) Preview(ctx context.Context, input *service.IngestInput) (*service.PreviewResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResult), args.Error(1)
}

func (m *MockAssessmentService) Classify(ctx context.Context, text string) domain.ClassificationResult {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.ClassificationResult)
}

func (m *MockAssessmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assessment), args.Error(1)
}

func (m *MockAssessmentService) List(ctx context.Context, filter domain.AssessmentFilter) ([]domain.Assessment, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Assessment), args.Int(1), args.Error(2)
}

func (m *MockAssessmentService) UpdateRecord(ctx context.Context, input *service.UpdateRecordInput) (*domain.Assessment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assessment), args.Error(1)
}

func (m *MockAssessmentService) Renormalize(ctx context.Context, a *domain.Assessment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAssessmentService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssessmentService) Export(ctx context.Context, filter domain.AssessmentFilter, format service.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, filter, format, w)
	return args.Error(0)
}
