package mocks

import (
	"github.com/stretchr/testify/mock"

	"formscan/internal/domain"
)

// MockFormClassifier is a mock implementation of port.FormClassifier.
type MockFormClassifier struct {
	mock.Mock
}

func (m *MockFormClassifier) Classify(text string) domain.ClassificationResult {
	args := m.Called(text)
	return args.Get(0).(domain.ClassificationResult)
}
