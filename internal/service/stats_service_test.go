package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"formscan/internal/domain"
	"formscan/internal/service"
	"formscan/mocks"
)

func TestStatsService_GetStats(t *testing.T) {
	mockRepo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(mockRepo)

	expected := &domain.Stats{TotalAssessments: 12, ValidationValid: 9, ByFormType: map[string]int{"PLS-5": 12}}
	mockRepo.On("GetStats", mock.Anything).Return(expected, nil)

	result, err := svc.GetStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	mockRepo.AssertExpectations(t)
}
