package get_discount_tiers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type MockService struct{ mock.Mock }

func (m *MockService) GetTiers(ctx context.Context) (*models.DiscountTiersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscountTiersResponse), args.Error(1)
}

func TestHandle(t *testing.T) {
	svc := new(MockService)
	svc.On("GetTiers", mock.Anything).Return(&models.DiscountTiersResponse{Tiers: []models.DiscountTier{
		{MinSessions: 16, Percentage: 15},
		{MinSessions: 8, Percentage: 10},
		{MinSessions: 4, Percentage: 5},
	}}, nil)

	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/discount-tiers", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tiers":[{"minSessions":16,"percentage":15},{"minSessions":8,"percentage":10},{"minSessions":4,"percentage":5}]}`,
		w.Body.String())
}

func TestHandle_Error(t *testing.T) {
	svc := new(MockService)
	svc.On("GetTiers", mock.Anything).Return(nil, errors.New("boom"))

	w := httptest.NewRecorder()
	NewHandler(svc, logger.NewNop()).Handle(w, httptest.NewRequest(http.MethodGet, "/api/v1/pricing/discount-tiers", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
