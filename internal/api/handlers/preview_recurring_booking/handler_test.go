package preview_recurring_booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	previewRecurring "github.com/m04kA/SMC-CourtBookingService/internal/usecase/preview_recurring_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type MockUseCase struct{ mock.Mock }

func (m *MockUseCase) Execute(ctx context.Context, req *previewRecurring.Request) (*previewRecurring.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*previewRecurring.Response), args.Error(1)
}

func newRouter(uc PreviewUseCase) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/courts/{courtId}/recurring-bookings/preview", NewHandler(uc, logger.NewNop()).Handle).
		Methods(http.MethodGet)
	return router
}

func get(router *mux.Router, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandle_Success(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *previewRecurring.Request) bool {
		return req.CourtID == 3 && req.DayOfWeek == 5 && req.TimeSlot == "18:00" &&
			req.StartDate.Format("2006-01-02") == "2024-03-01"
	})).Return(&previewRecurring.Response{
		CourtID:            3,
		TimeSlot:           "18:00",
		Dates:              []string{"2024-03-01", "2024-03-08", "2024-03-15", "2024-03-22"},
		TotalSessions:      4,
		PricePerSession:    100000,
		OriginalTotalPrice: 400000,
		DiscountPercentage: 5,
		DiscountAmount:     20000,
		TotalPrice:         380000,
	}, nil)

	w := get(newRouter(uc), "/api/v1/courts/3/recurring-bookings/preview?dayOfWeek=5&startDate=2024-03-01&endDate=2024-03-22&timeSlot=18:00")
	require.Equal(t, http.StatusOK, w.Code)

	var resp previewRecurring.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.TotalSessions)
	assert.Equal(t, int64(380000), resp.TotalPrice)
	assert.Len(t, resp.Dates, 4)
	uc.AssertExpectations(t)
}

func TestHandle_BadRequests(t *testing.T) {
	targets := map[string]string{
		"bad court id":      "/api/v1/courts/abc/recurring-bookings/preview?dayOfWeek=5&startDate=2024-03-01&endDate=2024-03-22&timeSlot=18:00",
		"missing dayOfWeek": "/api/v1/courts/3/recurring-bookings/preview?startDate=2024-03-01&endDate=2024-03-22&timeSlot=18:00",
		"bad date":          "/api/v1/courts/3/recurring-bookings/preview?dayOfWeek=5&startDate=2024/03/01&endDate=2024-03-22&timeSlot=18:00",
		"bad time slot":     "/api/v1/courts/3/recurring-bookings/preview?dayOfWeek=5&startDate=2024-03-01&endDate=2024-03-22&timeSlot=6pm",
	}

	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			uc := new(MockUseCase)
			w := get(newRouter(uc), target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		})
	}
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "court not found", err: previewRecurring.ErrCourtNotFound, wantStatus: http.StatusNotFound},
		{name: "slot template not found", err: previewRecurring.ErrSlotTemplateNotFound, wantStatus: http.StatusNotFound},
		{name: "no occurrences", err: previewRecurring.ErrNoOccurrences, wantStatus: http.StatusBadRequest},
		{name: "invalid input", err: previewRecurring.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := get(newRouter(uc), "/api/v1/courts/3/recurring-bookings/preview?dayOfWeek=5&startDate=2024-03-01&endDate=2024-03-22&timeSlot=18:00")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
