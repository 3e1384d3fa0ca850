package get_court_bookings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type MockService struct{ mock.Mock }

func (m *MockService) GetCourtBookings(ctx context.Context, req *models.GetCourtBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingListResponse), args.Error(1)
}

func serve(svc BookingService, userID int64, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/courts/{courtId}/bookings", NewHandler(svc, logger.NewNop()).Handle)

	r := httptest.NewRequest(http.MethodGet, target, nil)
	if userID > 0 {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestToServiceRequest(t *testing.T) {
	req, err := CourtBookingsQuery{Date: "2024-03-01", Status: "paid"}.ToServiceRequest(3, 1)
	require.NoError(t, err)
	require.NotNil(t, req.StartDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *req.StartDate)
	assert.Equal(t, *req.StartDate, *req.EndDate)
	assert.Equal(t, "paid", *req.Status)
	assert.False(t, req.IncludeInactive)

	req, err = CourtBookingsQuery{From: "2024-03-01", To: "2024-03-31", IncludeInactive: "true"}.ToServiceRequest(3, 1)
	require.NoError(t, err)
	assert.Equal(t, 31, req.EndDate.Day())
	assert.True(t, req.IncludeInactive)

	_, err = CourtBookingsQuery{Date: "2024-03-01", From: "2024-03-01"}.ToServiceRequest(3, 1)
	assert.Error(t, err)

	_, err = CourtBookingsQuery{IncludeInactive: "maybe"}.ToServiceRequest(3, 1)
	assert.Error(t, err)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		target     string
		svcErr     error
		callSvc    bool
		wantStatus int
	}{
		{name: "success", userID: 1, target: "/api/v1/courts/3/bookings?date=2024-03-01", callSvc: true, wantStatus: http.StatusOK},
		{name: "bad court id", userID: 1, target: "/api/v1/courts/x/bookings", wantStatus: http.StatusBadRequest},
		{name: "missing user", target: "/api/v1/courts/3/bookings", wantStatus: http.StatusUnauthorized},
		{name: "bad date", userID: 1, target: "/api/v1/courts/3/bookings?date=01-03-2024", wantStatus: http.StatusBadRequest},
		{name: "not admin", userID: 7, target: "/api/v1/courts/3/bookings", callSvc: true, svcErr: bookings.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "court not found", userID: 1, target: "/api/v1/courts/3/bookings", callSvc: true, svcErr: bookings.ErrCourtNotFound, wantStatus: http.StatusNotFound},
		{name: "bad status", userID: 1, target: "/api/v1/courts/3/bookings?status=x", callSvc: true, svcErr: bookings.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", userID: 1, target: "/api/v1/courts/3/bookings", callSvc: true, svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.callSvc {
				if tt.svcErr != nil {
					svc.On("GetCourtBookings", mock.Anything, mock.Anything).Return(nil, tt.svcErr)
				} else {
					svc.On("GetCourtBookings", mock.Anything, mock.Anything).
						Return(&models.BookingListResponse{Bookings: []models.BookingResponse{{ID: 101}}}, nil)
				}
			}

			w := serve(svc, tt.userID, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)
			if !tt.callSvc {
				svc.AssertNotCalled(t, "GetCourtBookings", mock.Anything, mock.Anything)
			}
		})
	}
}
