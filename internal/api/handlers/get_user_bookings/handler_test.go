package get_user_bookings

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

	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type MockService struct{ mock.Mock }

func (m *MockService) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingListResponse), args.Error(1)
}

func serve(svc BookingService, requesterID int64, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/users/{userId}/bookings", NewHandler(svc, logger.NewNop()).Handle)

	r := httptest.NewRequest(http.MethodGet, target, nil)
	if requesterID > 0 {
		r = r.WithContext(middleware.WithUserID(r.Context(), requesterID))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_Success(t *testing.T) {
	svc := new(MockService)
	svc.On("GetUserBookings", mock.Anything, mock.MatchedBy(func(req *models.GetUserBookingsRequest) bool {
		return req.UserID == 7 && req.RequesterID == 7 && req.Status != nil && *req.Status == "paid"
	})).Return(&models.BookingListResponse{Bookings: []models.BookingResponse{
		{ID: 101, UserID: 7, CourtID: 3, Date: "2024-03-01", PaymentStatus: "paid"},
		{ID: 102, UserID: 7, CourtID: 3, Date: "2024-03-08", PaymentStatus: "paid"},
	}}, nil)

	w := serve(svc, 7, "/api/v1/users/7/bookings?status=paid")
	require.Equal(t, http.StatusOK, w.Code)

	var resp []models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	svc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name        string
		requesterID int64
		target      string
		svcErr      error
		wantStatus  int
	}{
		{name: "bad user id", requesterID: 7, target: "/api/v1/users/x/bookings", wantStatus: http.StatusBadRequest},
		{name: "missing requester", target: "/api/v1/users/7/bookings", wantStatus: http.StatusUnauthorized},
		{name: "foreign user", requesterID: 8, target: "/api/v1/users/7/bookings", svcErr: bookings.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "bad status", requesterID: 7, target: "/api/v1/users/7/bookings?status=confirmed", svcErr: bookings.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "internal", requesterID: 7, target: "/api/v1/users/7/bookings", svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.svcErr != nil {
				svc.On("GetUserBookings", mock.Anything, mock.Anything).Return(nil, tt.svcErr)
			}

			w := serve(svc, tt.requesterID, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
