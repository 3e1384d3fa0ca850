package get_booking

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

func (m *MockService) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResponse), args.Error(1)
}

func serve(svc BookingService, userID int64, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/bookings/{bookingId}", NewHandler(svc, logger.NewNop()).Handle)

	r := httptest.NewRequest(http.MethodGet, target, nil)
	if userID > 0 {
		r = r.WithContext(middleware.WithUserID(r.Context(), userID))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_Success(t *testing.T) {
	svc := new(MockService)
	seriesID := int64(11)
	svc.On("GetByID", mock.Anything, int64(101), int64(7)).Return(&models.BookingResponse{
		ID: 101, UserID: 7, CourtID: 3, Date: "2024-03-01", StartTime: "18:00",
		PaymentStatus: "pending", RecurringBookingID: &seriesID,
	}, nil)

	w := serve(svc, 7, "/api/v1/bookings/101")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(101), resp.ID)
	require.NotNil(t, resp.RecurringBookingID)
	assert.Equal(t, seriesID, *resp.RecurringBookingID)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		target     string
		svcErr     error
		wantStatus int
	}{
		{name: "bad id", userID: 7, target: "/api/v1/bookings/abc", wantStatus: http.StatusBadRequest},
		{name: "missing user", target: "/api/v1/bookings/101", wantStatus: http.StatusUnauthorized},
		{name: "not found", userID: 7, target: "/api/v1/bookings/101", svcErr: bookings.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "foreign booking", userID: 8, target: "/api/v1/bookings/101", svcErr: bookings.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "internal", userID: 7, target: "/api/v1/bookings/101", svcErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.svcErr != nil {
				svc.On("GetByID", mock.Anything, int64(101), tt.userID).Return(nil, tt.svcErr)
			}

			w := serve(svc, tt.userID, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
