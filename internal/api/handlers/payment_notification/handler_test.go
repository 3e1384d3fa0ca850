package payment_notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	processNotification "github.com/m04kA/SMC-CourtBookingService/internal/usecase/process_payment_notification"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type MockUseCase struct{ mock.Mock }

func (m *MockUseCase) Execute(ctx context.Context, req *processNotification.Request) (*processNotification.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processNotification.Response), args.Error(1)
}

const settlementBody = `{
	"transaction_time": "2024-02-28 12:05:00",
	"transaction_status": "settlement",
	"transaction_id": "0b1c2d",
	"status_code": "200",
	"signature_key": "abc",
	"payment_type": "bank_transfer",
	"order_id": "RB-11-abc",
	"gross_amount": "380000.00",
	"fraud_status": "accept",
	"currency": "IDR"
}`

func post(uc ProcessNotificationUseCase, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notification", strings.NewReader(body))
	NewHandler(uc, logger.NewNop()).Handle(w, r)
	return w
}

func TestHandle_Success(t *testing.T) {
	uc := new(MockUseCase)
	uc.On("Execute", mock.Anything, &processNotification.Request{
		OrderID:           "RB-11-abc",
		StatusCode:        "200",
		GrossAmount:       "380000.00",
		TransactionStatus: "settlement",
		SignatureKey:      "abc",
		PaymentType:       "bank_transfer",
	}).Return(&processNotification.Response{
		OrderID:           "RB-11-abc",
		TransactionStatus: domain.TransactionSettlement,
		BookingStatus:     domain.PaymentPaid,
	}, nil)

	w := post(uc, settlementBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	uc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "invalid signature", err: processNotification.ErrInvalidSignature, wantStatus: http.StatusUnauthorized},
		{name: "unknown order", err: processNotification.ErrTransactionNotFound, wantStatus: http.StatusNotFound},
		{name: "unknown status", err: processNotification.ErrUnknownStatus, wantStatus: http.StatusBadRequest},
		{name: "missing fields", err: processNotification.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "storage failure", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := new(MockUseCase)
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := post(uc, settlementBody)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandle_MalformedBody(t *testing.T) {
	uc := new(MockUseCase)

	w := post(uc, `{"order_id":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
