package payment_notification

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	processNotification "github.com/m04kA/SMC-CourtBookingService/internal/usecase/process_payment_notification"
)

const (
	msgInvalidRequestBody = "некорректное тело уведомления"
	msgInvalidSignature   = "неверная подпись уведомления"
	msgInvalidInput       = "в уведомлении отсутствуют обязательные поля"
	msgUnknownStatus      = "неизвестный статус транзакции"
	msgOrderNotFound      = "заказ не найден"
)

type Handler struct {
	useCase ProcessNotificationUseCase
	logger  Logger
}

func NewHandler(useCase ProcessNotificationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/payments/notification
// Вызывается платежным шлюзом, аутентификация по подписи в теле
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req NotificationRequest
	if err := handlers.DecodeJSONLenient(r, &req); err != nil {
		h.logger.Warn("POST /payments/notification - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, processNotification.ErrInvalidSignature):
			h.logger.Warn("POST /payments/notification - Invalid signature: order_id=%s", req.OrderID)
			handlers.RespondUnauthorized(w, msgInvalidSignature)

		case errors.Is(err, processNotification.ErrTransactionNotFound):
			h.logger.Warn("POST /payments/notification - Order not found: order_id=%s", req.OrderID)
			handlers.RespondNotFound(w, msgOrderNotFound)

		case errors.Is(err, processNotification.ErrUnknownStatus):
			h.logger.Warn("POST /payments/notification - Unknown status: order_id=%s, status=%q",
				req.OrderID, req.TransactionStatus)
			handlers.RespondBadRequest(w, msgUnknownStatus)

		case errors.Is(err, processNotification.ErrInvalidInput):
			h.logger.Warn("POST /payments/notification - Invalid notification: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /payments/notification - Failed to process notification: order_id=%s, error=%v",
				req.OrderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /payments/notification - Notification applied: order_id=%s, status=%s, booking_status=%s",
		result.OrderID, result.TransactionStatus, result.BookingStatus)
	handlers.RespondJSON(w, http.StatusOK, NotificationResponse{Success: true})
}
