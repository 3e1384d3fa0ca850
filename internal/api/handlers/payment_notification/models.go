package payment_notification

import (
	processNotification "github.com/m04kA/SMC-CourtBookingService/internal/usecase/process_payment_notification"
)

// NotificationRequest тело уведомления платежного шлюза
// Шлюз присылает и другие поля, они игнорируются
type NotificationRequest struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
}

// NotificationResponse ответ шлюзу
type NotificationResponse struct {
	Success bool `json:"success"`
}

// ToUseCaseRequest конвертирует уведомление в модель use case
func (r *NotificationRequest) ToUseCaseRequest() *processNotification.Request {
	return &processNotification.Request{
		OrderID:           r.OrderID,
		StatusCode:        r.StatusCode,
		GrossAmount:       r.GrossAmount,
		TransactionStatus: r.TransactionStatus,
		SignatureKey:      r.SignatureKey,
		PaymentType:       r.PaymentType,
	}
}
