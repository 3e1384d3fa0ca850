package payment_notification

import (
	"context"

	processNotification "github.com/m04kA/SMC-CourtBookingService/internal/usecase/process_payment_notification"
)

type ProcessNotificationUseCase interface {
	Execute(ctx context.Context, req *processNotification.Request) (*processNotification.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
