package payments

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/midtrans"
)

// Gateway клиент платежного шлюза
type Gateway interface {
	CreateTransaction(ctx context.Context, req *midtrans.SnapRequest) (*midtrans.SnapResponse, error)
}

// TransactionRepository интерфейс репозитория платежных записей
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	SetSnapToken(ctx context.Context, id int64, token, url string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
