package get_discount_tiers

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing/models"
)

type PricingService interface {
	GetTiers(ctx context.Context) (*models.DiscountTiersResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
