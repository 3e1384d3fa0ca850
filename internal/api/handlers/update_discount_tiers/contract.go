package update_discount_tiers

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing/models"
)

type PricingService interface {
	ReplaceTiers(ctx context.Context, req *models.ReplaceTiersRequest) (*models.DiscountTiersResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
