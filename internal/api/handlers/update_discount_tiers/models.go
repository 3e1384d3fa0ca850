package update_discount_tiers

import (
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing/models"
)

// UpdateDiscountTiersRequest HTTP request model, таблица заменяется целиком
type UpdateDiscountTiersRequest struct {
	Tiers []TierRequest `json:"tiers" validate:"required,min=1,dive"`
}

// TierRequest одна ступень скидки
type TierRequest struct {
	MinSessions int `json:"minSessions" validate:"gt=0"`
	Percentage  int `json:"percentage" validate:"gt=0,lt=100"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateDiscountTiersRequest) ToServiceRequest(userID int64) *models.ReplaceTiersRequest {
	tiers := make([]models.DiscountTier, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		tiers = append(tiers, models.DiscountTier{MinSessions: t.MinSessions, Percentage: t.Percentage})
	}

	return &models.ReplaceTiersRequest{
		UserID: userID,
		Tiers:  tiers,
	}
}
