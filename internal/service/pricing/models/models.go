package models

import "github.com/m04kA/SMC-CourtBookingService/internal/domain"

// DiscountTier ступень скидки
type DiscountTier struct {
	MinSessions int `json:"minSessions"`
	Percentage  int `json:"percentage"`
}

// ReplaceTiersRequest запрос на замену таблицы скидок
type ReplaceTiersRequest struct {
	UserID int64
	Tiers  []DiscountTier
}

// ToDomainTiers конвертирует запрос в domain модель
func (r *ReplaceTiersRequest) ToDomainTiers() []domain.DiscountTier {
	tiers := make([]domain.DiscountTier, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		tiers = append(tiers, domain.DiscountTier{MinSessions: t.MinSessions, Percentage: t.Percentage})
	}
	return tiers
}

// DiscountTiersResponse таблица скидок по убыванию minSessions
type DiscountTiersResponse struct {
	Tiers []DiscountTier `json:"tiers"`
}

// FromDomainTable конвертирует domain таблицу в DTO
func FromDomainTable(table *domain.DiscountTable) *DiscountTiersResponse {
	resp := &DiscountTiersResponse{Tiers: make([]DiscountTier, 0)}
	for _, t := range table.Tiers() {
		resp.Tiers = append(resp.Tiers, DiscountTier{MinSessions: t.MinSessions, Percentage: t.Percentage})
	}
	return resp
}
