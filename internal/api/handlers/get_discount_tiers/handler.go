package get_discount_tiers

import (
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
)

type Handler struct {
	service PricingService
	logger  Logger
}

func NewHandler(service PricingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/pricing/discount-tiers
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetTiers(r.Context())
	if err != nil {
		h.logger.Error("GET /pricing/discount-tiers - Failed to get tiers: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /pricing/discount-tiers - Tiers retrieved: count=%d", len(result.Tiers))
	handlers.RespondJSON(w, http.StatusOK, result)
}
