package update_discount_tiers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgValidationFailed   = "ошибка валидации таблицы скидок"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректная таблица скидок"
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

// Handle PUT /api/v1/pricing/discount-tiers
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /pricing/discount-tiers - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req UpdateDiscountTiersRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /pricing/discount-tiers - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if errs := handlers.ValidateStruct(req); len(errs) > 0 {
		h.logger.Warn("PUT /pricing/discount-tiers - Validation failed: user_id=%d, errors=%d", userID, len(errs))
		handlers.RespondValidationErrors(w, msgValidationFailed, errs)
		return
	}

	// Сервис сам проверит права администратора
	result, err := h.service.ReplaceTiers(r.Context(), req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrAccessDenied):
			h.logger.Warn("PUT /pricing/discount-tiers - Access denied: user_id=%d", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, pricing.ErrInvalidInput):
			h.logger.Warn("PUT /pricing/discount-tiers - Invalid data: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /pricing/discount-tiers - Failed to replace tiers: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /pricing/discount-tiers - Tiers replaced: user_id=%d, count=%d", userID, len(result.Tiers))
	handlers.RespondJSON(w, http.StatusOK, result)
}
