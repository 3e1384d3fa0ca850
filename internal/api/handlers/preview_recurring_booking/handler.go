package preview_recurring_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	previewRecurring "github.com/m04kA/SMC-CourtBookingService/internal/usecase/preview_recurring_booking"
)

const (
	msgInvalidCourtID    = "некорректный ID корта"
	msgValidationFailed  = "ошибка валидации параметров запроса"
	msgInvalidDateOrTime = "некорректный формат даты (YYYY-MM-DD) или времени (HH:MM)"
	msgInvalidInput      = "некорректные параметры серии"
	msgNoOccurrences     = "в выбранном периоде нет ни одного подходящего дня недели"
	msgCourtNotFound     = "корт не найден"
	msgSlotNotFound      = "у корта нет слота на выбранное время"
)

type Handler struct {
	useCase PreviewUseCase
	logger  Logger
}

func NewHandler(useCase PreviewUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/courts/{courtId}/recurring-bookings/preview
// Query params: dayOfWeek, startDate, endDate, timeSlot (все обязательны)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := strconv.ParseInt(mux.Vars(r)["courtId"], 10, 64)
	if err != nil || courtID <= 0 {
		h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	query := FromQuery(r.URL.Query())
	if errs := handlers.ValidateStruct(query); len(errs) > 0 {
		h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - Validation failed: court_id=%d, errors=%d",
			courtID, len(errs))
		handlers.RespondValidationErrors(w, msgValidationFailed, errs)
		return
	}

	useCaseReq, err := query.ToUseCaseRequest(courtID)
	if err != nil {
		h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - Failed to parse query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, previewRecurring.ErrCourtNotFound):
			h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, previewRecurring.ErrSlotTemplateNotFound):
			h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - Slot template not found: court_id=%d, time_slot=%s",
				courtID, query.TimeSlot)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, previewRecurring.ErrNoOccurrences):
			h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - No occurrences: court_id=%d", courtID)
			handlers.RespondBadRequest(w, msgNoOccurrences)

		case errors.Is(err, previewRecurring.ErrInvalidInput):
			h.logger.Warn("GET /courts/{id}/recurring-bookings/preview - Invalid input: court_id=%d, error=%v", courtID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /courts/{id}/recurring-bookings/preview - Failed to build preview: court_id=%d, error=%v",
				courtID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /courts/{id}/recurring-bookings/preview - Preview built: court_id=%d, sessions=%d, total=%d",
		courtID, result.TotalSessions, result.TotalPrice)
	handlers.RespondJSON(w, http.StatusOK, result)
}
