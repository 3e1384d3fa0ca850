package create_recurring_booking

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/availability"
	createRecurring "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_recurring_booking"
)

const (
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgValidationFailed   = "ошибка валидации запроса"
	msgInvalidDateOrTime  = "некорректный формат даты (YYYY-MM-DD) или времени (HH:MM)"
	msgInvalidInput       = "некорректные параметры серии"
	msgNoOccurrences      = "в выбранном периоде нет ни одного подходящего дня недели"
	msgTooManyOccurrences = "слишком много занятий в серии"
	msgCourtNotFound      = "корт не найден"
	msgSlotNotFound       = "у корта нет слота на выбранное время"
	msgSlotConflict       = "выбранный слот уже занят"
	msgSlotConflictOnDate = "выбранный слот уже занят на %s"
)

type Handler struct {
	useCase CreateRecurringBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateRecurringBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/recurring-bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /recurring-bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateRecurringBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /recurring-bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if errs := handlers.ValidateStruct(req); len(errs) > 0 {
		h.logger.Warn("POST /recurring-bookings - Validation failed: user_id=%d, errors=%d", userID, len(errs))
		handlers.RespondValidationErrors(w, msgValidationFailed, errs)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /recurring-bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		h.respondUseCaseError(w, &req, userID, err)
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /recurring-bookings - Series created successfully: series_id=%d, user_id=%d, court_id=%d, sessions=%d",
		result.Series.ID, userID, req.CourtID, result.TotalSessions)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

func (h *Handler) respondUseCaseError(w http.ResponseWriter, req *CreateRecurringBookingRequest, userID int64, err error) {
	switch {
	case errors.Is(err, createRecurring.ErrSlotConflict):
		var conflict *availability.ConflictError
		if errors.As(err, &conflict) {
			date := conflict.Date.Format(domain.DateFormat)
			h.logger.Warn("POST /recurring-bookings - Slot conflict: user_id=%d, court_id=%d, date=%s",
				userID, req.CourtID, date)
			handlers.RespondConflict(w, fmt.Sprintf(msgSlotConflictOnDate, date))
			return
		}
		h.logger.Warn("POST /recurring-bookings - Slot conflict: user_id=%d, court_id=%d", userID, req.CourtID)
		handlers.RespondConflict(w, msgSlotConflict)

	case errors.Is(err, createRecurring.ErrCourtNotFound):
		h.logger.Warn("POST /recurring-bookings - Court not found: court_id=%d", req.CourtID)
		handlers.RespondNotFound(w, msgCourtNotFound)

	case errors.Is(err, createRecurring.ErrSlotTemplateNotFound):
		h.logger.Warn("POST /recurring-bookings - Slot template not found: court_id=%d, time_slot=%s",
			req.CourtID, req.TimeSlot)
		handlers.RespondNotFound(w, msgSlotNotFound)

	case errors.Is(err, createRecurring.ErrNoOccurrences):
		h.logger.Warn("POST /recurring-bookings - No occurrences: user_id=%d, %s..%s", userID, req.StartDate, req.EndDate)
		handlers.RespondBadRequest(w, msgNoOccurrences)

	case errors.Is(err, createRecurring.ErrTooManyOccurrences):
		h.logger.Warn("POST /recurring-bookings - Too many occurrences: user_id=%d, %s..%s", userID, req.StartDate, req.EndDate)
		handlers.RespondBadRequest(w, msgTooManyOccurrences)

	case errors.Is(err, createRecurring.ErrInvalidInput):
		h.logger.Warn("POST /recurring-bookings - Invalid input: user_id=%d, error=%v", userID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("POST /recurring-bookings - Failed to create series: user_id=%d, court_id=%d, error=%v",
			userID, req.CourtID, err)
		handlers.RespondInternalError(w)
	}
}
