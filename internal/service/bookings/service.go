package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo BookingRepository
	courtRepo   CourtRepository
	access      AccessPolicy
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	access AccessPolicy,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
		access:      access,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только свое бронирование, администратор видит любое
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.UserID != userID && !s.access.IsAdmin(userID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя
// Опционально фильтрует по статусу оплаты
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%d by requester=%d, status=%v",
		req.UserID, req.RequesterID, req.Status)

	if req.UserID != req.RequesterID && !s.access.IsAdmin(req.RequesterID) {
		s.logger.Warn("GetUserBookings: requester=%d cannot read bookings of user=%d", req.RequesterID, req.UserID)
		return nil, ErrAccessDenied
	}

	var status *domain.PaymentStatus
	if req.Status != nil {
		parsed, err := models.ToDomainPaymentStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &parsed
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, status)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: fetched %d bookings for user=%d", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetCourtBookings получает бронирования корта за период
// Доступно только администраторам
func (s *Service) GetCourtBookings(ctx context.Context, req *models.GetCourtBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCourtBookings: court=%d, user=%d, includeInactive=%t", req.CourtID, req.UserID, req.IncludeInactive)

	if !s.access.IsAdmin(req.UserID) {
		s.logger.Warn("GetCourtBookings: user=%d is not an admin", req.UserID)
		return nil, ErrAccessDenied
	}

	if _, err := s.courtRepo.GetByID(ctx, req.CourtID); err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			s.logger.Warn("GetCourtBookings: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		s.logger.Error("GetCourtBookings: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: GetCourtBookings - get court: %v", ErrInternal, err)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetCourtBookings: invalid filter for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.GetByCourtWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetCourtBookings: repository error for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: GetCourtBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCourtBookings: fetched %d bookings for court=%d", len(bookings), req.CourtID)
	return models.FromDomainBookingList(bookings), nil
}
