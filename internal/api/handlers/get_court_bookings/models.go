package get_court_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
)

// CourtBookingsQuery query параметры списка бронирований корта
type CourtBookingsQuery struct {
	Status          string
	Date            string // один день, взаимоисключающий с from/to
	From            string
	To              string
	IncludeInactive string
}

// ToServiceRequest формирует запрос к сервису из query параметров
func (q CourtBookingsQuery) ToServiceRequest(courtID, userID int64) (*models.GetCourtBookingsRequest, error) {
	req := &models.GetCourtBookingsRequest{
		UserID:  userID,
		CourtID: courtID,
	}

	if q.Status != "" {
		status := q.Status
		req.Status = &status
	}

	if q.Date != "" {
		if q.From != "" || q.To != "" {
			return nil, fmt.Errorf("date cannot be combined with from/to")
		}
		date, err := time.Parse(domain.DateFormat, q.Date)
		if err != nil {
			return nil, err
		}
		req.StartDate = &date
		req.EndDate = &date
	}

	if q.From != "" {
		from, err := time.Parse(domain.DateFormat, q.From)
		if err != nil {
			return nil, err
		}
		req.StartDate = &from
	}

	if q.To != "" {
		to, err := time.Parse(domain.DateFormat, q.To)
		if err != nil {
			return nil, err
		}
		req.EndDate = &to
	}

	if q.IncludeInactive != "" {
		includeInactive, err := strconv.ParseBool(q.IncludeInactive)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
