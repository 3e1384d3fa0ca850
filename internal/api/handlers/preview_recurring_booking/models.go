package preview_recurring_booking

import (
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	previewRecurring "github.com/m04kA/SMC-CourtBookingService/internal/usecase/preview_recurring_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// PreviewQuery параметры запроса предпросмотра
type PreviewQuery struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required,number"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	TimeSlot  string `json:"timeSlot" validate:"required"`
}

// FromQuery читает параметры из query string
func FromQuery(q url.Values) PreviewQuery {
	return PreviewQuery{
		DayOfWeek: q.Get("dayOfWeek"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		TimeSlot:  q.Get("timeSlot"),
	}
}

// ToUseCaseRequest конвертирует параметры в модель use case
func (q PreviewQuery) ToUseCaseRequest(courtID int64) (*previewRecurring.Request, error) {
	dayOfWeek, err := strconv.Atoi(q.DayOfWeek)
	if err != nil {
		return nil, err
	}

	startDate, err := time.Parse(domain.DateFormat, q.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, q.EndDate)
	if err != nil {
		return nil, err
	}

	timeSlot, err := types.NewTimeStringFromString(q.TimeSlot)
	if err != nil {
		return nil, err
	}

	return &previewRecurring.Request{
		CourtID:   courtID,
		DayOfWeek: dayOfWeek,
		StartDate: startDate,
		EndDate:   endDate,
		TimeSlot:  timeSlot,
	}, nil
}
