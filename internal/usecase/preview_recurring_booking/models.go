package preview_recurring_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request параметры предпросмотра
type Request struct {
	CourtID   int64
	DayOfWeek int
	StartDate time.Time
	EndDate   time.Time
	TimeSlot  types.TimeString
}

func (r *Request) cacheKey(generation int64) string {
	return fmt.Sprintf("preview:%d:%d:%s:%s:%s:g%d", r.CourtID, r.DayOfWeek,
		r.StartDate.Format(domain.DateFormat), r.EndDate.Format(domain.DateFormat), r.TimeSlot, generation)
}

// Response даты серии и расчет стоимости
type Response struct {
	CourtID            int64    `json:"courtId"`
	TimeSlot           string   `json:"timeSlot"`
	Dates              []string `json:"dates"`
	TotalSessions      int      `json:"totalSessions"`
	PricePerSession    int64    `json:"pricePerSession"`
	OriginalTotalPrice int64    `json:"originalTotalPrice"`
	DiscountPercentage int      `json:"discountPercentage"`
	DiscountAmount     int64    `json:"discountAmount"`
	TotalPrice         int64    `json:"totalPrice"`
}
