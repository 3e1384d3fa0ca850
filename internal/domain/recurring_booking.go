package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// RecurringBooking серия еженедельных бронирований одного слота
// TotalAmount фиксируется при создании и не пересчитывается при изменении цен
type RecurringBooking struct {
	ID                 int64
	UserID             int64
	CourtID            int64
	DayOfWeek          int // 1=понедельник .. 7=воскресенье
	StartDate          time.Time
	EndDate            time.Time
	TimeSlot           types.TimeString
	TotalAmount        int64
	OriginalAmount     int64
	DiscountPercentage int
	PaymentStatus      PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
