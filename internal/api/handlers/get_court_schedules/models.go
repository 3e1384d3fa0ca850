package get_court_schedules

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
)

// SchedulesResponse HTTP response model
type SchedulesResponse struct {
	Date    string         `json:"date"`
	CourtID int64          `json:"courtId"`
	Slots   []ScheduleSlot `json:"slots"`
}

// ScheduleSlot модель временного слота
type ScheduleSlot struct {
	ID        int64  `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Price     int64  `json:"price"`
	DayType   string `json:"dayType"`
	Available bool   `json:"available"`
	Bookable  bool   `json:"bookable"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SchedulesResponse {
	slots := make([]ScheduleSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = ScheduleSlot{
			ID:        slot.ID,
			StartTime: slot.StartTime.String(),
			EndTime:   slot.EndTime.String(),
			Price:     slot.Price,
			DayType:   string(slot.DayType),
			Available: slot.Available,
			Bookable:  slot.Bookable,
		}
	}

	return &SchedulesResponse{
		Date:    resp.Date.Format(domain.DateFormat),
		CourtID: resp.CourtID,
		Slots:   slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(courtID int64, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		CourtID: courtID,
		Date:    date,
	}, nil
}
