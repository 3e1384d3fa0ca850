package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Request модель запроса на получение слотов корта за день
type Request struct {
	CourtID int64     // ID корта
	Date    time.Time // Дата (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Date    time.Time // Дата, на которую запрашивались слоты
	CourtID int64     // ID корта
	Slots   []Slot    // Слоты по возрастанию времени
}

// Slot модель временного слота
type Slot struct {
	ID        int64
	StartTime types.TimeString // Время начала слота (например, "18:00")
	EndTime   types.TimeString
	Price     int64
	DayType   domain.DayType
	Available bool // Флаг available в расписании
	Bookable  bool // Свободен, не пересекается с активными бронированиями и еще не начался
}
