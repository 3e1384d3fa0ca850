package create_recurring_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingModels "github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	createRecurring "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_recurring_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// CreateRecurringBookingRequest HTTP request model
type CreateRecurringBookingRequest struct {
	CourtID   int64  `json:"courtId" validate:"required,gt=0"`
	DayOfWeek int    `json:"dayOfWeek" validate:"required,min=1,max=7"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"` // "2024-03-01"
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	TimeSlot  string `json:"timeSlot" validate:"required"` // "18:00"
}

// SeriesResponse данные серии
type SeriesResponse struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"userId"`
	CourtID            int64     `json:"courtId"`
	DayOfWeek          int       `json:"dayOfWeek"`
	StartDate          string    `json:"startDate"`
	EndDate            string    `json:"endDate"`
	TimeSlot           string    `json:"timeSlot"`
	TotalAmount        int64     `json:"totalAmount"`
	OriginalAmount     int64     `json:"originalAmount"`
	DiscountPercentage int       `json:"discountPercentage"`
	PaymentStatus      string    `json:"paymentStatus"`
	CreatedAt          time.Time `json:"createdAt"`
}

// PaymentRecordResponse платежная запись для перехода на оплату
type PaymentRecordResponse struct {
	OrderID       string     `json:"orderId"`
	Amount        int64      `json:"amount"`
	PaymentStatus string     `json:"paymentStatus"`
	SnapToken     string     `json:"snapToken"`
	SnapURL       string     `json:"snapUrl"`
	ExpiryTime    *time.Time `json:"expiryTime,omitempty"`
}

// RecurringBookingResponse HTTP response model
type RecurringBookingResponse struct {
	Series             SeriesResponse                  `json:"series"`
	Occurrences        []bookingModels.BookingResponse `json:"occurrences"`
	PaymentRecord      PaymentRecordResponse           `json:"paymentRecord"`
	OriginalTotalPrice int64                           `json:"originalTotalPrice"`
	DiscountPercentage int                             `json:"discountPercentage"`
	DiscountAmount     int64                           `json:"discountAmount"`
	TotalPrice         int64                           `json:"totalPrice"`
	TotalSessions      int                             `json:"totalSessions"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateRecurringBookingRequest) ToUseCaseRequest(userID int64) (*createRecurring.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, err
	}

	timeSlot, err := types.NewTimeStringFromString(r.TimeSlot)
	if err != nil {
		return nil, err
	}

	return &createRecurring.Request{
		UserID:    userID,
		CourtID:   r.CourtID,
		DayOfWeek: r.DayOfWeek,
		StartDate: startDate,
		EndDate:   endDate,
		TimeSlot:  timeSlot,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createRecurring.Response) *RecurringBookingResponse {
	occurrences := bookingModels.FromDomainBookingList(resp.Occurrences).Bookings

	return &RecurringBookingResponse{
		Series: SeriesResponse{
			ID:                 resp.Series.ID,
			UserID:             resp.Series.UserID,
			CourtID:            resp.Series.CourtID,
			DayOfWeek:          resp.Series.DayOfWeek,
			StartDate:          resp.Series.StartDate.Format(domain.DateFormat),
			EndDate:            resp.Series.EndDate.Format(domain.DateFormat),
			TimeSlot:           resp.Series.TimeSlot.String(),
			TotalAmount:        resp.Series.TotalAmount,
			OriginalAmount:     resp.Series.OriginalAmount,
			DiscountPercentage: resp.Series.DiscountPercentage,
			PaymentStatus:      string(resp.Series.PaymentStatus),
			CreatedAt:          resp.Series.CreatedAt,
		},
		Occurrences: occurrences,
		PaymentRecord: PaymentRecordResponse{
			OrderID:       resp.Payment.OrderID,
			Amount:        resp.Payment.Amount,
			PaymentStatus: string(resp.Payment.PaymentStatus),
			SnapToken:     resp.Payment.SnapToken,
			SnapURL:       resp.Payment.SnapURL,
			ExpiryTime:    resp.Payment.ExpiryTime,
		},
		OriginalTotalPrice: resp.Quote.OriginalTotal,
		DiscountPercentage: resp.Quote.DiscountPercentage,
		DiscountAmount:     resp.Quote.DiscountAmount,
		TotalPrice:         resp.TotalPrice,
		TotalSessions:      resp.TotalSessions,
	}
}
