package create_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingModels "github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	CourtID     int64  `json:"courtId" validate:"required,gt=0"`
	BookingDate string `json:"bookingDate" validate:"required,datetime=2006-01-02"` // "2024-03-01"
	StartTime   string `json:"startTime" validate:"required"`                       // "18:00"
}

// PaymentResponse платежная запись бронирования
type PaymentResponse struct {
	OrderID       string     `json:"orderId"`
	Amount        int64      `json:"amount"`
	PaymentStatus string     `json:"paymentStatus"`
	SnapToken     string     `json:"snapToken"`
	SnapURL       string     `json:"snapUrl"`
	ExpiryTime    *time.Time `json:"expiryTime,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	Booking bookingModels.BookingResponse `json:"booking"`
	Payment PaymentResponse               `json:"paymentRecord"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	// Парсим дату
	bookingDate, err := time.Parse(domain.DateFormat, r.BookingDate)
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:    userID,
		CourtID:   r.CourtID,
		Date:      bookingDate,
		StartTime: startTime,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		Booking: *bookingModels.FromDomainBooking(resp.Booking),
		Payment: PaymentResponse{
			OrderID:       resp.Payment.OrderID,
			Amount:        resp.Payment.Amount,
			PaymentStatus: string(resp.Payment.PaymentStatus),
			SnapToken:     resp.Payment.SnapToken,
			SnapURL:       resp.Payment.SnapURL,
			ExpiryTime:    resp.Payment.ExpiryTime,
		},
	}
}
