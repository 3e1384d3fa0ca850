package domain

// Default values
const (
	DefaultSlotDurationMinutes = 60
	DefaultMaxOccurrences      = 104 // 2 года еженедельно
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Order id prefixes for the payment gateway
const (
	OrderPrefixRecurring = "RB"
	OrderPrefixSingle    = "BK"
)

// ActiveStatuses статусы, при которых бронирование удерживает слот
var ActiveStatuses = []PaymentStatus{
	PaymentPending,
	PaymentPaid,
}

// InactiveStatuses статусы освобожденных бронирований
var InactiveStatuses = []PaymentStatus{
	PaymentCanceled,
	PaymentRefunded,
}

// StatusStrings переводит статусы в []string для SQL-фильтров
func StatusStrings(statuses []PaymentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
