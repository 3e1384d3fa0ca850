package midtrans

// TransactionDetails детали заказа
type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

// CustomerDetails данные покупателя
type CustomerDetails struct {
	FirstName string `json:"first_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// ItemDetail позиция заказа
type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// Expiry срок действия платежной ссылки
type Expiry struct {
	Unit     string `json:"unit"`
	Duration int    `json:"duration"`
}

// SnapRequest запрос на создание Snap транзакции
type SnapRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    *CustomerDetails   `json:"customer_details,omitempty"`
	ItemDetails        []ItemDetail       `json:"item_details,omitempty"`
	Expiry             *Expiry            `json:"expiry,omitempty"`
}

// SnapResponse ответ шлюза: токен и ссылка на оплату
type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// ErrorResponse модель ошибки от шлюза
type ErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}
