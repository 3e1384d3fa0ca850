package process_payment_notification

import (
	"fmt"
	"strings"
)

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: empty notification", ErrInvalidInput)
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return fmt.Errorf("%w: order_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.TransactionStatus) == "" {
		return fmt.Errorf("%w: transaction_status is required", ErrInvalidInput)
	}
	return nil
}
