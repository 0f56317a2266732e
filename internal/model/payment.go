package model

import "time"

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// PaymentDetails never carries the full card number or the CVV.
type PaymentDetails struct {
	CardLastFour   string `json:"card_last_four"`
	CardholderName string `json:"cardholder_name"`
}

type Payment struct {
	ID            int64             `json:"id"`
	BookingID     int64             `json:"booking_id"`
	PaymentMethod string            `json:"payment_method"`
	Amount        Money             `json:"amount"`
	TransactionID string            `json:"transaction_id"`
	Status        TransactionStatus `json:"status"`
	Details       PaymentDetails    `json:"payment_details"`
	PaidAt        *time.Time        `json:"paid_at"`
	CreatedAt     time.Time         `json:"created_at"`
}
