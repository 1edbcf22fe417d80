package models

import (
	"context"
	"time"
)

// PaymentMethod describes a selectable payment method. FeePercentage is
// informational and never applied to the charged amount.
type PaymentMethod struct {
	ID            string  `json:"id"`
	DisplayName   string  `json:"display_name"`
	Icon          string  `json:"icon"`
	Color         string  `json:"color"`
	FeePercentage float64 `json:"fee_percentage"`
	RequiresPhone bool    `json:"requires_phone"`
}

type PaymentRequest struct {
	Method string
	Amount float64
	Phone  string
}

// PaymentCompletion is the single result of a resolved payment.
type PaymentCompletion struct {
	Method      string    `json:"method"`
	Amount      float64   `json:"amount"`
	Reference   string    `json:"reference"`
	CompletedAt time.Time `json:"completed_at"`
}

// PaymentGateway resolves a payment request exactly once.
type PaymentGateway interface {
	Initiate(ctx context.Context, req PaymentRequest) (*PaymentCompletion, error)
	Methods() []PaymentMethod
}
