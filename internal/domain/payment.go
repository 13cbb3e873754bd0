package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentOrder is a gateway order awaiting payment. KeyID is the gateway's
// public key, handed to the client so it can open the checkout widget.
type PaymentOrder struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	KeyID    string
}

// PaymentProvider is the external payment gateway collaborator. The gateway
// signs successful payments with HMAC-SHA256 over "orderID|paymentID" using a
// server-held secret; VerifySignature checks that proof.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
