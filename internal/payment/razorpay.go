// Package payment adapts the external payment gateway. Orders are created
// through the gateway SDK; payment proofs are HMAC-SHA256 signatures over
// "orderID|paymentID" computed with the gateway secret.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/oneshowhq/oneshow/internal/domain"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

type RazorpayProvider struct {
	keyID  string
	secret string
	client *razorpay.Client
}

func NewRazorpayProvider(keyID, secret string) *RazorpayProvider {
	return &RazorpayProvider{
		keyID:  keyID,
		secret: secret,
		client: razorpay.NewClient(keyID, secret),
	}
}

func (p *RazorpayProvider) CreateOrder(
	_ context.Context,
	amount decimal.Decimal,
	currency string,
	receipt string) (*domain.PaymentOrder, error) {

	// The gateway expects the amount in the currency's smallest unit.
	data := map[string]any{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": currency,
		"receipt":  receipt,
	}

	order, err := p.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("gateway order response is missing an order ID")
	}

	return &domain.PaymentOrder{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
		KeyID:    p.keyID,
	}, nil
}

func (p *RazorpayProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(p.secret, orderID, paymentID, signature)
}

// VerifySignature checks an HMAC-SHA256 proof over "orderID|paymentID" in
// constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign produces the proof the gateway would attach to a successful payment.
// Exported for tests and local tooling; the real counterpart lives gateway-side.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))

	return hex.EncodeToString(mac.Sum(nil))
}
