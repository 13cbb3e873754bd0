package payment

import (
	"context"
	"fmt"

	"github.com/oneshowhq/oneshow/internal/domain"
	"github.com/shopspring/decimal"
)

// MockProvider creates deterministic orders without talking to the gateway.
// Signatures follow the same HMAC scheme as the real provider so handler
// tests can exercise the full verification path.
type MockProvider struct {
	keyID   string
	secret  string
	counter int
	FailAll bool
}

func NewMockProvider(keyID, secret string) *MockProvider {
	return &MockProvider{keyID: keyID, secret: secret}
}

func (p *MockProvider) CreateOrder(
	_ context.Context,
	amount decimal.Decimal,
	currency string,
	_ string) (*domain.PaymentOrder, error) {

	if p.FailAll {
		return nil, fmt.Errorf("gateway unavailable")
	}

	p.counter++

	return &domain.PaymentOrder{
		OrderID:  fmt.Sprintf("order_mock_%d", p.counter),
		Amount:   amount,
		Currency: currency,
		KeyID:    p.keyID,
	}, nil
}

func (p *MockProvider) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(p.secret, orderID, paymentID, signature)
}

// Sign mirrors the gateway-side signing step for a mock payment.
func (p *MockProvider) Sign(orderID, paymentID string) string {
	return Sign(p.secret, orderID, paymentID)
}
