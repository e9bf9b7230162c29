// internal/gateway/razorpay.go
package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/exetool/store-backend/internal/config"
)

// Order is the gateway order record returned to the client so it can open the
// payment widget. Amount is in the smallest currency unit.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// OrderCreator creates payment orders at the gateway. Checkout and fulfillment
// depend on this interface so tests can substitute a fake.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (*Order, error)
}

type razorpayClient struct {
	client *razorpay.Client
}

func NewClient(cfg config.GatewayConfig) OrderCreator {
	return &razorpayClient{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
	}
}

func (c *razorpayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}

	order := &Order{Currency: currency, Amount: amountMinor}
	if id, ok := body["id"].(string); ok {
		order.ID = id
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned order without id: %v", body)
	}
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if cur, ok := body["currency"].(string); ok {
		order.Currency = cur
	}

	return order, nil
}
