package util

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway создает PaymentIntent через Stripe API
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway создает клиент Stripe; сетевых вызовов не выполняет
func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(req.Currency),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Payment{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

// MinorUnits переводит цену за единицу и количество в минимальные единицы валюты (центы)
func MinorUnits(unitPrice float64, quantity int) int64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Shift(2).
		Round(0).
		IntPart()
}
