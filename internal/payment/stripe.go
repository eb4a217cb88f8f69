package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// StripeGateway charges cards through Stripe PaymentIntents.
type StripeGateway struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeGateway(secretKey string, log *logger.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY not set")
		return nil, ErrStripeClientInitFailed
	}
	sc := client.New(secretKey, nil)
	if sc == nil {
		return nil, ErrStripeClientInitFailed
	}
	log.Info("STRIPE", "Stripe client initialized")
	return &StripeGateway{client: sc, log: log}, nil
}

func parseStringToInt64(s string) int64 {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return val
}

func (g *StripeGateway) Charge(ctx context.Context, details models.PaymentDetails, amount decimal.Decimal) (*models.PaymentReceipt, error) {
	pmParams := &stripe.PaymentMethodParams{
		Type: stripe.String("card"),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(details.CardNumber),
			ExpMonth: stripe.Int64(parseStringToInt64(details.ExpMonth)),
			ExpYear:  stripe.Int64(parseStringToInt64(details.ExpYear)),
			CVC:      stripe.String(details.CVC),
		},
	}
	pmParams.Context = ctx

	pm, err := g.client.PaymentMethods.New(pmParams)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Card validation failed: %v", err))
		return nil, fmt.Errorf("%w: %v", tickets.ErrPaymentDeclined, err)
	}

	// Stripe amounts are integer minor units.
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	piParams := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(cents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(pm.ID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	piParams.Context = ctx

	pi, err := g.client.PaymentIntents.New(piParams)
	if err != nil {
		g.log.Error("STRIPE", fmt.Sprintf("Payment intent failed: %v", err))
		return nil, fmt.Errorf("%w: %v", tickets.ErrPaymentDeclined, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: payment intent status %s", tickets.ErrPaymentDeclined, pi.Status)
	}

	g.log.LogPayment("CHARGE", fmt.Sprintf("captured %s USD via Stripe (intent %s)", amount, pi.ID))
	return &models.PaymentReceipt{
		TransactionID: pi.ID,
		Amount:        amount,
		Currency:      "USD",
		Gateway:       "stripe",
		Last4:         details.Last4(),
	}, nil
}
