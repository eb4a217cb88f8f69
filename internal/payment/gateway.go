package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"
	"nft-ticketing/internal/utils"

	"github.com/shopspring/decimal"
)

// Gateway captures a charge for a ticket sale. A single blocking call: the
// issuance flow owns no retry policy, because retrying an unconfirmed charge
// could double-bill the buyer.
type Gateway interface {
	Charge(ctx context.Context, details models.PaymentDetails, amount decimal.Decimal) (*models.PaymentReceipt, error)
}

// declineCard is the well-known test number that always declines.
const declineCard = "4000000000000002"

// SimulatedGateway approves everything except the decline test card. Used in
// development and by the test suite so issuance semantics stay deterministic.
type SimulatedGateway struct {
	Logger *logger.Logger
	// Latency imitates a real authorization round trip.
	Latency time.Duration
}

func NewSimulatedGateway(log *logger.Logger) *SimulatedGateway {
	return &SimulatedGateway{Logger: log, Latency: 50 * time.Millisecond}
}

func (g *SimulatedGateway) Charge(ctx context.Context, details models.PaymentDetails, amount decimal.Decimal) (*models.PaymentReceipt, error) {
	card := strings.ReplaceAll(details.CardNumber, " ", "")
	if len(card) < 12 {
		return nil, fmt.Errorf("%w: card number is required", tickets.ErrValidation)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: charge amount cannot be negative", tickets.ErrValidation)
	}

	select {
	case <-time.After(g.Latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if card == declineCard {
		return nil, fmt.Errorf("%w: card declined by issuer", tickets.ErrPaymentDeclined)
	}

	receipt := &models.PaymentReceipt{
		TransactionID: utils.GenerateTransactionID(),
		Amount:        amount,
		Currency:      "USD",
		Gateway:       "simulated",
		Last4:         details.Last4(),
	}
	if g.Logger != nil {
		g.Logger.LogPayment("CHARGE", fmt.Sprintf("captured %s USD (txn %s)", amount, receipt.TransactionID))
	}
	return receipt, nil
}
