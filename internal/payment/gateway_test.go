package payment

import (
	"context"
	"testing"

	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *SimulatedGateway {
	gw := NewSimulatedGateway(nil)
	gw.Latency = 0
	return gw
}

func TestChargeApproved(t *testing.T) {
	gw := testGateway()

	receipt, err := gw.Charge(context.Background(), models.PaymentDetails{
		CardNumber: "4242424242424242",
	}, decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TransactionID)
	assert.True(t, receipt.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "USD", receipt.Currency)
	assert.Equal(t, "4242", receipt.Last4)
}

func TestChargeDeclineCard(t *testing.T) {
	gw := testGateway()

	receipt, err := gw.Charge(context.Background(), models.PaymentDetails{
		CardNumber: "4000000000000002",
	}, decimal.NewFromInt(100))

	assert.ErrorIs(t, err, tickets.ErrPaymentDeclined)
	assert.Nil(t, receipt)
}

func TestChargeValidation(t *testing.T) {
	gw := testGateway()

	_, err := gw.Charge(context.Background(), models.PaymentDetails{CardNumber: "1234"}, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, tickets.ErrValidation)

	_, err = gw.Charge(context.Background(), models.PaymentDetails{
		CardNumber: "4242424242424242",
	}, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, tickets.ErrValidation)
}

func TestChargeIgnoresSpacesInCardNumber(t *testing.T) {
	gw := testGateway()

	receipt, err := gw.Charge(context.Background(), models.PaymentDetails{
		CardNumber: "4242 4242 4242 4242",
	}, decimal.NewFromInt(50))

	require.NoError(t, err)
	assert.NotNil(t, receipt)
}

func TestChargeCancelledContext(t *testing.T) {
	gw := NewSimulatedGateway(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Charge(ctx, models.PaymentDetails{CardNumber: "4242424242424242"}, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, context.Canceled)
}
