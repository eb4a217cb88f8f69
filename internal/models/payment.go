package models

import "github.com/shopspring/decimal"

// PaymentDetails is what a buyer submits alongside a purchase request. The
// gateway decides what it needs; card fields are optional for non-card flows.
type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
	ExpMonth   string `json:"exp_month,omitempty"`
	ExpYear    string `json:"exp_year,omitempty"`
	CVC        string `json:"cvc,omitempty"`
	Method     string `json:"method,omitempty"` // credit_card, crypto
}

// Last4 returns the trailing card digits for receipts and logs.
func (p PaymentDetails) Last4() string {
	if len(p.CardNumber) < 4 {
		return ""
	}
	return p.CardNumber[len(p.CardNumber)-4:]
}

// PaymentReceipt is the gateway's confirmation of a captured charge.
type PaymentReceipt struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Gateway       string          `json:"gateway"`
	Last4         string          `json:"last4,omitempty"`
}
