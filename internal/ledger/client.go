package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/monitoring"
	"nft-ticketing/internal/tickets"

	"github.com/shopspring/decimal"
)

// Client talks to the chain gateway, the service that holds the signing keys
// and submits contract transactions. Every call blocks until the gateway has
// a confirmed receipt; an error here must never be translated into a local
// state change by callers.
type Client struct {
	BaseURL    string
	Contract   string
	HTTPClient *http.Client
	Logger     *logger.Logger
}

func NewClient(baseURL, contract string, log *logger.Logger) *Client {
	return &Client{
		BaseURL:  baseURL,
		Contract: contract,
		// Mined-transaction latency, not normal HTTP latency.
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
		Logger:     log,
	}
}

// MintReceipt is the confirmed result of a mint transaction.
type MintReceipt struct {
	TokenID     int64  `json:"token_id"`
	TxRef       string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
}

// TxReceipt is the confirmed result of any other state-changing transaction.
type TxReceipt struct {
	TxRef       string `json:"tx_hash"`
	BlockNumber int64  `json:"block_number"`
}

// Listing mirrors the contract's listing view. Price here, not the local
// cache, is the authority at purchase time.
type Listing struct {
	Price    decimal.Decimal `json:"price"`
	Seller   string          `json:"seller"`
	IsActive bool            `json:"is_active"`
}

// TicketView is the contract's on-chain state for one token.
type TicketView struct {
	EventID        int64           `json:"event_id"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	MaxResalePrice decimal.Decimal `json:"max_resale_price"`
	RoyaltyPercent int64           `json:"royalty_percentage"`
	OriginalOwner  string          `json:"original_owner"`
	CurrentOwner   string          `json:"current_owner"`
	IsUsed         bool            `json:"is_used"`
	Listing        Listing         `json:"listing"`
}

type mintRequest struct {
	Contract       string          `json:"contract"`
	To             string          `json:"to"`
	EventID        int64           `json:"event_id"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	MaxResalePrice decimal.Decimal `json:"max_resale_price"`
	RoyaltyPercent int64           `json:"royalty_percentage"`
	TokenURI       string          `json:"token_uri"`
}

// Mint submits a mint transaction bound to the buyer and waits for the
// confirmed receipt carrying the contract-assigned token id.
func (c *Client) Mint(ctx context.Context, owner string, eventID int64, price, maxResalePrice decimal.Decimal, royaltyPercent int64, tokenURI string) (*MintReceipt, error) {
	if !models.ValidAddress(owner) {
		return nil, fmt.Errorf("%w: invalid mint recipient", tickets.ErrValidation)
	}

	var receipt MintReceipt
	err := c.post(ctx, "/contract/mint", mintRequest{
		Contract:       c.Contract,
		To:             owner,
		EventID:        eventID,
		OriginalPrice:  price,
		MaxResalePrice: maxResalePrice,
		RoyaltyPercent: royaltyPercent,
		TokenURI:       tokenURI,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	c.Logger.LogLedger("MINT", fmt.Sprintf("token %d minted to %s (tx %s)", receipt.TokenID, owner, receipt.TxRef))
	return &receipt, nil
}

func (c *Client) ListForSale(ctx context.Context, tokenID int64, price decimal.Decimal) (*TxReceipt, error) {
	var receipt TxReceipt
	err := c.post(ctx, fmt.Sprintf("/contract/tokens/%d/list", tokenID), map[string]any{
		"contract": c.Contract,
		"price":    price,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) Unlist(ctx context.Context, tokenID int64) (*TxReceipt, error) {
	var receipt TxReceipt
	err := c.post(ctx, fmt.Sprintf("/contract/tokens/%d/unlist", tokenID), map[string]any{
		"contract": c.Contract,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) BuyListed(ctx context.Context, tokenID int64, buyer string) (*TxReceipt, error) {
	var receipt TxReceipt
	err := c.post(ctx, fmt.Sprintf("/contract/tokens/%d/buy", tokenID), map[string]any{
		"contract": c.Contract,
		"buyer":    buyer,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) MarkUsed(ctx context.Context, tokenID int64) (*TxReceipt, error) {
	var receipt TxReceipt
	err := c.post(ctx, fmt.Sprintf("/contract/tokens/%d/use", tokenID), map[string]any{
		"contract": c.Contract,
	}, &receipt)
	if err != nil {
		return nil, err
	}
	c.Logger.LogLedger("USE", fmt.Sprintf("token %d marked used (tx %s)", tokenID, receipt.TxRef))
	return &receipt, nil
}

func (c *Client) OwnerOf(ctx context.Context, tokenID int64) (string, error) {
	var out struct {
		Owner string `json:"owner"`
	}
	if err := c.get(ctx, fmt.Sprintf("/contract/tokens/%d/owner", tokenID), &out); err != nil {
		return "", err
	}
	return models.NormalizeAddress(out.Owner), nil
}

func (c *Client) IsValid(ctx context.Context, tokenID int64) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.get(ctx, fmt.Sprintf("/contract/tokens/%d/valid", tokenID), &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (c *Client) GetListing(ctx context.Context, tokenID int64) (*Listing, error) {
	var out Listing
	if err := c.get(ctx, fmt.Sprintf("/contract/tokens/%d/listing", tokenID), &out); err != nil {
		return nil, err
	}
	out.Seller = models.NormalizeAddress(out.Seller)
	return &out, nil
}

func (c *Client) GetTicket(ctx context.Context, tokenID int64) (*TicketView, error) {
	var out TicketView
	if err := c.get(ctx, fmt.Sprintf("/contract/tokens/%d", tokenID), &out); err != nil {
		return nil, err
	}
	out.CurrentOwner = models.NormalizeAddress(out.CurrentOwner)
	out.OriginalOwner = models.NormalizeAddress(out.OriginalOwner)
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", tickets.ErrLedger, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", tickets.ErrLedger, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", tickets.ErrLedger, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	monitoring.ObserveLedgerCall(req.URL.Path, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: %v", tickets.ErrLedger, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", tickets.ErrLedger, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		// Surface the gateway's reason verbatim for operator diagnosis.
		var gw struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &gw)
		reason := gw.Error
		if reason == "" {
			reason = gw.Message
		}
		if reason == "" {
			reason = string(raw)
		}
		return fmt.Errorf("%w: gateway status %d: %s", tickets.ErrLedger, resp.StatusCode, reason)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: malformed gateway response: %v", tickets.ErrLedger, err)
		}
	}
	return nil
}
