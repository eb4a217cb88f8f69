package metadata

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nft-ticketing/internal/models"

	"github.com/shopspring/decimal"
)

// PublishResult points at a published metadata document. Issuance treats a
// publish failure as fatal: no ticket exists without its metadata.
type PublishResult struct {
	IPFSHash   string `json:"ipfs_hash"`
	URI        string `json:"uri"`
	GatewayURL string `json:"gateway_url"`
}

type Store interface {
	Publish(ctx context.Context, doc models.TicketMetadata, name string) (*PublishResult, error)
}

// BuildTicketMetadata assembles the ERC-721 document for one ticket.
func BuildTicketMetadata(event *models.Event, ticketNumber int, originalPrice decimal.Decimal) models.TicketMetadata {
	image := event.ImageURL
	if image == "" {
		image = "ipfs://QmDefaultTicketImage"
	}
	return models.TicketMetadata{
		Name:        fmt.Sprintf("%s - Ticket #%d", event.Name, ticketNumber),
		Description: fmt.Sprintf("Official NFT ticket for %s on %s", event.Name, event.EventDate.Format(time.RFC3339)),
		Image:       image,
		Attributes: []models.MetadataAttribute{
			{TraitType: "Event Name", Value: event.Name},
			{TraitType: "Event Date", Value: event.EventDate.Format(time.RFC3339)},
			{TraitType: "Venue", Value: event.Venue},
			{TraitType: "Original Price", Value: originalPrice.String()},
		},
	}
}

// MockStore returns pseudo-CIDs without touching the network. Default in
// development; the pin is fabricated but the URI shape is real.
type MockStore struct {
	GatewayURL string
}

func (s *MockStore) Publish(_ context.Context, _ models.TicketMetadata, _ string) (*PublishResult, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate mock CID: %w", err)
	}
	hash := "Qm" + hex.EncodeToString(buf)
	return &PublishResult{
		IPFSHash:   hash,
		URI:        "ipfs://" + hash,
		GatewayURL: fmt.Sprintf("%s/%s", s.GatewayURL, hash),
	}, nil
}

// PinataStore pins metadata through the Pinata HTTP API.
type PinataStore struct {
	BaseURL    string
	JWT        string
	GatewayURL string
	HTTPClient *http.Client
}

func NewPinataStore(baseURL, jwt, gatewayURL string) *PinataStore {
	return &PinataStore{
		BaseURL:    baseURL,
		JWT:        jwt,
		GatewayURL: gatewayURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *PinataStore) Publish(ctx context.Context, doc models.TicketMetadata, name string) (*PublishResult, error) {
	body, err := json.Marshal(map[string]any{
		"pinataContent": doc,
		"pinataMetadata": map[string]string{
			"name": name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/pinning/pinJSONToIPFS", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.JWT)

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata publish failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("metadata publish failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata publish failed: status %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("malformed pin response: %w", err)
	}
	return &PublishResult{
		IPFSHash:   out.IpfsHash,
		URI:        "ipfs://" + out.IpfsHash,
		GatewayURL: fmt.Sprintf("%s/%s", s.GatewayURL, out.IpfsHash),
	}, nil
}
