package metadata_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nft-ticketing/internal/metadata"
	"nft-ticketing/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTicketMetadata(t *testing.T) {
	event := &models.Event{
		EventID:   7,
		Name:      "Summer Jam",
		EventDate: time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC),
		Venue:     "Main Arena",
		ImageURL:  "ipfs://QmPoster",
	}

	doc := metadata.BuildTicketMetadata(event, 61, decimal.NewFromInt(100))

	assert.Equal(t, "Summer Jam - Ticket #61", doc.Name)
	assert.Equal(t, "ipfs://QmPoster", doc.Image)
	require.Len(t, doc.Attributes, 4)
	assert.Equal(t, "Event Name", doc.Attributes[0].TraitType)
	assert.Equal(t, "Summer Jam", doc.Attributes[0].Value)
	assert.Equal(t, "Original Price", doc.Attributes[3].TraitType)
	assert.Equal(t, "100", doc.Attributes[3].Value)
}

func TestBuildTicketMetadataDefaultImage(t *testing.T) {
	doc := metadata.BuildTicketMetadata(&models.Event{Name: "Summer Jam"}, 1, decimal.NewFromInt(100))
	assert.NotEmpty(t, doc.Image)
}

func TestMockStorePublish(t *testing.T) {
	store := &metadata.MockStore{GatewayURL: "https://gateway.test/ipfs"}

	result, err := store.Publish(context.Background(), models.TicketMetadata{Name: "doc"}, "ticket-7-61")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.IPFSHash, "Qm"))
	assert.Equal(t, "ipfs://"+result.IPFSHash, result.URI)
	assert.Equal(t, "https://gateway.test/ipfs/"+result.IPFSHash, result.GatewayURL)
}

func TestPinataStorePublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer test-jwt", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "pinataContent")

		json.NewEncoder(w).Encode(map[string]string{"IpfsHash": "QmPinned"})
	}))
	defer server.Close()

	store := metadata.NewPinataStore(server.URL, "test-jwt", "https://gateway.test/ipfs")

	result, err := store.Publish(context.Background(), models.TicketMetadata{Name: "doc"}, "ticket-7-61")

	require.NoError(t, err)
	assert.Equal(t, "QmPinned", result.IPFSHash)
	assert.Equal(t, "ipfs://QmPinned", result.URI)
}

func TestPinataStorePublishFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store := metadata.NewPinataStore(server.URL, "bad-jwt", "https://gateway.test/ipfs")

	_, err := store.Publish(context.Background(), models.TicketMetadata{Name: "doc"}, "ticket-7-61")
	assert.Error(t, err)
}
