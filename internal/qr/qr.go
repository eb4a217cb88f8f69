package qr

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// credentialBytes is the entropy of a redemption credential. The credential
// is the only thing a gate scanner ever sees; it must not be derivable from
// the token id.
const credentialBytes = 32

// NewCredential returns a fresh redemption credential. Generated exactly once
// per ticket, before the record is first persisted.
func NewCredential() (string, error) {
	buf := make([]byte, credentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate credential: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RenderPNG encodes a credential as a scannable QR image for delivery to the
// ticket holder.
func RenderPNG(credential string, size int) ([]byte, error) {
	if credential == "" {
		return nil, fmt.Errorf("credential is empty")
	}
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(credential, qrcode.Medium, size)
}
