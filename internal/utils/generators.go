package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GenerateTransactionID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("txn_%d_%09d", timestamp, randomNum.Int64())
}

// GeneratePinName builds a stable name for a pinned metadata document.
func GeneratePinName(eventID int64, ticketNumber int) string {
	return fmt.Sprintf("ticket-%d-%d", eventID, ticketNumber)
}
