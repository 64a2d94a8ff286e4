// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	itemIDPrefix        = "item"
	transactionIDPrefix = "txn"

	// 16 random bytes make collisions negligible; the ledger's duplicate
	// check is only a defensive backstop on top of this.
	idEntropyBytes = 16
)

func generatePrefixedID(prefix string) (string, error) {
	buf := make([]byte, idEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(buf)), nil
}

// GenerateItemID returns a fresh item identifier, e.g. "item_a1b2...".
func GenerateItemID() (string, error) {
	return generatePrefixedID(itemIDPrefix)
}

// GenerateTransactionID returns a fresh transaction identifier, e.g. "txn_a1b2...".
func GenerateTransactionID() (string, error) {
	return generatePrefixedID(transactionIDPrefix)
}

func GenerateRandomHex(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}
