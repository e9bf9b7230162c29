// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GeneratePurchaseLicenseKey produces a KEY-XXXXXXXX-XXXXXXXX key: two
// independently generated 4-byte segments, hex-encoded and uppercased. 64 bits
// of entropy per key; uniqueness is probabilistic, no pre-insert check is made.
func GeneratePurchaseLicenseKey() (string, error) {
	first, err := randomHexSegment(4)
	if err != nil {
		return "", err
	}
	second, err := randomHexSegment(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("KEY-%s-%s", first, second), nil
}

// GenerateAdminLicenseKey produces an EXE-XXXX-XXXXXXXX key for manually issued
// licenses, distinct from the automatic purchase-flow format.
func GenerateAdminLicenseKey() (string, error) {
	first, err := GenerateRandomString(4)
	if err != nil {
		return "", err
	}
	second, err := GenerateRandomString(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("EXE-%s-%s", first, second), nil
}

func randomHexSegment(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// GenerateRandomString returns length uppercase alphanumeric characters from a
// cryptographically secure source.
func GenerateRandomString(length int) (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}
