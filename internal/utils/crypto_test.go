// internal/utils/crypto_test.go
package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	purchaseKeyPattern = regexp.MustCompile(`^KEY-[0-9A-F]{8}-[0-9A-F]{8}$`)
	adminKeyPattern    = regexp.MustCompile(`^EXE-[A-Z0-9]{4}-[A-Z0-9]{8}$`)
)

func TestGeneratePurchaseLicenseKeyFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		key, err := GeneratePurchaseLicenseKey()
		require.NoError(t, err)
		assert.Regexp(t, purchaseKeyPattern, key)
	}
}

func TestGenerateAdminLicenseKeyFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		key, err := GenerateAdminLicenseKey()
		require.NoError(t, err)
		assert.Regexp(t, adminKeyPattern, key)
	}
}

func TestPurchaseLicenseKeysDoNotRepeat(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		key, err := GeneratePurchaseLicenseKey()
		require.NoError(t, err)
		_, dup := seen[key]
		require.False(t, dup, "duplicate key %s after %d generations", key, i)
		seen[key] = struct{}{}
	}
}

func TestGenerateRandomStringLength(t *testing.T) {
	s, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]+$`), s)
}
