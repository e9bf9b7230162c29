// internal/gateway/signature_test.go
package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignPaymentDeterministic(t *testing.T) {
	sig1 := SignPayment("secret", "order_abc", "pay_123")
	sig2 := SignPayment("secret", "order_abc", "pay_123")
	assert.Equal(t, sig1, sig2)
	assert.Len(t, sig1, 64) // hex-encoded SHA-256
}

func TestVerifyPaymentSignatureRoundTrip(t *testing.T) {
	secret := "test_key_secret"
	sig := SignPayment(secret, "order_Nxq7wXid", "pay_Jf2mLw01")

	assert.True(t, VerifyPaymentSignature(secret, "order_Nxq7wXid", "pay_Jf2mLw01", sig))
}

func TestVerifyPaymentSignatureRejectsMutations(t *testing.T) {
	secret := "test_key_secret"
	sig := SignPayment(secret, "order_Nxq7wXid", "pay_Jf2mLw01")

	// every single-character mutation of the signature must fail
	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		assert.False(t, VerifyPaymentSignature(secret, "order_Nxq7wXid", "pay_Jf2mLw01", string(mutated)),
			"mutation at index %d should fail", i)
	}
}

func TestVerifyPaymentSignatureRejectsWrongInputs(t *testing.T) {
	secret := "test_key_secret"
	sig := SignPayment(secret, "order_a", "pay_b")

	assert.False(t, VerifyPaymentSignature(secret, "order_x", "pay_b", sig))
	assert.False(t, VerifyPaymentSignature(secret, "order_a", "pay_x", sig))
	assert.False(t, VerifyPaymentSignature("other_secret", "order_a", "pay_b", sig))
	assert.False(t, VerifyPaymentSignature(secret, "order_a", "pay_b", ""))
}

func TestSeparatorIsUnambiguous(t *testing.T) {
	// "a|bc" vs "ab|c" must not collide
	assert.NotEqual(t,
		SignPayment("s", "a", "bc"),
		SignPayment("s", "ab", "c"),
	)
}
