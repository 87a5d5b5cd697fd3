// Package signature computes and checks the gateway's hex HMAC-SHA256 signatures.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Compute returns hex(HMAC-SHA256(secret, payload)).
func Compute(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// PaymentPayload is the string the gateway signs for a client-side checkout completion.
func PaymentPayload(gatewayOrderID, paymentID string) []byte {
	return []byte(gatewayOrderID + "|" + paymentID)
}

// Verify compares the expected signature with the presented one in constant time.
// The presented value is compared as given; a malformed or empty value simply fails.
func Verify(secret string, payload []byte, presented string) bool {
	expected := Compute(secret, payload)
	return hmac.Equal([]byte(expected), []byte(presented))
}
