package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// Hmac512 computes the hex HMAC-SHA512 of body under key.
func Hmac512(body, key []byte) string {
	hash := hmac.New(sha512.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}

// ValidateWebhook recomputes the HMAC-SHA512 of the raw webhook body with
// the secret key and compares it against the signature header. Comparison
// is constant-time and byte-exact; any mismatch rejects the event.
func (c *Client) ValidateWebhook(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Hmac512(body, []byte(c.secretKey))
	return hmac.Equal([]byte(signature), []byte(expected))
}
