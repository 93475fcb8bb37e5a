// Package signature authenticates webhook bodies signed with a shared secret.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DefaultHeader is the header carrying the provider's signature.
const DefaultHeader = "x-cc-webhook-signature"

// Sign returns the lowercase hex HMAC-SHA256 of body keyed with secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether header is the signature of body under secret.
// An empty header or secret never verifies and no HMAC is computed.
func Verify(body []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}
	expected := Sign(body, secret)
	// hmac.Equal is constant time for equal lengths and false otherwise.
	return hmac.Equal([]byte(expected), []byte(header))
}
