package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// ValidSignature reports whether header carries the hex HMAC-SHA-512 digest of
// body under secret. The digest must be computed over the exact bytes received;
// re-serializing the payload can reorder keys and change the byte sequence.
func ValidSignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}

// ValidSignature checks a webhook signature against the configured secret key.
func (c *Client) ValidSignature(body []byte, header string) bool {
	return ValidSignature(c.cfg.SecretKey, body, header)
}
