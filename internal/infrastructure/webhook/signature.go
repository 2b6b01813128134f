package webhook

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// SignatureHeader carries the payment webhook signature
const SignatureHeader = "X-Webhook-Signature"

// Sign encodes "id:amount:reference". This is a reversible placeholder, not a MAC:
// receivers can check integrity against the payload but it proves nothing about origin.
func Sign(parts ...string) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(parts, ":")))
}

// Verify reports whether signature matches the given parts
func Verify(signature string, parts ...string) bool {
	expected := Sign(parts...)
	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}
