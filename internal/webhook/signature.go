package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/goliatone/go-content-sync/content"
)

const signaturePrefix = "sha256="

// SignBody computes the hex HMAC-SHA256 signature header value for body.
// Exposed so tests and senders produce signatures the verifier accepts.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the X-Hub-Signature-256 header against the raw
// request body. The comparison is constant time; any failure reason is
// collapsed into an AuthError so callers can't distinguish a missing header
// from a wrong secret.
func VerifySignature(secret string, body []byte, header string) error {
	if secret == "" {
		return content.ErrSecretRequired
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return &content.AuthError{Reason: "missing or malformed signature header"}
	}

	want, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return &content.AuthError{Reason: "missing or malformed signature header"}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), want) {
		return &content.AuthError{Reason: "signature mismatch"}
	}
	return nil
}
