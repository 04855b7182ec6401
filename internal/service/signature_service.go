package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignatureService implements ports.SignatureService using
// HMAC-SHA256 over the raw webhook payload. A mismatch does not fail
// the webhook; it feeds the risk engine as an auth-mismatch signal.
type HMACSignatureService struct {
	secret []byte
}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService(secret string) *HMACSignatureService {
	return &HMACSignatureService{secret: []byte(secret)}
}

// Sign computes the lowercase hex HMAC-SHA256 of payload.
func (s *HMACSignatureService) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against HMAC-SHA256(secret, payload) in
// constant time.
func (s *HMACSignatureService) Verify(payload []byte, signature string) bool {
	expected := s.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
