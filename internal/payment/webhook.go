package payment

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Verifier checks the provider's RSA-SHA256 signature on webhook bodies.
// A nil public key disables verification entirely; that mode exists for
// local development only and is announced loudly at startup.
type Verifier struct {
	pub *rsa.PublicKey
	log *zap.Logger
}

func NewVerifier(pub *rsa.PublicKey, log *zap.Logger) *Verifier {
	if pub == nil {
		log.Warn("webhook signature verification is DISABLED: no public key configured; do not run this in production")
	}
	return &Verifier{pub: pub, log: log}
}

// NewVerifierFromFile loads a PEM-encoded PKIX public key. An empty path
// yields the insecure dev-mode verifier.
func NewVerifierFromFile(path string, log *zap.Logger) (*Verifier, error) {
	if path == "" {
		return NewVerifier(nil, log), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read webhook public key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("webhook public key %s: no PEM block", path)
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse webhook public key: %w", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("webhook public key %s: not an RSA key", path)
	}
	return NewVerifier(pub, log), nil
}

// Verify checks the base64 signature header against the raw body. Fails
// closed: any parsing or verification problem is ErrSignatureInvalid.
func (v *Verifier) Verify(body []byte, signature string) error {
	if v.pub == nil {
		return nil
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return ErrSignatureInvalid
	}
	digest := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(v.pub, crypto.SHA256, digest[:], sig); err != nil {
		return ErrSignatureInvalid
	}
	return nil
}
