package payment

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signBody(t *testing.T, key *rsa.PrivateKey, body []byte) string {
	t.Helper()
	digest := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(sig)
}

func TestVerifier_Roundtrip(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := NewVerifier(&key.PublicKey, zap.NewNop())

	body := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	require.NoError(t, v.Verify(body, signBody(t, key, body)))
}

func TestVerifier_RejectsTamperedBody(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := NewVerifier(&key.PublicKey, zap.NewNop())

	sig := signBody(t, key, []byte(`{"amount":10000}`))
	err = v.Verify([]byte(`{"amount":1}`), sig)
	assert.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestVerifier_RejectsGarbageSignature(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := NewVerifier(&key.PublicKey, zap.NewNop())

	body := []byte(`{}`)
	assert.ErrorIs(t, v.Verify(body, "not-base64!!"), ErrSignatureInvalid)
	assert.ErrorIs(t, v.Verify(body, base64.StdEncoding.EncodeToString([]byte("short"))), ErrSignatureInvalid)
	assert.ErrorIs(t, v.Verify(body, ""), ErrSignatureInvalid)
}

func TestVerifier_RejectsWrongKey(t *testing.T) {
	t.Parallel()

	signer, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := NewVerifier(&other.PublicKey, zap.NewNop())

	body := []byte(`{"id":"evt_1"}`)
	assert.ErrorIs(t, v.Verify(body, signBody(t, signer, body)), ErrSignatureInvalid)
}

func TestVerifier_DevModeAcceptsEverything(t *testing.T) {
	t.Parallel()

	v := NewVerifier(nil, zap.NewNop())
	assert.NoError(t, v.Verify([]byte(`{}`), ""))
	assert.NoError(t, v.Verify([]byte(`{}`), "whatever"))
}

func TestNewVerifierFromFile(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "webhook_pub.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	}), 0o600))

	v, err := NewVerifierFromFile(path, zap.NewNop())
	require.NoError(t, err)

	body := []byte(`{"id":"evt_1"}`)
	require.NoError(t, v.Verify(body, signBody(t, key, body)))
	assert.ErrorIs(t, v.Verify(append(body, '!'), signBody(t, key, body)), ErrSignatureInvalid)
}

func TestNewVerifierFromFile_EmptyPathIsDevMode(t *testing.T) {
	t.Parallel()

	v, err := NewVerifierFromFile("", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, v.Verify([]byte(`{}`), "anything"))
}

func TestNewVerifierFromFile_BadPEM(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a pem"), 0o600))

	_, err := NewVerifierFromFile(path, zap.NewNop())
	assert.Error(t, err)
}
