// Package identity implements detached ed25519 signatures over arbitrary byte
// messages. Key sizes follow the NaCl convention used by existing clients:
// 32-byte public keys, 64-byte secret keys (seed plus public half), 64-byte
// signatures.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Sizes of the raw key and signature material, in bytes.
const (
	PublicKeySize = ed25519.PublicKeySize
	SecretKeySize = ed25519.PrivateKeySize
	SignatureSize = ed25519.SignatureSize
)

// KeyPair holds a signing key pair. The server only ever handles public keys;
// secret keys appear here for invite issuance and tests.
type KeyPair struct {
	PublicKey []byte
	SecretKey []byte
}

// GenerateKeyPair creates a new random signing key pair.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key pair: %w", err)
	}
	return KeyPair{PublicKey: pub, SecretKey: priv}, nil
}

// PublicKeyFromSecret derives the public half of a 64-byte secret key.
func PublicKeyFromSecret(secretKey []byte) ([]byte, error) {
	if len(secretKey) != SecretKeySize {
		return nil, fmt.Errorf("secret key: want %d bytes, got %d", SecretKeySize, len(secretKey))
	}
	pub := ed25519.PrivateKey(secretKey).Public().(ed25519.PublicKey)
	return pub, nil
}

// Sign returns a 64-byte detached signature over message.
func Sign(message, secretKey []byte) ([]byte, error) {
	if len(secretKey) != SecretKeySize {
		return nil, fmt.Errorf("secret key: want %d bytes, got %d", SecretKeySize, len(secretKey))
	}
	return ed25519.Sign(ed25519.PrivateKey(secretKey), message), nil
}

// Verify reports whether signature is a valid detached signature over message
// by the holder of publicKey. Malformed keys or signatures simply fail
// verification.
func Verify(message, signature, publicKey []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
