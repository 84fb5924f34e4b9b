// Package auth recovers a caller's identity from a detached signature over
// the raw request body. Identity is not authorization: whether the recovered
// key belongs to a space is the services' concern.
package auth

import (
	"github.com/psstapp/psst-server/internal/codec"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/identity"
)

// Header names carrying the caller's key material, both hex-encoded.
const (
	PublicKeyHeader = "psst-public-key"
	SignatureHeader = "psst-signature"
)

// Identity is an authenticated caller: the public key whose signature
// verified over the request body. Nil for anonymous requests.
type Identity []byte

// Hex returns the lowercase hex form used as the ledger key.
func (id Identity) Hex() string {
	return codec.ToHex(id)
}

// Authenticate verifies the signature headers against the exact raw body
// bytes.
//
// Neither header present: the request proceeds anonymously (nil identity);
// operations that need a caller reject it themselves. Both present: the
// signature must verify or the request is rejected outright, never downgraded
// to anonymous. One header without the other is malformed and rejected.
func Authenticate(body []byte, publicKeyHex, signatureHex string) (Identity, error) {
	if publicKeyHex == "" && signatureHex == "" {
		return nil, nil
	}
	if publicKeyHex == "" || signatureHex == "" {
		return nil, domainerrors.InvalidSignature("incomplete signature headers")
	}

	publicKey, err := codec.FromHex(publicKeyHex)
	if err != nil {
		return nil, domainerrors.ErrInvalidSignature.WithCause(err)
	}
	signature, err := codec.FromHex(signatureHex)
	if err != nil {
		return nil, domainerrors.ErrInvalidSignature.WithCause(err)
	}

	if !identity.Verify(body, signature, publicKey) {
		return nil, domainerrors.ErrInvalidSignature
	}
	return Identity(publicKey), nil
}
