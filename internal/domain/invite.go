package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/psstapp/psst-server/internal/codec"
	"github.com/psstapp/psst-server/internal/identity"
)

// Invite token wire layout, 133 raw bytes (hex-encoded in transit):
//
//	nonce[32] role[1] expiry[4] signature[64] issuerPublicKey[32]
//
// The signature covers the first 37 bytes (nonce, role, expiry). Integers are
// big-endian; expiry is Unix seconds. Tokens are never persisted, only their
// digest once redeemed.
const (
	InviteNonceSize   = 32
	InviteMessageSize = 37
	InviteSize        = 133

	inviteRoleOffset      = InviteNonceSize
	inviteExpiryOffset    = InviteNonceSize + 1
	inviteSignatureOffset = InviteMessageSize
	inviteIssuerOffset    = InviteMessageSize + identity.SignatureSize
)

// Invite is a parsed invite token. Validity (issuer is an admin, signature
// verifies, not expired, not yet redeemed) is derived against the ledger by
// the space service, never stored.
type Invite struct {
	Nonce           []byte
	Admin           bool
	Expiry          time.Time
	Signature       []byte
	IssuerPublicKey []byte

	raw []byte
}

// IssueInvite builds and signs a new invite token with the given role and
// expiry. The nonce is 32 bytes from the system CSPRNG, so every issued token
// has a distinct fingerprint.
func IssueInvite(secretKey []byte, admin bool, expiry time.Time) ([]byte, error) {
	issuer, err := identity.PublicKeyFromSecret(secretKey)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, InviteNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("invite nonce: %w", err)
	}

	expiryBytes, err := codec.EncodeUint32BE(expiry.Unix())
	if err != nil {
		return nil, fmt.Errorf("invite expiry: %w", err)
	}

	roleByte := byte(0)
	if admin {
		roleByte = 1
	}

	message := make([]byte, 0, InviteSize)
	message = append(message, nonce...)
	message = append(message, roleByte)
	message = append(message, expiryBytes...)

	signature, err := identity.Sign(message, secretKey)
	if err != nil {
		return nil, err
	}

	token := append(message, signature...)
	token = append(token, issuer...)
	return token, nil
}

// ParseInvite splits a 133-byte token into its fields. It performs no
// verification beyond the length check.
func ParseInvite(token []byte) (*Invite, error) {
	if len(token) != InviteSize {
		return nil, fmt.Errorf("invite: want %d bytes, got %d", InviteSize, len(token))
	}

	expirySecs, err := codec.DecodeUint32BE(token[inviteExpiryOffset:inviteSignatureOffset])
	if err != nil {
		return nil, err
	}

	return &Invite{
		Nonce:           token[:InviteNonceSize],
		Admin:           token[inviteRoleOffset] == 1,
		Expiry:          time.Unix(int64(expirySecs), 0),
		Signature:       token[inviteSignatureOffset:inviteIssuerOffset],
		IssuerPublicKey: token[inviteIssuerOffset:],
		raw:             token,
	}, nil
}

// Message returns the signed portion of the token (nonce, role, expiry).
func (i *Invite) Message() []byte {
	return i.raw[:InviteMessageSize]
}

// Fingerprint returns the digest recorded in the ledger when the token is
// redeemed. Its uniqueness constraint is what makes redemption single-use.
func (i *Invite) Fingerprint() string {
	return codec.Digest(i.raw)
}

// Expired reports whether the token's expiry has passed at the given time.
func (i *Invite) Expired(now time.Time) bool {
	return i.Expiry.Before(now)
}
