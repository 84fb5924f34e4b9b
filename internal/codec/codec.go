// Package codec provides the fixed-width integer and byte encodings shared by
// the invite format and the wire protocol, plus the digest used to fingerprint
// keys and invites.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// MaxUint32 is the first value EncodeUint32BE rejects.
const MaxUint32 = int64(1) << 32

// EncodeUint32BE encodes n as 4 big-endian bytes.
// Returns an error when n is negative or does not fit in 32 bits.
func EncodeUint32BE(n int64) ([]byte, error) {
	if n < 0 || n >= MaxUint32 {
		return nil, fmt.Errorf("encode uint32: %d out of range [0, 2^32)", n)
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(n))
	return buf, nil
}

// DecodeUint32BE decodes 4 big-endian bytes as an unsigned 32-bit integer.
// Returns an error when b is not exactly 4 bytes.
func DecodeUint32BE(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("decode uint32: want 4 bytes, got %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

// Digest returns the lowercase hex SHA-256 of data. It is used both as a
// content identifier (post ids) and as an invite fingerprint.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestString is Digest over the bytes of s.
func DigestString(s string) string {
	return Digest([]byte(s))
}

// ToHex encodes b as a lowercase hex string.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex decodes a hex string back to bytes.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return b, nil
}
