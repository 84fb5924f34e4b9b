package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/psstapp/psst-server/internal/codec"
	"github.com/psstapp/psst-server/internal/identity"
)

func TestIssueAndParseInvite(t *testing.T) {
	kp, err := identity.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	expiry := time.Now().Add(7 * 24 * time.Hour).Truncate(time.Second)
	token, err := IssueInvite(kp.SecretKey, true, expiry)
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}
	if len(token) != InviteSize {
		t.Fatalf("token: got %d bytes, want %d", len(token), InviteSize)
	}

	inv, err := ParseInvite(token)
	if err != nil {
		t.Fatalf("ParseInvite: %v", err)
	}
	if !inv.Admin {
		t.Error("expected admin role")
	}
	if !inv.Expiry.Equal(expiry) {
		t.Errorf("expiry: got %v, want %v", inv.Expiry, expiry)
	}
	if !bytes.Equal(inv.IssuerPublicKey, kp.PublicKey) {
		t.Error("issuer public key does not match signer")
	}
	if len(inv.Nonce) != InviteNonceSize {
		t.Errorf("nonce: got %d bytes, want %d", len(inv.Nonce), InviteNonceSize)
	}

	// Signature covers exactly the first 37 bytes.
	if !identity.Verify(inv.Message(), inv.Signature, inv.IssuerPublicKey) {
		t.Error("signature does not verify over message")
	}
	if !bytes.Equal(inv.Message(), token[:InviteMessageSize]) {
		t.Error("Message() does not match token prefix")
	}
}

func TestIssueInvite_MemberRole(t *testing.T) {
	kp, _ := identity.GenerateKeyPair()
	token, err := IssueInvite(kp.SecretKey, false, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}
	inv, err := ParseInvite(token)
	if err != nil {
		t.Fatalf("ParseInvite: %v", err)
	}
	if inv.Admin {
		t.Error("expected member role")
	}
}

func TestIssueInvite_UniqueNonce(t *testing.T) {
	kp, _ := identity.GenerateKeyPair()
	expiry := time.Now().Add(time.Hour)

	a, err := IssueInvite(kp.SecretKey, false, expiry)
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}
	b, err := IssueInvite(kp.SecretKey, false, expiry)
	if err != nil {
		t.Fatalf("IssueInvite: %v", err)
	}
	if bytes.Equal(a[:InviteNonceSize], b[:InviteNonceSize]) {
		t.Error("two invites share a nonce")
	}

	pa, _ := ParseInvite(a)
	pb, _ := ParseInvite(b)
	if pa.Fingerprint() == pb.Fingerprint() {
		t.Error("two invites share a fingerprint")
	}
}

func TestParseInvite_BadLength(t *testing.T) {
	for _, n := range []int{0, 1, InviteSize - 1, InviteSize + 1} {
		if _, err := ParseInvite(make([]byte, n)); err == nil {
			t.Errorf("ParseInvite(len %d): expected error", n)
		}
	}
}

func TestInviteFingerprint_MatchesDigest(t *testing.T) {
	kp, _ := identity.GenerateKeyPair()
	token, _ := IssueInvite(kp.SecretKey, false, time.Now().Add(time.Hour))
	inv, _ := ParseInvite(token)
	if inv.Fingerprint() != codec.Digest(token) {
		t.Error("fingerprint is not the digest of the raw token")
	}
}

func TestInviteExpired(t *testing.T) {
	kp, _ := identity.GenerateKeyPair()
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token, _ := IssueInvite(kp.SecretKey, false, expiry)
	inv, _ := ParseInvite(token)

	if inv.Expired(expiry.Add(-time.Minute)) {
		t.Error("token expired before its expiry")
	}
	if !inv.Expired(expiry.Add(time.Minute)) {
		t.Error("token not expired after its expiry")
	}
}

func TestValidSpaceName(t *testing.T) {
	valid := []string{"Candy Kingdom", "a", "space-1", "ümlaut"}
	for _, name := range valid {
		if !ValidSpaceName(name) {
			t.Errorf("ValidSpaceName(%q) = false", name)
		}
	}

	invalid := []string{
		"with/slash", "with?query", "with#frag", "a:b", "x[y]", "a@b",
		"price$", "a&b", "a'b", "(a)", "a*b", "a+b", "a,b", "a;b", "a=b", "a!b",
		string(make([]byte, MaxNameLength+1)),
	}
	for _, name := range invalid {
		if ValidSpaceName(name) {
			t.Errorf("ValidSpaceName(%q) = true", name)
		}
	}
}
