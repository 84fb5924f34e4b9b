package service

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/psstapp/psst-server/internal/auth"
	"github.com/psstapp/psst-server/internal/domain"
	"github.com/psstapp/psst-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "psst.db"), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// testKeyPair derives a deterministic ed25519 key pair from a seed byte.
func testKeyPair(seed byte) (auth.Identity, ed25519.PrivateKey) {
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	return auth.Identity(priv.Public().(ed25519.PublicKey)), priv
}

// founderWithSpace creates a space and returns its founding admin.
func founderWithSpace(t *testing.T, svc *SpaceService, spaceName string, seed byte) (auth.Identity, ed25519.PrivateKey) {
	t.Helper()
	pub, priv := testKeyPair(seed)
	err := svc.CreateSpace(context.Background(), pub, CreateSpaceRequest{
		SpaceName: spaceName,
		Name:      "founder",
	})
	if err != nil {
		t.Fatalf("CreateSpace() error = %v", err)
	}
	return pub, priv
}

// joinedMember issues an invite from the given admin key and redeems it.
func joinedMember(t *testing.T, svc *SpaceService, adminPriv ed25519.PrivateKey, name string, seed byte) auth.Identity {
	t.Helper()
	token, err := domain.IssueInvite(adminPriv, false, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("IssueInvite() error = %v", err)
	}
	pub, _ := testKeyPair(seed)
	if err := svc.Join(context.Background(), pub, JoinRequest{Name: name, Invite: token}); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	return pub
}
