package auth

import (
	"testing"

	"github.com/psstapp/psst-server/internal/codec"
	domainerrors "github.com/psstapp/psst-server/internal/errors"
	"github.com/psstapp/psst-server/internal/identity"
)

func signedRequest(t *testing.T, body []byte) (identity.KeyPair, string, string) {
	t.Helper()
	kp, err := identity.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	sig, err := identity.Sign(body, kp.SecretKey)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return kp, codec.ToHex(kp.PublicKey), codec.ToHex(sig)
}

func TestAuthenticate_Valid(t *testing.T) {
	body := []byte(`{"jsonrpc":"2.0","method":"getSpace","id":1}`)
	kp, pub, sig := signedRequest(t, body)

	id, err := Authenticate(body, pub, sig)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id == nil {
		t.Fatal("expected an identity")
	}
	if id.Hex() != codec.ToHex(kp.PublicKey) {
		t.Errorf("identity: got %s, want %s", id.Hex(), codec.ToHex(kp.PublicKey))
	}
}

func TestAuthenticate_Anonymous(t *testing.T) {
	id, err := Authenticate([]byte("anything"), "", "")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if id != nil {
		t.Errorf("expected nil identity, got %s", id.Hex())
	}
}

func TestAuthenticate_BodyMismatch(t *testing.T) {
	body := []byte(`{"method":"getSpace"}`)
	_, pub, sig := signedRequest(t, body)

	// Signature over a different body must fail closed, not fall through to
	// anonymous.
	id, err := Authenticate([]byte(`{"method":"deletePost"}`), pub, sig)
	if !domainerrors.Is(err, domainerrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if id != nil {
		t.Error("rejected request yielded an identity")
	}
}

func TestAuthenticate_PartialHeaders(t *testing.T) {
	body := []byte("payload")
	_, pub, sig := signedRequest(t, body)

	for _, tc := range []struct{ pub, sig string }{
		{pub, ""},
		{"", sig},
	} {
		id, err := Authenticate(body, tc.pub, tc.sig)
		if !domainerrors.Is(err, domainerrors.ErrInvalidSignature) {
			t.Errorf("pub=%q sig=%q: expected ErrInvalidSignature, got %v", tc.pub, tc.sig, err)
		}
		if id != nil {
			t.Error("partial headers yielded an identity")
		}
	}
}

func TestAuthenticate_MalformedHex(t *testing.T) {
	body := []byte("payload")
	_, pub, sig := signedRequest(t, body)

	cases := []struct{ pub, sig string }{
		{"not-hex", sig},
		{pub, "zzzz"},
		{"abc", sig}, // odd length
	}
	for _, tc := range cases {
		if _, err := Authenticate(body, tc.pub, tc.sig); !domainerrors.Is(err, domainerrors.ErrInvalidSignature) {
			t.Errorf("pub=%q sig=%q: expected ErrInvalidSignature, got %v", tc.pub, tc.sig, err)
		}
	}
}

func TestAuthenticate_WrongKey(t *testing.T) {
	body := []byte("payload")
	_, _, sig := signedRequest(t, body)
	other, _ := identity.GenerateKeyPair()

	_, err := Authenticate(body, codec.ToHex(other.PublicKey), sig)
	if !domainerrors.Is(err, domainerrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}
