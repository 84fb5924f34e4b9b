package codec

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeUint32BE_RoundTrip(t *testing.T) {
	values := []int64{0, 1, 255, 256, 65535, 1<<24 - 1, 1 << 24, 1<<32 - 1}
	for _, n := range values {
		b, err := EncodeUint32BE(n)
		if err != nil {
			t.Fatalf("EncodeUint32BE(%d): %v", n, err)
		}
		if len(b) != 4 {
			t.Fatalf("EncodeUint32BE(%d): got %d bytes, want 4", n, len(b))
		}
		got, err := DecodeUint32BE(b)
		if err != nil {
			t.Fatalf("DecodeUint32BE(%v): %v", b, err)
		}
		if int64(got) != n {
			t.Errorf("round trip %d: got %d", n, got)
		}
	}
}

func TestEncodeUint32BE_BigEndian(t *testing.T) {
	b, err := EncodeUint32BE(0x01020304)
	if err != nil {
		t.Fatalf("EncodeUint32BE: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3, 4}) {
		t.Errorf("got %v, want [1 2 3 4]", b)
	}
}

func TestEncodeUint32BE_OutOfRange(t *testing.T) {
	for _, n := range []int64{-1, 1 << 32, 1<<32 + 1} {
		if _, err := EncodeUint32BE(n); err == nil {
			t.Errorf("EncodeUint32BE(%d): expected error", n)
		}
	}
}

func TestDecodeUint32BE_BadLength(t *testing.T) {
	for _, b := range [][]byte{nil, {}, {1}, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		if _, err := DecodeUint32BE(b); err == nil {
			t.Errorf("DecodeUint32BE(len %d): expected error", len(b))
		}
	}
}

func TestDecodeUint32BE_NoSignExtension(t *testing.T) {
	// High bit set must decode as a large unsigned value, not a negative one.
	got, err := DecodeUint32BE([]byte{0xff, 0xff, 0xff, 0xff})
	if err != nil {
		t.Fatalf("DecodeUint32BE: %v", err)
	}
	if got != 0xffffffff {
		t.Errorf("got %d, want %d", got, uint32(0xffffffff))
	}
}

func TestDigest(t *testing.T) {
	// Known SHA-256 vector.
	if got := Digest([]byte("abc")); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("Digest(abc) = %s", got)
	}
	if Digest([]byte("abc")) != DigestString("abc") {
		t.Error("DigestString disagrees with Digest")
	}
	if Digest([]byte("abc")) == Digest([]byte("abd")) {
		t.Error("distinct inputs produced the same digest")
	}
}

func TestHexRoundTrip(t *testing.T) {
	inputs := [][]byte{{}, {0}, {0xde, 0xad, 0xbe, 0xef}, bytes.Repeat([]byte{1, 2, 3}, 33)}
	for _, in := range inputs {
		out, err := FromHex(ToHex(in))
		if err != nil {
			t.Fatalf("FromHex(ToHex(%v)): %v", in, err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("round trip %v: got %v", in, out)
		}
	}
}

func TestFromHex_Invalid(t *testing.T) {
	for _, s := range []string{"g", "0", "zz", "abc"} {
		if _, err := FromHex(s); err == nil {
			t.Errorf("FromHex(%q): expected error", s)
		}
	}
}
