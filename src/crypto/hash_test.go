package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSHA256(t *testing.T) {
	// sha256("abc")
	expected, _ := hex.DecodeString("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad")

	if h := SHA256([]byte("abc")); !bytes.Equal(h, expected) {
		t.Fatalf("SHA256 should be %X, not %X", expected, h)
	}
}

func TestDoubleSHA256(t *testing.T) {
	data := []byte("radix")

	h := DoubleSHA256(data)
	if !bytes.Equal(h, SHA256(SHA256(data))) {
		t.Fatalf("DoubleSHA256 mismatch")
	}
	if len(h) != 32 {
		t.Fatalf("hash should be 32 bytes, not %d", len(h))
	}
}

