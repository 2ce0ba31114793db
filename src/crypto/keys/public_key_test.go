package keys

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
)

func TestParsePublicKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatal(err)
	}

	compressed, err := ParsePublicKey(priv.PubKey().SerializeCompressed())
	if err != nil {
		t.Fatal(err)
	}

	uncompressed, err := ParsePublicKey(priv.PubKey().SerializeUncompressed())
	if err != nil {
		t.Fatal(err)
	}

	if !compressed.Equal(uncompressed) {
		t.Fatalf("both serializations should yield the same key")
	}

	if compressed != FromBTCEC(priv.PubKey()) {
		t.Fatalf("FromBTCEC mismatch")
	}
}

func TestParsePublicKeyError(t *testing.T) {
	if _, err := ParsePublicKey([]byte{0x02, 0x01}); err == nil {
		t.Fatalf("a truncated key should not parse")
	}
}

func TestGenerateKey(t *testing.T) {
	k1, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	k2, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	if k1.Equal(k2) {
		t.Fatalf("two generated keys should differ")
	}
	if len(k1.Bytes()) != CompressedPublicKeyLength {
		t.Fatalf("key should be %d bytes", CompressedPublicKeyLength)
	}
}

func TestParsePublicKeyHex(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ParsePublicKeyHex(key.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if parsed != key {
		t.Fatalf("expected %s, got %s", key, parsed)
	}

	parsed, err = ParsePublicKeyHex(key.Hex()[2:])
	if err != nil || parsed != key {
		t.Fatalf("the prefix should be optional: %v", err)
	}

	if _, err := ParsePublicKeyHex("0Xzz"); err == nil {
		t.Fatal("invalid hex should not parse")
	}
}
