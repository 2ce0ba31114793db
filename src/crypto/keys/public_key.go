package keys

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/radixdlt/radix-go/src/common"
)

// CompressedPublicKeyLength is the size of a compressed secp256k1 public key.
const CompressedPublicKeyLength = 33

// PublicKey is the compressed serialization of a secp256k1 public key. It is a
// comparable value so it can be used directly as a map key.
type PublicKey [CompressedPublicKeyLength]byte

// ParsePublicKey parses a compressed or uncompressed secp256k1 public key and
// returns its compressed form.
func ParsePublicKey(pub []byte) (PublicKey, error) {
	var res PublicKey

	key, err := btcec.ParsePubKey(pub)
	if err != nil {
		return res, fmt.Errorf("parsing public key: %w", err)
	}

	copy(res[:], key.SerializeCompressed())

	return res, nil
}

// ParsePublicKeyHex parses the output of Hex. The 0X prefix is optional.
func ParsePublicKeyHex(s string) (PublicKey, error) {
	if !strings.HasPrefix(strings.ToUpper(s), "0X") {
		s = "0X" + s
	}

	pub, err := common.DecodeFromString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("parsing public key: %w", err)
	}

	return ParsePublicKey(pub)
}

// FromBTCEC returns the compressed form of a btcec public key.
func FromBTCEC(pub *btcec.PublicKey) PublicKey {
	var res PublicKey
	copy(res[:], pub.SerializeCompressed())
	return res
}

// GenerateKey creates a new random key pair and returns its public key. It is
// mostly used to fabricate addresses in tests and tools.
func GenerateKey() (PublicKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return PublicKey{}, err
	}
	return FromBTCEC(priv.PubKey()), nil
}

// Bytes returns a copy of the compressed key.
func (k PublicKey) Bytes() []byte {
	return append([]byte(nil), k[:]...)
}

// Equal reports whether both keys are the same.
func (k PublicKey) Equal(o PublicKey) bool {
	return bytes.Equal(k[:], o[:])
}

// Hex returns the uppercase hex representation of the compressed key.
func (k PublicKey) Hex() string {
	return common.EncodeToString(k[:])
}

func (k PublicKey) String() string {
	return k.Hex()
}
