package atom

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/radixdlt/radix-go/src/crypto"
	"github.com/radixdlt/radix-go/src/crypto/keys"
	"github.com/ugorji/go/codec"
)

const (
	checksumLength = 4
	addressLength  = 1 + keys.CompressedPublicKeyLength + checksumLength
)

var (
	// ErrAddressLength is returned when a decoded address has the wrong size.
	ErrAddressLength = errors.New("invalid address length")
	// ErrAddressChecksum is returned when an address checksum does not match.
	ErrAddressChecksum = errors.New("invalid address checksum")
)

// Address identifies an account in a universe. It is the universe magic byte
// followed by a compressed public key, rendered in base58 with a 4 byte
// checksum. Address is comparable and can be used as a map key.
type Address struct {
	magic byte
	key   keys.PublicKey
}

// NewAddress creates the address of key in the universe with the given magic
// byte.
func NewAddress(magic byte, key keys.PublicKey) Address {
	return Address{
		magic: magic,
		key:   key,
	}
}

// ParseAddress decodes a base58 address and verifies its checksum and public
// key.
func ParseAddress(s string) (Address, error) {
	raw := base58.Decode(s)
	if len(raw) != addressLength {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressLength, s)
	}

	body := raw[:addressLength-checksumLength]
	check := crypto.DoubleSHA256(body)[:checksumLength]
	if !bytes.Equal(check, raw[addressLength-checksumLength:]) {
		return Address{}, fmt.Errorf("%w: %q", ErrAddressChecksum, s)
	}

	key, err := keys.ParsePublicKey(body[1:])
	if err != nil {
		return Address{}, err
	}

	return NewAddress(body[0], key), nil
}

// MustParseAddress is like ParseAddress but panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Magic returns the universe magic byte.
func (a Address) Magic() byte {
	return a.magic
}

// PublicKey ...
func (a Address) PublicKey() keys.PublicKey {
	return a.key
}

// IsZero reports whether a is the zero Address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// UID is the EUID of the address, derived from its public key only, so that
// the same key maps to the same shard in every universe.
func (a Address) UID() EUID {
	return NewEUID(crypto.DoubleSHA256(a.key[:]))
}

// Shard ...
func (a Address) Shard() int64 {
	return a.UID().Shard()
}

// Bytes returns the raw address including its checksum.
func (a Address) Bytes() []byte {
	raw := make([]byte, 0, addressLength)
	raw = append(raw, a.magic)
	raw = append(raw, a.key[:]...)
	raw = append(raw, crypto.DoubleSHA256(raw)[:checksumLength]...)
	return raw
}

// String returns the base58 form of the address.
func (a Address) String() string {
	return base58.Encode(a.Bytes())
}

// MarshalText implements encoding.TextMarshaler so that addresses travel as
// base58 strings in JSON.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// CodecEncodeSelf implements codec.Selfer. Addresses are encoded as their
// base58 string in CBOR too.
func (a *Address) CodecEncodeSelf(e *codec.Encoder) {
	e.MustEncode(a.String())
}

// CodecDecodeSelf implements codec.Selfer.
func (a *Address) CodecDecodeSelf(d *codec.Decoder) {
	var s string
	d.MustDecode(&s)

	parsed, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	*a = parsed
}
