package atom

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// EUIDLength is the size in bytes of an EUID.
const EUIDLength = 16

// EUID is a 128 bit identifier derived from a hash. The shard of an entity is
// the first 8 bytes of its EUID read as a big-endian signed integer.
type EUID [EUIDLength]byte

// NewEUID truncates a hash into an EUID.
func NewEUID(hash []byte) EUID {
	var res EUID
	copy(res[:], hash)
	return res
}

// Shard returns the shard the EUID belongs to.
func (e EUID) Shard() int64 {
	return int64(binary.BigEndian.Uint64(e[:8]))
}

// Hex ...
func (e EUID) Hex() string {
	return hex.EncodeToString(e[:])
}

func (e EUID) String() string {
	return fmt.Sprintf("EUID(%s)", e.Hex())
}
