package atom

import "github.com/radixdlt/radix-go/src/crypto/keys"

// UniverseConfig describes the universe a node belongs to. Nodes of different
// universes can not exchange atoms.
type UniverseConfig struct {
	Magic       int64  `json:"magic"`
	Port        int    `json:"port"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Timestamp   int64  `json:"timestamp"`
	Genesis     []Atom `json:"genesis,omitempty"`
}

// MagicByte is the byte prefixed to every address of the universe.
func (u *UniverseConfig) MagicByte() byte {
	return byte(u.Magic & 0xff)
}

// Address returns the address of key in this universe.
func (u *UniverseConfig) Address(key keys.PublicKey) Address {
	return NewAddress(u.MagicByte(), key)
}
