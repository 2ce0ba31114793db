package atom

import (
	"bytes"
	"encoding/hex"

	"github.com/radixdlt/radix-go/src/crypto"
	"github.com/ugorji/go/codec"
)

// Atom is a transaction: a list of particle groups plus the signatures of the
// keys whose particles are spun down.
type Atom struct {
	ParticleGroups []ParticleGroup   `json:"particleGroups"`
	Signatures     map[string]string `json:"signatures,omitempty"`
	MetaData       map[string]string `json:"metaData,omitempty"`
}

// unsignedAtom is the part of an Atom covered by its hash.
type unsignedAtom struct {
	ParticleGroups []ParticleGroup   `codec:"particleGroups"`
	MetaData       map[string]string `codec:"metaData"`
}

func cborHandle() *codec.CborHandle {
	ch := new(codec.CborHandle)
	ch.Canonical = true
	return ch
}

// Marshal returns the canonical CBOR encoding of the atom, signatures
// included.
func (a *Atom) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, cborHandle())

	if err := enc.Encode(a); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes the output of Marshal.
func (a *Atom) Unmarshal(data []byte) error {
	dec := codec.NewDecoder(bytes.NewBuffer(data), cborHandle())
	return dec.Decode(a)
}

// Hash returns the double SHA-256 of the canonical CBOR encoding of the
// unsigned atom. Two atoms differing only by signatures share a hash.
func (a *Atom) Hash() []byte {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, cborHandle())

	err := enc.Encode(unsignedAtom{
		ParticleGroups: a.ParticleGroups,
		MetaData:       a.MetaData,
	})
	if err != nil {
		// only plain strings, ints and slices are encoded here
		panic(err)
	}

	return crypto.DoubleSHA256(b.Bytes())
}

// HID is the hex form of the atom hash.
func (a *Atom) HID() string {
	return hex.EncodeToString(a.Hash())
}

// AID is the EUID of the atom hash.
func (a *Atom) AID() EUID {
	return NewEUID(a.Hash())
}

// SpunParticles returns all spun particles of the atom in group order.
func (a *Atom) SpunParticles() []SpunParticle {
	res := []SpunParticle{}
	for _, g := range a.ParticleGroups {
		res = append(res, g.Particles...)
	}
	return res
}

// ParticlesWithSpin returns the particles spun with s.
func (a *Atom) ParticlesWithSpin(s Spin) []Particle {
	res := []Particle{}
	for _, sp := range a.SpunParticles() {
		if sp.Spin == s {
			res = append(res, sp.Particle)
		}
	}
	return res
}

// Addresses returns the distinct addresses touched by the atom, in order of
// first appearance.
func (a *Atom) Addresses() []Address {
	seen := make(map[Address]bool)
	res := []Address{}

	for _, sp := range a.SpunParticles() {
		for _, addr := range sp.Particle.Addresses {
			if seen[addr] {
				continue
			}
			seen[addr] = true
			res = append(res, addr)
		}
	}

	return res
}

// Touches reports whether any particle of the atom is routed to addr.
func (a *Atom) Touches(addr Address) bool {
	for _, sp := range a.SpunParticles() {
		for _, pa := range sp.Particle.Addresses {
			if pa == addr {
				return true
			}
		}
	}
	return false
}

// Shards returns the distinct shards of the atom's addresses.
func (a *Atom) Shards() []int64 {
	seen := make(map[int64]bool)
	res := []int64{}

	for _, addr := range a.Addresses() {
		s := addr.Shard()
		if seen[s] {
			continue
		}
		seen[s] = true
		res = append(res, s)
	}

	return res
}
