package atom

import (
	"fmt"

	"github.com/radixdlt/radix-go/src/crypto/keys"
)

// Spin is the state transition a particle undergoes inside an atom.
type Spin int

const (
	// Neutral particles have never been spun.
	Neutral Spin = 0
	// Up particles are created by the atom.
	Up Spin = 1
	// Down particles are consumed by the atom.
	Down Spin = -1
)

func (s Spin) String() string {
	switch s {
	case Neutral:
		return "Neutral"
	case Up:
		return "Up"
	case Down:
		return "Down"
	default:
		return fmt.Sprintf("Spin(%d)", int(s))
	}
}

// Particle is a unit of ledger state. Its content is opaque to the client
// apart from the addresses it is routed to.
type Particle struct {
	Serializer string            `json:"serializer"`
	Addresses  []Address         `json:"addresses"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// KeyDestinations returns the distinct public keys of the particle's
// addresses.
func (p *Particle) KeyDestinations() []keys.PublicKey {
	seen := make(map[keys.PublicKey]bool, len(p.Addresses))
	res := make([]keys.PublicKey, 0, len(p.Addresses))

	for _, a := range p.Addresses {
		k := a.PublicKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		res = append(res, k)
	}

	return res
}

// HasDestination reports whether key is one of the particle's key
// destinations.
func (p *Particle) HasDestination(key keys.PublicKey) bool {
	for _, a := range p.Addresses {
		if a.PublicKey() == key {
			return true
		}
	}
	return false
}

// SpunParticle is a particle together with the spin applied to it.
type SpunParticle struct {
	Spin     Spin     `json:"spin"`
	Particle Particle `json:"particle"`
}

// ParticleGroup is an ordered set of spun particles that must be applied
// together.
type ParticleGroup struct {
	Particles []SpunParticle `json:"particles"`
}
