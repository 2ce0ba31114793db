package ledger

import (
	"sync"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
)

// ParticleObservation is a particle of an atom stored or deleted for an
// address.
type ParticleObservation struct {
	Particle atom.SpunParticle
	AtomHID  string
	Deleted  bool
}

// ParticleStore derives, from an AtomStore, the particles whose destinations
// include the key of an address. Streams are cached per address and share a
// single AtomStore subscription.
type ParticleStore struct {
	store AtomStore

	mu     sync.Mutex
	feeds  map[string]*particleFeed
	closed bool
}

type particleFeed struct {
	feed  *common.Feed[ParticleObservation]
	atoms *common.Subscription[atom.AtomObservation]
}

// NewParticleStore ...
func NewParticleStore(store AtomStore) *ParticleStore {
	return &ParticleStore{
		store: store,
		feeds: make(map[string]*particleFeed),
	}
}

// Particles replays the particles of address, then follows new ones.
func (s *ParticleStore) Particles(address atom.Address) *common.Subscription[ParticleObservation] {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := address.String()

	if pf, ok := s.feeds[key]; ok {
		return pf.feed.Subscribe()
	}

	pf := &particleFeed{
		feed: common.NewFeed[ParticleObservation](common.ReplayAll),
	}

	if s.closed {
		pf.feed.End(nil)
		return pf.feed.Subscribe()
	}

	pf.atoms = s.store.Atoms(address)
	s.feeds[key] = pf

	go pf.run(address)

	return pf.feed.Subscribe()
}

func (pf *particleFeed) run(address atom.Address) {
	key := address.PublicKey()

	for o := range pf.atoms.C() {
		if !o.HasAtom() {
			continue
		}

		a := o.Atom()
		hid := a.HID()

		for _, sp := range a.SpunParticles() {
			if !sp.Particle.HasDestination(key) {
				continue
			}
			pf.feed.Send(ParticleObservation{
				Particle: sp,
				AtomHID:  hid,
				Deleted:  o.IsDelete(),
			})
		}
	}

	pf.feed.End(pf.atoms.Err())
}

// Close ends every particle stream.
func (s *ParticleStore) Close() {
	s.mu.Lock()
	s.closed = true
	feeds := s.feeds
	s.feeds = make(map[string]*particleFeed)
	s.mu.Unlock()

	for _, pf := range feeds {
		pf.atoms.Close()
		pf.feed.End(nil)
	}
}
