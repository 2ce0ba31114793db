package ledger

import (
	"testing"
	"time"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticleStoreFiltersDestinations(t *testing.T) {
	store := NewInmemAtomStore()
	particles := NewParticleStore(store)
	defer func() {
		particles.Close()
		store.Close()
	}()

	addr := newAddress(t)
	other := newAddress(t)

	a := newAtom("1", addr, other)
	b := newAtom("2", other, addr)

	require.NoError(t, store.Store(addr, atom.NewStore(a, false, time.Now())))
	require.NoError(t, store.Store(addr, atom.NewHead(time.Now())))

	sub := particles.Particles(addr)
	defer sub.Close()

	p := next(t, sub)
	assert.Equal(t, a.HID(), p.AtomHID)
	assert.False(t, p.Deleted)
	assert.True(t, p.Particle.Particle.HasDestination(addr.PublicKey()))
	expectNothing(t, sub)

	require.NoError(t, store.Store(addr, atom.NewStore(b, false, time.Now())))
	require.NoError(t, store.Store(addr, atom.NewDelete(a, false, time.Now())))

	p = next(t, sub)
	assert.Equal(t, b.HID(), p.AtomHID)
	assert.False(t, p.Deleted)

	p = next(t, sub)
	assert.Equal(t, a.HID(), p.AtomHID)
	assert.True(t, p.Deleted)
}

func TestParticleStoreShared(t *testing.T) {
	store := NewInmemAtomStore()
	particles := NewParticleStore(store)
	defer func() {
		particles.Close()
		store.Close()
	}()

	addr := newAddress(t)

	first := particles.Particles(addr)
	defer first.Close()

	require.NoError(t, store.Store(addr, atom.NewStore(newAtom("1", addr), false, time.Now())))
	next(t, first)

	// a second reader gets the whole history
	second := particles.Particles(addr)
	defer second.Close()
	next(t, second)

	particles.Close()
	expectEnd(t, first)
	expectEnd(t, second)
}

func TestLedgerPullToParticles(t *testing.T) {
	bus := newTestBus()
	l := NewLedger(bus, NewInmemAtomStore(), common.NewTestEntry(t, common.TestLogLevel))
	defer l.Close()

	addr := newAddress(t)
	a := newAtom("1", addr)

	atoms := l.AtomPuller.Pull(addr)
	defer atoms.Close()

	particles := l.ParticleStore.Particles(addr)
	defer particles.Close()

	req := waitDispatched[network.FetchAtomsRequest](t, bus)
	bus.emit(network.FetchAtomsObservation{ID: req.ID, Address: addr, Observation: atom.NewStore(a, false, time.Now())})

	next(t, atoms)

	p := next(t, particles)
	assert.Equal(t, a.HID(), p.AtomHID)

	require.NoError(t, l.Close())
	expectEnd(t, particles)
}
