package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/net/jsonrpc"
	"github.com/radixdlt/radix-go/src/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPuller(t *testing.T) (*AtomPuller, *testBus, *InmemAtomStore) {
	bus := newTestBus()
	store := NewInmemAtomStore()
	puller := NewAtomPuller(bus, store, common.NewTestEntry(t, common.TestLogLevel))

	t.Cleanup(func() {
		puller.Close()
		store.Close()
	})

	return puller, bus, store
}

func TestAtomPullerSingleFetch(t *testing.T) {
	puller, bus, store := newTestPuller(t)

	addr := newAddress(t)
	a := newAtom("1", addr)

	first := puller.Pull(addr)
	defer first.Close()

	req := waitDispatched[network.FetchAtomsRequest](t, bus)
	assert.Equal(t, addr, req.Address)

	second := puller.Pull(addr)
	defer second.Close()

	assert.Equal(t, 1, bus.Count(), "the same address must be fetched once")

	bus.emit(network.FetchAtomsObservation{ID: req.ID, Address: addr, Observation: atom.NewStore(a, false, time.Now())})
	bus.emit(network.FetchAtomsObservation{ID: req.ID, Address: addr, Observation: atom.NewHead(time.Now())})

	for _, sub := range []*common.Subscription[atom.AtomObservation]{first, second} {
		if o := next(t, sub); !o.IsStore() {
			t.Fatalf("expected store, got %s", o)
		}
		if o := next(t, sub); !o.IsHead() {
			t.Fatalf("expected head, got %s", o)
		}
	}

	assert.Equal(t, 2, store.Len(addr))
}

func TestAtomPullerReplaysLatest(t *testing.T) {
	puller, bus, _ := newTestPuller(t)

	addr := newAddress(t)

	first := puller.Pull(addr)
	defer first.Close()

	req := waitDispatched[network.FetchAtomsRequest](t, bus)

	bus.emit(network.FetchAtomsObservation{ID: req.ID, Address: addr, Observation: atom.NewStore(newAtom("1", addr), false, time.Now())})
	bus.emit(network.FetchAtomsObservation{ID: req.ID, Address: addr, Observation: atom.NewHead(time.Now())})

	next(t, first)
	next(t, first)

	late := puller.Pull(addr)
	defer late.Close()

	if o := next(t, late); !o.IsHead() {
		t.Fatalf("a late pull should start from the latest observation, got %s", o)
	}
	expectNothing(t, late)
}

func TestAtomPullerIgnoresOtherRequests(t *testing.T) {
	puller, bus, store := newTestPuller(t)

	addr := newAddress(t)

	sub := puller.Pull(addr)
	defer sub.Close()

	req := waitDispatched[network.FetchAtomsRequest](t, bus)

	bus.emit(network.FetchAtomsObservation{ID: [16]byte{1}, Address: addr, Observation: atom.NewHead(time.Now())})
	bus.emit(network.FetchAtomsFailed{ID: [16]byte{1}, Address: addr, Err: errors.New("other")})

	expectNothing(t, sub)

	bus.emit(network.FetchAtomsObservation{ID: req.ID, Address: addr, Observation: atom.NewHead(time.Now())})
	next(t, sub)

	assert.Equal(t, 1, store.Len(addr))
}

func TestAtomPullerEvictEndsWithoutError(t *testing.T) {
	puller, bus, _ := newTestPuller(t)

	addr := newAddress(t)

	for i := 0; i < 100; i++ {
		sub := puller.Pull(addr)
		waitDispatched[network.FetchAtomsRequest](t, bus)

		puller.Evict(addr)
		waitDispatched[network.FetchAtomsCancel](t, bus)

		expectEnd(t, sub)
		if err := sub.Err(); err != nil {
			t.Fatalf("eviction %d ended with %v", i, err)
		}
		sub.Close()
	}
}

func TestAtomPullerEvict(t *testing.T) {
	puller, bus, _ := newTestPuller(t)

	addr := newAddress(t)

	sub := puller.Pull(addr)
	defer sub.Close()

	req := waitDispatched[network.FetchAtomsRequest](t, bus)

	puller.Evict(addr)

	cancel := waitDispatched[network.FetchAtomsCancel](t, bus)
	assert.Equal(t, req.ID, cancel.ID)
	assert.Equal(t, addr, cancel.Address)

	expectEnd(t, sub)
	assert.NoError(t, sub.Err())
	assert.False(t, puller.Pulling(addr))

	// pulling again starts a new fetch
	again := puller.Pull(addr)
	defer again.Close()

	req2 := waitDispatched[network.FetchAtomsRequest](t, bus)
	assert.NotEqual(t, req.ID, req2.ID)
}

func TestAtomPullerFailure(t *testing.T) {
	puller, bus, _ := newTestPuller(t)

	addr := newAddress(t)

	sub := puller.Pull(addr)
	defer sub.Close()

	req := waitDispatched[network.FetchAtomsRequest](t, bus)

	rpcErr := &jsonrpc.Error{Code: jsonrpc.CodeInvalidArgument, Message: "bad address"}
	bus.emit(network.FetchAtomsFailed{ID: req.ID, Address: addr, Err: rpcErr})

	expectEnd(t, sub)

	var err *jsonrpc.Error
	require.True(t, errors.As(sub.Err(), &err))
	assert.Equal(t, jsonrpc.CodeInvalidArgument, err.Code)

	require.Eventually(t, func() bool {
		return !puller.Pulling(addr)
	}, testTimeout, 10*time.Millisecond)
}

func TestAtomPullerClose(t *testing.T) {
	puller, bus, _ := newTestPuller(t)

	addr := newAddress(t)
	sub := puller.Pull(addr)
	defer sub.Close()

	waitDispatched[network.FetchAtomsRequest](t, bus)

	puller.Close()

	waitDispatched[network.FetchAtomsCancel](t, bus)
	expectEnd(t, sub)

	late := puller.Pull(newAddress(t))
	expectEnd(t, late)
	assert.ErrorIs(t, late.Err(), ErrClosed)
}
