package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/crypto/keys"
	"github.com/radixdlt/radix-go/src/network"
)

const testTimeout = 5 * time.Second

// testBus records dispatched actions and lets tests play the controller.
type testBus struct {
	feed       *common.Feed[network.NodeAction]
	dispatched chan network.NodeAction

	mu    sync.Mutex
	count int
}

func newTestBus() *testBus {
	return &testBus{
		feed:       common.NewFeed[network.NodeAction](common.ReplayNone),
		dispatched: make(chan network.NodeAction, 100),
	}
}

func (b *testBus) Dispatch(a network.NodeAction) {
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	b.dispatched <- a
}

func (b *testBus) ObserveActions() *common.Subscription[network.NodeAction] {
	return b.feed.Subscribe()
}

func (b *testBus) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *testBus) emit(a network.NodeAction) {
	b.feed.Send(a)
}

func waitDispatched[T network.NodeAction](t *testing.T, b *testBus) T {
	t.Helper()

	timeout := time.After(testTimeout)
	for {
		select {
		case a := <-b.dispatched:
			if res, ok := a.(T); ok {
				return res
			}
		case <-timeout:
			var zero T
			t.Fatalf("timeout waiting for %T", zero)
		}
	}
}

func next[T any](t *testing.T, sub *common.Subscription[T]) T {
	t.Helper()

	select {
	case v, ok := <-sub.C():
		if !ok {
			t.Fatalf("subscription ended: %v", sub.Err())
		}
		return v
	case <-time.After(testTimeout):
		t.Fatal("timeout")
	}

	var zero T
	return zero
}

func expectEnd[T any](t *testing.T, sub *common.Subscription[T]) {
	t.Helper()

	for {
		select {
		case v, ok := <-sub.C():
			if !ok {
				return
			}
			t.Fatalf("unexpected value %v", v)
		case <-time.After(testTimeout):
			t.Fatal("timeout waiting for the end of the subscription")
		}
	}
}

func expectNothing[T any](t *testing.T, sub *common.Subscription[T]) {
	t.Helper()

	select {
	case v, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected value %v", v)
		}
		t.Fatal("unexpected end")
	case <-time.After(50 * time.Millisecond):
	}
}

func newAddress(t *testing.T) atom.Address {
	key, err := keys.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	return atom.NewAddress(0x2a, key)
}

// newAtom returns an atom with one Up particle per destination.
func newAtom(nonce string, destinations ...atom.Address) *atom.Atom {
	particles := []atom.SpunParticle{}
	for _, d := range destinations {
		particles = append(particles, atom.SpunParticle{
			Spin: atom.Up,
			Particle: atom.Particle{
				Serializer: "radix.particles.message",
				Addresses:  []atom.Address{d},
				Fields:     map[string]string{"nonce": nonce},
			},
		})
	}

	return &atom.Atom{
		ParticleGroups: []atom.ParticleGroup{{Particles: particles}},
		MetaData:       map[string]string{"timestamp": nonce},
	}
}
