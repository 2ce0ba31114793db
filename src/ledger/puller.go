package ledger

import (
	"sync"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/network"
	"github.com/sirupsen/logrus"
)

// AtomPuller keeps one FetchAtomsRequest running per address and persists
// every observation it yields into an AtomStore.
type AtomPuller struct {
	bus    ActionBus
	store  AtomStore
	logger *logrus.Entry

	mu     sync.Mutex
	pulls  map[string]*pull //address => pull
	closed bool
}

type pull struct {
	id      uuid.UUID
	address atom.Address
	feed    *common.Feed[atom.AtomObservation]
	actions *common.Subscription[network.NodeAction]
}

// NewAtomPuller ...
func NewAtomPuller(bus ActionBus, store AtomStore, logger *logrus.Entry) *AtomPuller {
	return &AtomPuller{
		bus:    bus,
		store:  store,
		logger: logger.WithField("component", "puller"),
		pulls:  make(map[string]*pull),
	}
}

// Pull returns a subscription to the observations of address. The first call
// for an address starts fetching; later calls share the same fetch and
// receive the latest observation first. Closing the subscription does not
// stop the fetch, Evict does.
func (p *AtomPuller) Pull(address atom.Address) *common.Subscription[atom.AtomObservation] {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := address.String()

	if pl, ok := p.pulls[key]; ok {
		return pl.feed.Subscribe()
	}

	pl := &pull{
		id:      uuid.New(),
		address: address,
		feed:    common.NewFeed[atom.AtomObservation](common.ReplayLatest),
	}

	if p.closed {
		pl.feed.End(ErrClosed)
		return pl.feed.Subscribe()
	}

	// observe before dispatching so that no result is missed
	pl.actions = p.bus.ObserveActions()
	p.pulls[key] = pl

	sub := pl.feed.Subscribe()

	go p.run(pl)

	p.logger.WithFields(logrus.Fields{
		"address": key,
		"id":      pl.id,
	}).Debug("Pulling")

	p.bus.Dispatch(network.FetchAtomsRequest{ID: pl.id, Address: address})

	return sub
}

// Pulling reports whether a fetch is running for address.
func (p *AtomPuller) Pulling(address atom.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.pulls[address.String()]
	return ok
}

func (p *AtomPuller) run(pl *pull) {
	logger := p.logger.WithField("address", pl.address.String())

	for a := range pl.actions.C() {
		switch a := a.(type) {
		case network.FetchAtomsObservation:
			if a.ID != pl.id {
				continue
			}

			if err := p.store.Store(pl.address, a.Observation); err != nil {
				logger.WithError(err).Debug("Observation not stored")
			}
			pl.feed.Send(a.Observation)

		case network.FetchAtomsFailed:
			if a.ID != pl.id {
				continue
			}

			logger.WithError(a.Err).Warn("Fetch failed")

			// a later Pull starts over
			p.remove(pl)
			pl.actions.Close()
			pl.feed.End(a.Err)
			return
		}
	}

	// controller closed
	p.remove(pl)
	pl.feed.End(ErrClosed)
}

func (p *AtomPuller) remove(pl *pull) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := pl.address.String()
	if p.pulls[key] == pl {
		delete(p.pulls, key)
	}
}

// Evict stops fetching address and ends its subscriptions.
func (p *AtomPuller) Evict(address atom.Address) {
	p.mu.Lock()
	pl, ok := p.pulls[address.String()]
	delete(p.pulls, address.String())
	p.mu.Unlock()

	if !ok {
		return
	}

	p.evict(pl)
}

func (p *AtomPuller) evict(pl *pull) {
	p.logger.WithField("address", pl.address.String()).Debug("Evict")

	p.bus.Dispatch(network.FetchAtomsCancel{ID: pl.id, Address: pl.address})
	// ended before the actions close, which would end it with ErrClosed
	pl.feed.End(nil)
	pl.actions.Close()
}

// Close evicts every address. Later pulls end immediately.
func (p *AtomPuller) Close() {
	p.mu.Lock()
	p.closed = true
	pulls := p.pulls
	p.pulls = make(map[string]*pull)
	p.mu.Unlock()

	for _, pl := range pulls {
		p.evict(pl)
	}
}
