package network

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/net/jsonrpc"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// AtomFetchEpic serves FetchAtomsRequests: it finds a node serving the
// address's shard, subscribes to the address's atoms there, and republishes
// every observation as a FetchAtomsObservation.
//
// When the connection drops, a Resync observation is published and the epic
// looks for a node again and resubscribes. A node error ends the fetch with
// FetchAtomsFailed. FetchAtomsCancel cancels the node subscription and asks
// for the socket to be closed.
type AtomFetchEpic struct {
	clients        *NodeClients
	requestTimeout time.Duration
	retryDelay     time.Duration
	logger         *logrus.Entry

	selections *selections

	mu      sync.Mutex
	fetches map[uuid.UUID]*fetchTask
}

type fetchTask struct {
	address atom.Address
	cancel  context.CancelFunc
}

// NewAtomFetchEpic ...
func NewAtomFetchEpic(clients *NodeClients, requestTimeout time.Duration, logger *logrus.Entry) *AtomFetchEpic {
	return &AtomFetchEpic{
		clients:        clients,
		requestTimeout: requestTimeout,
		retryDelay:     time.Second,
		logger:         logger.WithField("epic", "fetch"),
		selections:     newSelections(),
		fetches:        make(map[uuid.UUID]*fetchTask),
	}
}

// Run implements Epic.
func (e *AtomFetchEpic) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-actions:
			if !ok {
				return
			}

			switch a := a.(type) {
			case FetchAtomsRequest:
				e.mu.Lock()
				if _, ok := e.fetches[a.ID]; ok {
					e.mu.Unlock()
					continue
				}
				fctx, cancel := context.WithCancel(ctx)
				e.fetches[a.ID] = &fetchTask{address: a.Address, cancel: cancel}
				e.mu.Unlock()

				wg.Add(1)
				go func() {
					defer wg.Done()
					defer e.remove(a.ID)
					e.fetch(ctx, fctx, a, out)
				}()

			case FetchAtomsCancel:
				e.cancel(a)

			case FindSuitableNodeResult:
				e.selections.deliver(a)
			}
		}
	}
}

// Active returns the number of running fetches.
func (e *AtomFetchEpic) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.fetches)
}

func (e *AtomFetchEpic) cancel(a FetchAtomsCancel) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.fetches[a.ID]; ok {
		t.cancel()
		return
	}

	// cancel by address when the request id is not known
	for _, t := range e.fetches {
		if t.address == a.Address {
			t.cancel()
		}
	}
}

func (e *AtomFetchEpic) remove(id uuid.UUID) {
	e.mu.Lock()
	if t, ok := e.fetches[id]; ok {
		t.cancel()
		delete(e.fetches, id)
	}
	e.mu.Unlock()
}

// fetch runs until fctx is cancelled or the fetch fails. Actions emitted after
// cancellation go through the epic context.
func (e *AtomFetchEpic) fetch(ctx, fctx context.Context, req FetchAtomsRequest, out chan<- NodeAction) {
	logger := e.logger.WithFields(logrus.Fields{
		"id":      req.ID,
		"address": req.Address.String(),
	})

	shards := []int64{req.Address.Shard()}

	for {
		node, err := e.selections.request(fctx, out, req.ID, shards)
		if fctx.Err() != nil {
			return
		}
		if err != nil {
			logger.WithError(err).Debug("No node")
			emit(ctx, out, FetchAtomsFailed{ID: req.ID, Address: req.Address, Err: err})
			return
		}

		sub, err := e.subscribe(fctx, node, req.Address)
		if fctx.Err() != nil {
			return
		}
		if err != nil {
			var rpcErr *jsonrpc.Error
			if errors.As(err, &rpcErr) {
				logger.WithError(err).Warn("Subscription refused")
				emit(ctx, out, FetchAtomsFailed{ID: req.ID, Address: req.Address, Err: err})
				return
			}

			logger.WithError(err).WithField("node", node.Key()).Debug("Subscription failed, retrying")
			if !e.sleep(fctx) {
				return
			}
			continue
		}

		logger.WithField("node", node.Key()).Debug("Subscribed")

		if !e.stream(fctx, req, node, sub, out) {
			e.release(ctx, node, sub, out)
			return
		}

		logger.WithError(sub.Err()).WithField("node", node.Key()).Debug("Subscription dropped")

		obs := FetchAtomsObservation{
			ID:          req.ID,
			Address:     req.Address,
			Node:        node,
			Observation: atom.NewResync(time.Now()),
		}
		if !emit(fctx, out, obs) || !e.sleep(fctx) {
			return
		}
	}
}

func (e *AtomFetchEpic) subscribe(ctx context.Context, node peers.Node, address atom.Address) (*jsonrpc.AtomSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	release := e.clients.Hold(node)
	defer release()

	if err := e.clients.WaitReady(ctx, node); err != nil {
		return nil, err
	}

	return e.clients.Client(node).ObserveAtoms(ctx, address)
}

// stream republishes observations. It returns false when fctx is done, true
// when the subscription dropped.
func (e *AtomFetchEpic) stream(fctx context.Context, req FetchAtomsRequest, node peers.Node, sub *jsonrpc.AtomSubscription, out chan<- NodeAction) bool {
	for {
		select {
		case <-fctx.Done():
			return false
		case o, ok := <-sub.C():
			if !ok {
				return fctx.Err() == nil
			}

			obs := FetchAtomsObservation{
				ID:          req.ID,
				Address:     req.Address,
				Node:        node,
				Observation: o,
			}
			if !emit(fctx, out, obs) {
				return false
			}
		}
	}
}

// release cancels the node subscription and asks for the socket to be closed.
func (e *AtomFetchEpic) release(ctx context.Context, node peers.Node, sub *jsonrpc.AtomSubscription, out chan<- NodeAction) {
	cctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	if err := sub.Cancel(cctx); err != nil {
		e.logger.WithError(err).WithField("node", node.Key()).Debug("Cancelling subscription")
	}

	emit(ctx, out, CloseWebSocket{Node: node})
}

func (e *AtomFetchEpic) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(e.retryDelay):
		return true
	}
}
