package network

import (
	"context"
	"sync"
	"time"

	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// NodeInfoEpic fetches the info and universe of every node that becomes Ready
// without them. Each fetch is retried a bounded number of times, and a node
// never has two fetches of the same kind in flight.
type NodeInfoEpic struct {
	clients        *NodeClients
	requestTimeout time.Duration
	retries        int
	retryDelay     time.Duration
	logger         *logrus.Entry

	mu       sync.Mutex
	inflight map[string]bool
}

// NewNodeInfoEpic ...
func NewNodeInfoEpic(clients *NodeClients, requestTimeout time.Duration, retries int, logger *logrus.Entry) *NodeInfoEpic {
	if retries < 1 {
		retries = 1
	}
	return &NodeInfoEpic{
		clients:        clients,
		requestTimeout: requestTimeout,
		retries:        retries,
		retryDelay:     requestTimeout / 10,
		logger:         logger.WithField("epic", "node_info"),
		inflight:       make(map[string]bool),
	}
}

// Run implements Epic.
func (e *NodeInfoEpic) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
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

			changed, ok := a.(WebSocketStatusChanged)
			if !ok || changed.Status != net.Ready {
				continue
			}

			ns, ok := state.State().Get(changed.Node)
			if !ok {
				continue
			}

			if ns.Info == nil {
				e.start(ctx, &wg, "info", changed.Node, out, e.fetchInfo)
			}

			if ns.Universe == nil {
				e.start(ctx, &wg, "universe", changed.Node, out, e.fetchUniverse)
			}
		}
	}
}

func (e *NodeInfoEpic) start(
	ctx context.Context,
	wg *sync.WaitGroup,
	kind string,
	node peers.Node,
	out chan<- NodeAction,
	fetch func(context.Context, peers.Node) (NodeAction, error),
) {
	key := kind + "/" + node.Key()

	e.mu.Lock()
	if e.inflight[key] {
		e.mu.Unlock()
		return
	}
	e.inflight[key] = true
	e.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			e.mu.Lock()
			delete(e.inflight, key)
			e.mu.Unlock()
		}()

		logger := e.logger.WithFields(logrus.Fields{
			"node": node.Key(),
			"kind": kind,
		})

		for attempt := 1; attempt <= e.retries; attempt++ {
			res, err := fetch(ctx, node)
			if err == nil {
				emit(ctx, out, res)
				return
			}

			logger.WithError(err).WithField("attempt", attempt).Debug("Fetch failed")

			if attempt == e.retries {
				break
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(e.retryDelay):
			}
		}

		logger.Warn("Giving up")
	}()
}

func (e *NodeInfoEpic) fetchInfo(ctx context.Context, node peers.Node) (NodeAction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	info, err := e.clients.Client(node).GetInfo(ctx)
	if err != nil {
		return nil, err
	}

	return GetNodeInfoResult{Node: node, Info: *info}, nil
}

func (e *NodeInfoEpic) fetchUniverse(ctx context.Context, node peers.Node) (NodeAction, error) {
	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	u, err := e.clients.Client(node).GetUniverse(ctx)
	if err != nil {
		return nil, err
	}

	return GetUniverseConfigResult{Node: node, Universe: *u}, nil
}
