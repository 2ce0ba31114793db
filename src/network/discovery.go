package network

import (
	"context"
	"sync"
	"time"

	"github.com/radixdlt/radix-go/src/net/jsonrpc"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DiscoveryEpic bootstraps the node registry. On DiscoverMoreNodes it adds
// and connects the seed nodes, then asks each of them for its live peers and
// adds those that are not known yet.
type DiscoveryEpic struct {
	seeds          peers.Seeds
	clients        *NodeClients
	requestTimeout time.Duration
	useTLS         bool
	logger         *logrus.Entry
}

// NewDiscoveryEpic ...
func NewDiscoveryEpic(
	seeds peers.Seeds,
	clients *NodeClients,
	requestTimeout time.Duration,
	useTLS bool,
	logger *logrus.Entry,
) *DiscoveryEpic {
	return &DiscoveryEpic{
		seeds:          seeds,
		clients:        clients,
		requestTimeout: requestTimeout,
		useTLS:         useTLS,
		logger:         logger.WithField("epic", "discovery"),
	}
}

// Run implements Epic.
func (e *DiscoveryEpic) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
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
			if _, ok := a.(DiscoverMoreNodes); !ok {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				e.discover(ctx, state, out)
			}()
		}
	}
}

func (e *DiscoveryEpic) discover(ctx context.Context, state StateSource, out chan<- NodeAction) {
	seeds, err := e.seeds.Seeds(ctx)
	if err != nil {
		e.logger.WithError(err).Error("Reading seeds")
		return
	}

	if len(seeds) == 0 {
		e.logger.Warn("No seed nodes")
		return
	}

	for _, seed := range seeds {
		if !emit(ctx, out, AddNode{Node: seed}) {
			return
		}
		if !emit(ctx, out, ConnectWebSocket{Node: seed}) {
			return
		}
	}

	var (
		mu    sync.Mutex
		found [][]jsonrpc.LivePeer
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, seed := range seeds {
		seed := seed
		g.Go(func() error {
			livePeers, err := e.livePeers(gctx, seed)
			if err != nil {
				// one bad seed does not prevent the others from answering
				e.logger.WithError(err).WithField("seed", seed.Key()).Warn("Getting live peers")
				return nil
			}

			mu.Lock()
			found = append(found, livePeers)
			mu.Unlock()

			return nil
		})
	}

	g.Wait()

	known := state.State()
	added := make(map[string]bool)

	for _, batch := range found {
		for _, p := range batch {
			node := p.Node(e.useTLS)
			if known.Contains(node) || added[node.Key()] {
				continue
			}
			added[node.Key()] = true

			if !emit(ctx, out, AddNode{Node: node, Info: p.Info}) {
				return
			}
		}
	}

	e.logger.WithField("new_nodes", len(added)).Debug("Discovery done")
}

func (e *DiscoveryEpic) livePeers(ctx context.Context, seed peers.Node) ([]jsonrpc.LivePeer, error) {
	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	if err := e.clients.WaitReady(ctx, seed); err != nil {
		return nil, err
	}

	return e.clients.Client(seed).GetLivePeers(ctx)
}
