package network

import (
	"context"
	"sync"
	"time"

	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// Compatibility decides whether a node can be used at all.
type Compatibility func(NodeState) bool

// UniverseCompatibility accepts Ready nodes whose info is known and whose
// universe, once known, has the given magic. A zero magic accepts every
// universe.
func UniverseCompatibility(magic int64) Compatibility {
	return func(s NodeState) bool {
		if s.Status != net.Ready || s.Info == nil {
			return false
		}
		if magic != 0 && s.Universe != nil && s.Universe.Magic != magic {
			return false
		}
		return true
	}
}

// FindNodeConfig ...
type FindNodeConfig struct {
	Selector                   PeerSelector
	Fallback                   Fallback
	Compatible                 Compatibility
	MaxSimultaneousConnections int
	Timeout                    time.Duration
}

// FindANodeEpic answers every FindSuitableNodeRequest with exactly one
// FindSuitableNodeResult.
//
// If a compatible Ready node serves one of the requested shards, it is picked
// right away. Otherwise the epic connects candidate nodes, up to
// MaxSimultaneousConnections at a time, asks for more nodes when none are
// known, and checks again on every state change. When Timeout expires the
// Fallback has the last word.
type FindANodeEpic struct {
	conf   FindNodeConfig
	logger *logrus.Entry
}

// NewFindANodeEpic ...
func NewFindANodeEpic(conf FindNodeConfig, logger *logrus.Entry) *FindANodeEpic {
	if conf.Selector == nil {
		conf.Selector = FirstPeerSelector{}
	}
	if conf.Compatible == nil {
		conf.Compatible = UniverseCompatibility(0)
	}
	if conf.MaxSimultaneousConnections < 1 {
		conf.MaxSimultaneousConnections = 1
	}
	return &FindANodeEpic{
		conf:   conf,
		logger: logger.WithField("epic", "find_node"),
	}
}

// Run implements Epic.
func (e *FindANodeEpic) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
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
			req, ok := a.(FindSuitableNodeRequest)
			if !ok {
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				e.find(ctx, req, state, out)
			}()
		}
	}
}

func (e *FindANodeEpic) find(ctx context.Context, req FindSuitableNodeRequest, state StateSource, out chan<- NodeAction) {
	logger := e.logger.WithFields(logrus.Fields{
		"id":     req.ID,
		"shards": req.Shards,
	})

	states := state.ObserveState()
	defer states.Close()

	timeout := time.NewTimer(e.conf.Timeout)
	defer timeout.Stop()

	requested := make(map[string]bool)
	discoveryRequested := false

	current := state.State()

	for {
		if node, ok := SelectNode(current, req.Shards, e.conf.Compatible, e.conf.Selector); ok {
			logger.WithField("node", node.Key()).Debug("Found node")
			emit(ctx, out, FindSuitableNodeResult{ID: req.ID, Node: node})
			return
		}

		if current.Len() == 0 && !discoveryRequested {
			discoveryRequested = true
			if !emit(ctx, out, DiscoverMoreNodes{}) {
				return
			}
		}

		for _, n := range ConnectionCandidates(current, req.Shards, e.conf.MaxSimultaneousConnections, requested) {
			requested[n.Key()] = true
			if !emit(ctx, out, ConnectWebSocket{Node: n}) {
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case s, ok := <-states.C():
			if !ok {
				return
			}
			current = s
		case <-timeout.C:
			node, err := fallback(state.State(), req.Shards, e.conf.Compatible, e.conf.Fallback)
			logger.WithError(err).WithField("node", node.Key()).Debug("Search timed out")
			emit(ctx, out, FindSuitableNodeResult{ID: req.ID, Node: node, Err: err})
			return
		}
	}
}

// SelectNode picks among the compatible nodes serving one of shards.
func SelectNode(state *NetworkState, shards []int64, compatible Compatibility, selector PeerSelector) (peers.Node, bool) {
	candidates := state.Filter(func(s NodeState) bool {
		return compatible(s) && s.Serves(shards)
	})

	if len(candidates) == 0 {
		return peers.Node{}, false
	}

	return selector.Select(candidates).Node, true
}

// ConnectionCandidates returns the nodes worth connecting to find a node
// serving shards: Disconnected nodes that serve them, or whose info is
// unknown, not requested before. It never returns more than max minus the
// number of nodes already Connecting.
func ConnectionCandidates(state *NetworkState, shards []int64, max int, requested map[string]bool) []peers.Node {
	budget := max - len(state.WithStatus(net.Connecting))
	if budget <= 0 {
		return nil
	}

	res := []peers.Node{}
	for _, s := range state.WithStatus(net.Disconnected) {
		if len(res) >= budget {
			break
		}
		if requested[s.Node.Key()] {
			continue
		}
		if s.Info == nil || s.Serves(shards) {
			res = append(res, s.Node)
		}
	}

	return res
}

// fallback panics without a Fallback: a search that can end without an answer
// is a programming error.
func fallback(state *NetworkState, shards []int64, compatible Compatibility, f Fallback) (peers.Node, error) {
	if f == nil {
		panic("no suitable node and no fallback")
	}
	return f.Fallback(state, shards, compatible)
}
