package network

import (
	"errors"
	"fmt"

	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/peers"
)

// ErrNoSuitableNode is the error of a FindSuitableNodeResult when no node
// could be found.
var ErrNoSuitableNode = errors.New("no suitable node")

// Fallback decides what a node search returns once it has timed out without a
// suitable candidate. It never returns a node compatible rejects.
type Fallback interface {
	Fallback(state *NetworkState, shards []int64, compatible Compatibility) (peers.Node, error)
}

// AnyReadyFallback settles for any compatible Ready node, whatever its shards.
type AnyReadyFallback struct{}

// Fallback implements Fallback.
func (AnyReadyFallback) Fallback(state *NetworkState, shards []int64, compatible Compatibility) (peers.Node, error) {
	ready := state.Filter(func(s NodeState) bool {
		return s.Status == net.Ready && compatible(s)
	})
	if len(ready) == 0 {
		return peers.Node{}, fmt.Errorf("%w for shards %v: no compatible node ready", ErrNoSuitableNode, shards)
	}
	return ready[0].Node, nil
}

// FailFallback gives up.
type FailFallback struct{}

// Fallback implements Fallback.
func (FailFallback) Fallback(state *NetworkState, shards []int64, compatible Compatibility) (peers.Node, error) {
	return peers.Node{}, fmt.Errorf("%w for shards %v", ErrNoSuitableNode, shards)
}

// NewFallback returns the fallback called name: "any" or "fail".
func NewFallback(name string) (Fallback, error) {
	switch name {
	case "", "any":
		return AnyReadyFallback{}, nil
	case "fail":
		return FailFallback{}, nil
	}
	return nil, fmt.Errorf("unknown fallback %q", name)
}
