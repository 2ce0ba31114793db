package network

import (
	"sort"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/peers"
)

// NodeState is what the client knows about a node.
type NodeState struct {
	Node     peers.Node
	Status   net.Status
	Info     *peers.NodeInfo
	Universe *atom.UniverseConfig
}

// NewNodeState returns the state of a node nothing is known about yet.
func NewNodeState(node peers.Node) NodeState {
	return NodeState{
		Node:   node,
		Status: net.Disconnected,
	}
}

// WithStatus returns a copy of s with a new status.
func (s NodeState) WithStatus(status net.Status) NodeState {
	s.Status = status
	return s
}

// WithInfo returns a copy of s with new node info.
func (s NodeState) WithInfo(info peers.NodeInfo) NodeState {
	s.Info = &info
	return s
}

// WithUniverse returns a copy of s with a new universe configuration.
func (s NodeState) WithUniverse(u atom.UniverseConfig) NodeState {
	s.Universe = &u
	return s
}

// Serves reports whether the node is known to serve one of shards.
func (s NodeState) Serves(shards []int64) bool {
	return s.Info != nil && s.Info.Serves(shards)
}

// NetworkState is an immutable snapshot of every known node. Transitions
// return a new snapshot.
type NetworkState struct {
	nodes map[string]NodeState
}

// NewNetworkState ...
func NewNetworkState(states ...NodeState) *NetworkState {
	nodes := make(map[string]NodeState, len(states))
	for _, s := range states {
		nodes[s.Node.Key()] = s
	}
	return &NetworkState{nodes: nodes}
}

// Get ...
func (n *NetworkState) Get(node peers.Node) (NodeState, bool) {
	s, ok := n.nodes[node.Key()]
	return s, ok
}

// Contains ...
func (n *NetworkState) Contains(node peers.Node) bool {
	_, ok := n.nodes[node.Key()]
	return ok
}

// Len ...
func (n *NetworkState) Len() int {
	return len(n.nodes)
}

// Nodes returns the states of every node, sorted by node key.
func (n *NetworkState) Nodes() []NodeState {
	res := make([]NodeState, 0, len(n.nodes))
	for _, s := range n.nodes {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Node.Key() < res[j].Node.Key()
	})
	return res
}

// Filter returns the states, sorted by node key, that satisfy pred.
func (n *NetworkState) Filter(pred func(NodeState) bool) []NodeState {
	res := []NodeState{}
	for _, s := range n.Nodes() {
		if pred(s) {
			res = append(res, s)
		}
	}
	return res
}

// WithStatus returns the nodes with the given status.
func (n *NetworkState) WithStatus(status net.Status) []NodeState {
	return n.Filter(func(s NodeState) bool {
		return s.Status == status
	})
}

// CountByStatus ...
func (n *NetworkState) CountByStatus() map[net.Status]int {
	res := make(map[net.Status]int, len(net.Statuses))
	for _, s := range net.Statuses {
		res[s] = 0
	}
	for _, s := range n.nodes {
		res[s.Status]++
	}
	return res
}

// with returns a copy of n where the entry of s.Node is replaced.
func (n *NetworkState) with(s NodeState) *NetworkState {
	nodes := make(map[string]NodeState, len(n.nodes)+1)
	for k, v := range n.nodes {
		nodes[k] = v
	}
	nodes[s.Node.Key()] = s
	return &NetworkState{nodes: nodes}
}
