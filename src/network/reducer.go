package network

import (
	"fmt"
	"reflect"

	"github.com/radixdlt/radix-go/src/peers"
)

// Reduce returns the state that results from applying action to state. It is
// pure and total. Actions that do not concern the node registry return state
// itself, and so does any action that would not change the affected entry.
//
// WebSocketStatusChanged for a node that is not in state is a programming
// error and panics.
func Reduce(state *NetworkState, action NodeAction) *NetworkState {
	switch a := action.(type) {
	case AddNode:
		current, ok := state.Get(a.Node)
		if !ok {
			current = NewNodeState(a.Node)
		}
		next := current
		if a.Info != nil {
			next = current.WithInfo(*a.Info)
		}
		if ok && reflect.DeepEqual(current, next) {
			return state
		}
		return state.with(next)

	case GetNodeInfoResult:
		return merge(state, a.Node, func(s NodeState) NodeState {
			return s.WithInfo(a.Info)
		})

	case GetUniverseConfigResult:
		return merge(state, a.Node, func(s NodeState) NodeState {
			return s.WithUniverse(a.Universe)
		})

	case WebSocketStatusChanged:
		if !state.Contains(a.Node) {
			panic(fmt.Sprintf("status change for unknown node %s", a.Node))
		}
		return merge(state, a.Node, func(s NodeState) NodeState {
			return s.WithStatus(a.Status)
		})
	}

	return state
}

// merge looks up or synthesizes the entry of node, applies f, and returns
// state itself if nothing changed.
func merge(state *NetworkState, node peers.Node, f func(NodeState) NodeState) *NetworkState {
	current, ok := state.Get(node)
	if !ok {
		current = NewNodeState(node)
	}

	next := f(current)

	if ok && reflect.DeepEqual(current, next) {
		return state
	}

	return state.with(next)
}
