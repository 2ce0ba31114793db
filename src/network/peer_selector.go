package network

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// PeerSelector picks one node out of several suitable ones.
type PeerSelector interface {
	// Select is only called with at least one candidate.
	Select(candidates []NodeState) NodeState
}

//+++++++++++++++++++++++++++++++++++++++
//FIRST

// FirstPeerSelector always picks the first candidate. Candidates are sorted by
// node key, so the choice is stable.
type FirstPeerSelector struct{}

// Select implements PeerSelector.
func (FirstPeerSelector) Select(candidates []NodeState) NodeState {
	return candidates[0]
}

//+++++++++++++++++++++++++++++++++++++++
//RANDOM

// RandomPeerSelector picks a random candidate, avoiding the last one it picked
// when there is a choice.
type RandomPeerSelector struct {
	mu   sync.Mutex
	rand *rand.Rand
	last string
}

// NewRandomPeerSelector ...
func NewRandomPeerSelector() *RandomPeerSelector {
	return &RandomPeerSelector{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Select implements PeerSelector.
func (ps *RandomPeerSelector) Select(candidates []NodeState) NodeState {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	selectable := candidates

	if len(selectable) > 1 {
		others := make([]NodeState, 0, len(selectable))
		for _, c := range selectable {
			if c.Node.Key() != ps.last {
				others = append(others, c)
			}
		}
		if len(others) > 0 {
			selectable = others
		}
	}

	res := selectable[ps.rand.Intn(len(selectable))]
	ps.last = res.Node.Key()

	return res
}

// NewPeerSelector returns the selector called name: "first" or "random".
func NewPeerSelector(name string) (PeerSelector, error) {
	switch name {
	case "", "first":
		return FirstPeerSelector{}, nil
	case "random":
		return NewRandomPeerSelector(), nil
	}
	return nil, fmt.Errorf("unknown peer selector %q", name)
}
