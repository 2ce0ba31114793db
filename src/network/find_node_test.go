package network

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/peers"
)

func readyNode(node peers.Node, low, high int64) NodeState {
	info := peers.NodeInfo{Shards: peers.NewShardSpace(low, peers.NewShardRange(low, high))}
	return NewNodeState(node).WithStatus(net.Ready).WithInfo(info)
}

func TestSelectNodeByShard(t *testing.T) {
	state := NewNetworkState(
		readyNode(nodeA, 0, 100),
		readyNode(nodeB, 100, 200),
	)

	node, ok := SelectNode(state, []int64{50}, UniverseCompatibility(0), FirstPeerSelector{})
	if !ok || !node.Equal(nodeA) {
		t.Fatalf("shard 50 should select A, got %v", node)
	}

	node, ok = SelectNode(state, []int64{150}, UniverseCompatibility(0), NewRandomPeerSelector())
	if !ok || !node.Equal(nodeB) {
		t.Fatalf("shard 150 should select B, got %v", node)
	}

	if _, ok := SelectNode(state, []int64{250}, UniverseCompatibility(0), FirstPeerSelector{}); ok {
		t.Fatal("no node serves shard 250")
	}
}

func TestSelectNodeCompatibility(t *testing.T) {
	a := readyNode(nodeA, 0, 100).WithUniverse(atom.UniverseConfig{Magic: 1})
	b := readyNode(nodeB, 0, 100).WithUniverse(atom.UniverseConfig{Magic: 2})
	state := NewNetworkState(a, b)

	node, ok := SelectNode(state, []int64{50}, UniverseCompatibility(2), FirstPeerSelector{})
	if !ok || !node.Equal(nodeB) {
		t.Fatalf("only B is in universe 2, got %v", node)
	}

	notReady := NewNetworkState(readyNode(nodeA, 0, 100).WithStatus(net.Connecting))
	if _, ok := SelectNode(notReady, []int64{50}, UniverseCompatibility(0), FirstPeerSelector{}); ok {
		t.Fatal("a node that is not Ready should not be selected")
	}

	noInfo := NewNetworkState(NewNodeState(nodeA).WithStatus(net.Ready))
	if _, ok := SelectNode(noInfo, []int64{50}, UniverseCompatibility(0), FirstPeerSelector{}); ok {
		t.Fatal("a node without info should not be selected")
	}
}

func TestConnectionCandidates(t *testing.T) {
	nodeC := peers.NewNode("10.0.0.3", 8080, false)
	nodeD := peers.NewNode("10.0.0.4", 8080, false)

	state := NewNetworkState(
		NewNodeState(nodeA),
		readyNode(nodeB, 100, 200).WithStatus(net.Disconnected),
		NewNodeState(nodeC).WithStatus(net.Connecting),
		readyNode(nodeD, 0, 100).WithStatus(net.Disconnected),
	)

	// B serves other shards, C is already connecting
	got := ConnectionCandidates(state, []int64{50}, 3, map[string]bool{})
	if len(got) != 2 || !got[0].Equal(nodeA) || !got[1].Equal(nodeD) {
		t.Fatalf("wrong candidates %v", got)
	}

	got = ConnectionCandidates(state, []int64{50}, 2, map[string]bool{})
	if len(got) != 1 {
		t.Fatalf("budget should account for connecting nodes, got %v", got)
	}

	got = ConnectionCandidates(state, []int64{50}, 3, map[string]bool{nodeA.Key(): true})
	if len(got) != 1 || !got[0].Equal(nodeD) {
		t.Fatalf("requested nodes should be skipped, got %v", got)
	}

	if got := ConnectionCandidates(state, []int64{50}, 1, map[string]bool{}); len(got) != 0 {
		t.Fatalf("no budget left, got %v", got)
	}
}

func TestFallbacks(t *testing.T) {
	state := NewNetworkState(readyNode(nodeB, 100, 200))
	all := UniverseCompatibility(0)

	node, err := fallback(state, []int64{50}, all, AnyReadyFallback{})
	if err != nil || !node.Equal(nodeB) {
		t.Fatalf("AnyReadyFallback should pick B, got %v %v", node, err)
	}

	if _, err := fallback(NewNetworkState(), []int64{50}, all, AnyReadyFallback{}); !errors.Is(err, ErrNoSuitableNode) {
		t.Fatalf("expected ErrNoSuitableNode, got %v", err)
	}

	if _, err := fallback(state, []int64{50}, all, FailFallback{}); !errors.Is(err, ErrNoSuitableNode) {
		t.Fatalf("expected ErrNoSuitableNode, got %v", err)
	}
}

func TestAnyReadyFallbackCompatibility(t *testing.T) {
	other := readyNode(nodeA, 100, 200).WithUniverse(atom.UniverseConfig{Magic: 99})
	state := NewNetworkState(other)

	if node, err := fallback(state, []int64{50}, UniverseCompatibility(42), AnyReadyFallback{}); !errors.Is(err, ErrNoSuitableNode) {
		t.Fatalf("a node of another universe should never be picked, got %v %v", node, err)
	}

	ours := readyNode(nodeB, 100, 200).WithUniverse(atom.UniverseConfig{Magic: 42})
	state = NewNetworkState(other, ours)

	node, err := fallback(state, []int64{50}, UniverseCompatibility(42), AnyReadyFallback{})
	if err != nil || !node.Equal(nodeB) {
		t.Fatalf("expected B, got %v %v", node, err)
	}

	noInfo := NewNetworkState(NewNodeState(nodeA).WithStatus(net.Ready))
	if _, err := fallback(noInfo, []int64{50}, UniverseCompatibility(0), AnyReadyFallback{}); !errors.Is(err, ErrNoSuitableNode) {
		t.Fatalf("a node without info should not be picked, got %v", err)
	}
}

func TestNilFallbackPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("a search without fallback should panic")
		}
	}()

	fallback(NewNetworkState(), []int64{50}, UniverseCompatibility(0), nil)
}

func TestRandomPeerSelectorAvoidsLast(t *testing.T) {
	candidates := []NodeState{NewNodeState(nodeA), NewNodeState(nodeB)}
	ps := NewRandomPeerSelector()

	last := ps.Select(candidates)
	for i := 0; i < 20; i++ {
		next := ps.Select(candidates)
		if next.Node.Equal(last.Node) {
			t.Fatalf("selected %s twice in a row", next.Node)
		}
		last = next
	}

	single := []NodeState{NewNodeState(nodeA)}
	if !ps.Select(single).Node.Equal(nodeA) || !ps.Select(single).Node.Equal(nodeA) {
		t.Fatal("a single candidate is always selected")
	}
}

func TestNewPeerSelectorAndFallback(t *testing.T) {
	if _, err := NewPeerSelector("random"); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPeerSelector("round-robin"); err == nil {
		t.Fatal("unknown selector should fail")
	}
	if f, err := NewFallback("fail"); err != nil || f != (FailFallback{}) {
		t.Fatalf("wrong fallback %v %v", f, err)
	}
	if _, err := NewFallback("maybe"); err == nil {
		t.Fatal("unknown fallback should fail")
	}
}

func requestNode(t *testing.T, c *Controller, shards ...int64) FindSuitableNodeResult {
	t.Helper()

	actions := c.ObserveActions()
	defer actions.Close()

	id := uuid.New()
	c.Dispatch(FindSuitableNodeRequest{ID: id, Shards: shards})

	isResult := func(r FindSuitableNodeResult) bool { return r.ID == id }
	result := waitAction[FindSuitableNodeResult](t, actions, isResult)

	for _, r := range collect[FindSuitableNodeResult](actions, 300*time.Millisecond) {
		if isResult(r) {
			t.Fatalf("a request gets exactly one result, got another %#v", r)
		}
	}

	return result
}

func TestFindANodeConnectsCandidate(t *testing.T) {
	a, _ := newTestAtom(t)
	server := newTestNode(t, a)

	sockets, clients := newTestClients(t)
	logger := common.NewTestEntry(t, common.TestLogLevel)

	c := startController(t, NewNetworkState(NewNodeState(server.Node())),
		NewFindANodeEpic(FindNodeConfig{
			Fallback:                   FailFallback{},
			Compatible:                 UniverseCompatibility(testMagic),
			MaxSimultaneousConnections: 2,
			Timeout:                    3 * time.Second,
		}, logger),
		NewConnectionEpic(sockets, logger),
		NewNodeInfoEpic(clients, time.Second, 3, logger),
	)

	// the node is known but Disconnected and without info
	result := requestNode(t, c, 50)
	if result.Err != nil || !result.Node.Equal(server.Node()) {
		t.Fatalf("expected the connected node, got %#v", result)
	}

	ns, _ := c.State().Get(server.Node())
	if ns.Status != net.Ready || ns.Info == nil {
		t.Fatalf("selected node should be Ready with info, got %#v", ns)
	}
}

func TestFindANodeFallsBackToCompatibleNode(t *testing.T) {
	other := readyNode(nodeA, 100, 200).WithUniverse(atom.UniverseConfig{Magic: 99})
	ours := readyNode(nodeB, 100, 200).WithUniverse(atom.UniverseConfig{Magic: 42})

	c := startController(t, NewNetworkState(other, ours),
		NewFindANodeEpic(FindNodeConfig{
			Fallback:   AnyReadyFallback{},
			Compatible: UniverseCompatibility(42),
			Timeout:    100 * time.Millisecond,
		}, common.NewTestEntry(t, common.TestLogLevel)),
	)

	result := requestNode(t, c, 50)
	if result.Err != nil || !result.Node.Equal(nodeB) {
		t.Fatalf("fallback should pick B, got %#v", result)
	}
}

func TestFindANodeTimesOut(t *testing.T) {
	c := startController(t, nil,
		NewFindANodeEpic(FindNodeConfig{
			Fallback: FailFallback{},
			Timeout:  100 * time.Millisecond,
		}, common.NewTestEntry(t, common.TestLogLevel)),
	)

	actions := c.ObserveActions()
	defer actions.Close()

	id := uuid.New()
	c.Dispatch(FindSuitableNodeRequest{ID: id, Shards: []int64{50}})

	waitAction[DiscoverMoreNodes](t, actions, nil)

	result := waitAction[FindSuitableNodeResult](t, actions, nil)
	if result.ID != id || !errors.Is(result.Err, ErrNoSuitableNode) {
		t.Fatalf("expected ErrNoSuitableNode, got %#v", result)
	}
}
