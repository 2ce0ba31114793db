package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/crypto/keys"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/net/nodetest"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 3 * time.Second

func newTestClient(t *testing.T, server *nodetest.Server) (*Client, *net.WebSocketClient) {
	t.Helper()

	logger := common.NewTestEntry(t, common.TestLogLevel)

	ws := net.NewWebSocketClient(server.Node(), net.WebSocketConfig{
		QuarantineWindow: time.Second,
		DialTimeout:      time.Second,
		WriteTimeout:     time.Second,
	}, logger)
	t.Cleanup(ws.Shutdown)

	require.NoError(t, ws.Connect())

	return NewClient(ws, logger), ws
}

func testAddress(t *testing.T) atom.Address {
	key, err := keys.GenerateKey()
	require.NoError(t, err)
	return atom.NewAddress(1, key)
}

func testAtom(addr atom.Address) *atom.Atom {
	return &atom.Atom{
		ParticleGroups: []atom.ParticleGroup{{
			Particles: []atom.SpunParticle{{
				Spin: atom.Up,
				Particle: atom.Particle{
					Serializer: "radix.particles.message",
					Addresses:  []atom.Address{addr},
				},
			}},
		}},
		MetaData: map[string]string{"timestamp": "1"},
	}
}

func TestGetInfo(t *testing.T) {
	server := nodetest.NewServer(t)

	info := peers.NodeInfo{
		Shards: peers.NewShardSpace(0, peers.NewShardRange(-10, 10)),
		Agent:  "radix-test",
	}
	server.HandleResult(MethodGetInfo, info)

	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	res, err := client.GetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, info, *res)
}

func TestGetLivePeersAndUniverse(t *testing.T) {
	server := nodetest.NewServer(t)

	server.HandleResult(MethodGetLivePeers, []LivePeer{
		{Host: "10.0.0.1", Port: 8080},
		{Host: "10.0.0.2", Port: 8080, Info: &peers.NodeInfo{Agent: "x"}},
	})
	server.HandleResult(MethodGetUniverse, atom.UniverseConfig{Magic: 0x1234, Name: "test"})

	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	livePeers, err := client.GetLivePeers(ctx)
	require.NoError(t, err)
	require.Len(t, livePeers, 2)
	assert.Equal(t, peers.NewNode("10.0.0.2", 8080, false), livePeers[1].Node(false))
	assert.Equal(t, "x", livePeers[1].Info.Agent)

	universe, err := client.GetUniverse(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x34), universe.MagicByte())
}

func TestGetAtom(t *testing.T) {
	server := nodetest.NewServer(t)
	a := testAtom(testAddress(t))

	server.Handle(MethodGetAtom, func(s *nodetest.Session, req nodetest.Request) (interface{}, *nodetest.Error) {
		var params GetAtomRequest
		json.Unmarshal(req.Params, &params)
		if params.AID != a.HID() {
			return nil, &nodetest.Error{Code: CodeNotFound, Message: "no such atom"}
		}
		return a, nil
	})

	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	res, err := client.GetAtom(ctx, a.HID())
	require.NoError(t, err)
	assert.Equal(t, a.HID(), res.HID())

	_, err = client.GetAtom(ctx, "00")
	assert.True(t, IsCode(err, CodeNotFound), "expected not found, got %v", err)
}

func TestCallErrors(t *testing.T) {
	server := nodetest.NewServer(t)
	client, ws := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	_, err := client.GetInfo(ctx)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr), "expected *Error, got %v", err)
	assert.Equal(t, CodeMethodNotFound, rpcErr.Code)

	// the listener of a call is released with it
	assert.Equal(t, 0, ws.ListenerCount())

	server.Handle(MethodGetInfo, func(s *nodetest.Session, req nodetest.Request) (interface{}, *nodetest.Error) {
		s.Drop()
		return nil, nil
	})

	_, err = client.GetInfo(ctx)
	assert.True(t, errors.Is(err, net.ErrConnectionClosed), "expected a transport error, got %v", err)
	assert.False(t, errors.As(err, &rpcErr))
}

func TestCallTimeout(t *testing.T) {
	server := nodetest.NewServer(t)
	server.Handle(MethodGetInfo, func(s *nodetest.Session, req nodetest.Request) (interface{}, *nodetest.Error) {
		time.Sleep(500 * time.Millisecond)
		return peers.NodeInfo{}, nil
	})

	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetInfo(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestObserveAtoms(t *testing.T) {
	server := nodetest.NewServer(t)
	addr := testAddress(t)
	a := testAtom(addr)

	server.Handle(MethodSubscribeAtoms, func(s *nodetest.Session, req nodetest.Request) (interface{}, *nodetest.Error) {
		var params AtomsSubscribeRequest
		json.Unmarshal(req.Params, &params)

		// pushed before the acknowledgement
		s.Push(NotificationAtoms, AtomsNotification{
			SubscriberID: params.SubscriberID,
			AtomEvents:   []AtomEvent{{Type: "store", Atom: a}},
		})
		s.Push(NotificationAtoms, AtomsNotification{
			SubscriberID: "someone-else",
			AtomEvents:   []AtomEvent{{Type: "delete", Atom: a}},
		})
		s.Push(NotificationAtoms, AtomsNotification{
			SubscriberID: params.SubscriberID,
			IsHead:       true,
		})

		return map[string]bool{"success": true}, nil
	})
	server.HandleResult(MethodCancelAtoms, map[string]bool{"success": true})

	client, ws := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	sub, err := client.ObserveAtoms(ctx, addr)
	require.NoError(t, err)

	expected := []atom.ObservationType{atom.Store, atom.Head}
	for _, kind := range expected {
		select {
		case o := <-sub.C():
			assert.Equal(t, kind, o.Type())
			if kind == atom.Store {
				assert.Equal(t, a.HID(), o.Atom().HID())
			}
		case <-time.After(testTimeout):
			t.Fatalf("timeout waiting for %s", kind)
		}
	}

	assert.Equal(t, 1, ws.ListenerCount())

	require.NoError(t, sub.Cancel(ctx))
	assert.NoError(t, sub.Err())
	assert.Equal(t, 0, ws.ListenerCount())
}

func TestObserveAtomsConnectionDrop(t *testing.T) {
	server := nodetest.NewServer(t)
	server.HandleResult(MethodSubscribeAtoms, map[string]bool{"success": true})

	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	sub, err := client.ObserveAtoms(ctx, testAddress(t))
	require.NoError(t, err)

	server.Sessions()[0].Drop()

	select {
	case _, ok := <-sub.C():
		require.False(t, ok)
	case <-time.After(testTimeout):
		t.Fatal("timeout")
	}

	assert.True(t, errors.Is(sub.Err(), net.ErrConnectionClosed))
}

func TestSubmitAtom(t *testing.T) {
	server := nodetest.NewServer(t)
	a := testAtom(testAddress(t))

	server.Handle(MethodSubmitAndSubscribe, func(s *nodetest.Session, req nodetest.Request) (interface{}, *nodetest.Error) {
		var params SubmitAtomRequest
		json.Unmarshal(req.Params, &params)

		for _, v := range []string{"RECEIVED", "COLLISION", "STORED"} {
			s.Push(NotificationSubmission, SubmissionNotification{
				SubscriberID: params.SubscriberID,
				Value:        v,
			})
		}

		return map[string]bool{"success": true}, nil
	})

	client, ws := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	sub, err := client.SubmitAtom(ctx, a)
	require.NoError(t, err)

	states := []SubmissionState{}
	for u := range sub.C() {
		states = append(states, u.State)
	}

	// nothing after the terminal collision
	assert.Equal(t, []SubmissionState{Received, Collision}, states)
	assert.NoError(t, sub.Err())

	assert.Eventually(t, func() bool { return ws.ListenerCount() == 0 }, testTimeout, 10*time.Millisecond)
}

func TestSubmitAtomRejected(t *testing.T) {
	server := nodetest.NewServer(t)
	server.Handle(MethodSubmitAndSubscribe, func(s *nodetest.Session, req nodetest.Request) (interface{}, *nodetest.Error) {
		return nil, &nodetest.Error{Code: CodeValidationError, Message: "bad atom"}
	})

	client, _ := newTestClient(t, server)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	_, err := client.SubmitAtom(ctx, testAtom(testAddress(t)))
	assert.True(t, IsCode(err, CodeValidationError), "got %v", err)
}

func TestSubmissionState(t *testing.T) {
	for _, s := range []SubmissionState{Received, Stored, Collision, IllegalState, UnsuitablePeer, ValidationError, UnknownError} {
		parsed, err := ParseSubmissionState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSubmissionState("FAILED")
	assert.Error(t, err)

	assert.False(t, Received.IsTerminal())
	assert.True(t, Failed.IsTerminal())
}
