package network

import (
	"context"
	"errors"
	"sync"

	"github.com/radixdlt/radix-go/src/net"
	"github.com/sirupsen/logrus"
)

// ConnectionEpic drives the WebSockets registry. It executes ConnectWebSocket
// and CloseWebSocket, connects nodes picked by a FindSuitableNodeResult, and
// reports every status change of every socket as WebSocketStatusChanged, in
// transport order per node.
type ConnectionEpic struct {
	sockets *net.WebSockets
	logger  *logrus.Entry
}

// NewConnectionEpic ...
func NewConnectionEpic(sockets *net.WebSockets, logger *logrus.Entry) *ConnectionEpic {
	return &ConnectionEpic{
		sockets: sockets,
		logger:  logger.WithField("epic", "connection"),
	}
}

// Run implements Epic.
func (e *ConnectionEpic) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
	var wg sync.WaitGroup
	defer wg.Wait()

	created := e.sockets.ObserveCreated()
	defer created.Close()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case client, ok := <-created.C():
				if !ok {
					return
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					e.forwardStatus(ctx, client, state, out)
				}()
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-actions:
			if !ok {
				return
			}

			switch a := a.(type) {
			case ConnectWebSocket:
				e.connect(a.Node.Key(), e.sockets.Get(a.Node))

			case CloseWebSocket:
				if client, ok := e.sockets.Lookup(a.Node); ok {
					if !client.Close() {
						e.logger.WithField("node", a.Node.Key()).Debug("Socket still in use, not closing")
					}
				}

			case FindSuitableNodeResult:
				if a.Err != nil {
					continue
				}
				if ns, ok := state.State().Get(a.Node); !ok || ns.Status != net.Ready {
					emit(ctx, out, ConnectWebSocket{Node: a.Node})
				}
			}
		}
	}
}

func (e *ConnectionEpic) connect(key string, client *net.WebSocketClient) {
	err := client.Connect()
	switch {
	case err == nil:
	case errors.Is(err, net.ErrQuarantined):
		e.logger.WithField("node", key).Debug("Node quarantined")
	default:
		e.logger.WithError(err).WithField("node", key).Warn("Connect")
	}
}

// forwardStatus turns the status stream of one socket into actions. A socket
// can be created for a node that has not been reduced into the state yet, in
// which case the node is added first.
func (e *ConnectionEpic) forwardStatus(ctx context.Context, client *net.WebSocketClient, state StateSource, out chan<- NodeAction) {
	statuses := client.ObserveStatus()
	defer statuses.Close()

	node := client.Node()

	if !state.State().Contains(node) {
		if !emit(ctx, out, AddNode{Node: node}) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-statuses.C():
			if !ok {
				return
			}
			if !emit(ctx, out, WebSocketStatusChanged{Node: node, Status: s}) {
				return
			}
		}
	}
}
