package network

import (
	"context"
	"fmt"

	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/net/jsonrpc"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// NodeClients hands out JSON-RPC clients over the sockets of a WebSockets
// registry.
type NodeClients struct {
	sockets *net.WebSockets
	logger  *logrus.Entry
}

// NewNodeClients ...
func NewNodeClients(sockets *net.WebSockets, logger *logrus.Entry) *NodeClients {
	return &NodeClients{
		sockets: sockets,
		logger:  logger,
	}
}

// Sockets ...
func (n *NodeClients) Sockets() *net.WebSockets {
	return n.sockets
}

// Client returns a JSON-RPC client for node.
func (n *NodeClients) Client(node peers.Node) *jsonrpc.Client {
	return jsonrpc.NewClient(n.sockets.Get(node), n.logger.WithField("node", node.Key()))
}

// Hold pins the socket of node open until release is called. A
// CloseWebSocket handled in between is refused.
func (n *NodeClients) Hold(node peers.Node) (release func()) {
	return n.sockets.Get(node).Listen().Close
}

// WaitReady blocks until the connection to node is Ready, connecting it if it
// is Disconnected. It fails if the connection goes to Failed, or is Failed
// already.
func (n *NodeClients) WaitReady(ctx context.Context, node peers.Node) error {
	client := n.sockets.Get(node)

	statuses := client.ObserveStatus()
	defer statuses.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-statuses.C():
			if !ok {
				return net.ErrTransportShutdown
			}
			switch s {
			case net.Ready:
				return nil
			case net.Disconnected:
				if err := client.Connect(); err != nil {
					return fmt.Errorf("connecting %s: %w", node, err)
				}
			case net.Failed:
				return fmt.Errorf("%w: %s", net.ErrNotConnected, node)
			}
		}
	}
}

// emit sends a to out unless ctx is done first.
func emit(ctx context.Context, out chan<- NodeAction, a NodeAction) bool {
	select {
	case out <- a:
		return true
	case <-ctx.Done():
		return false
	}
}
