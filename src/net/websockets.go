package net

import (
	"sync"

	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// WebSockets is the registry of WebSocketClients, one per node. Clients are
// created lazily and live until Shutdown.
type WebSockets struct {
	conf   WebSocketConfig
	logger *logrus.Entry

	mu       sync.Mutex
	clients  map[string]*WebSocketClient
	shutdown bool

	created *common.Feed[*WebSocketClient]
}

// NewWebSockets ...
func NewWebSockets(conf WebSocketConfig, logger *logrus.Entry) *WebSockets {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &WebSockets{
		conf:    conf,
		logger:  logger,
		clients: make(map[string]*WebSocketClient),
		created: common.NewFeed[*WebSocketClient](common.ReplayAll),
	}
}

// Get returns the client for node, creating it if necessary. After Shutdown
// it returns a client that is already shut down.
func (w *WebSockets) Get(node peers.Node) *WebSocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()

	if c, ok := w.clients[node.Key()]; ok {
		return c
	}

	c := NewWebSocketClient(node, w.conf, w.logger)
	if w.shutdown {
		c.Shutdown()
		return c
	}

	w.clients[node.Key()] = c
	w.created.Send(c)

	return c
}

// Lookup returns the client for node if it exists.
func (w *WebSockets) Lookup(node peers.Node) (*WebSocketClient, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.clients[node.Key()]
	return c, ok
}

// Clients returns all registered clients.
func (w *WebSockets) Clients() []*WebSocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()

	res := make([]*WebSocketClient, 0, len(w.clients))
	for _, c := range w.clients {
		res = append(res, c)
	}
	return res
}

// ObserveCreated delivers every client ever created, past ones first.
func (w *WebSockets) ObserveCreated() *common.Subscription[*WebSocketClient] {
	return w.created.Subscribe()
}

// Shutdown shuts every client down.
func (w *WebSockets) Shutdown() {
	w.mu.Lock()
	if w.shutdown {
		w.mu.Unlock()
		return
	}
	w.shutdown = true
	clients := make([]*WebSocketClient, 0, len(w.clients))
	for _, c := range w.clients {
		clients = append(clients, c)
	}
	w.mu.Unlock()

	for _, c := range clients {
		c.Shutdown()
	}

	w.created.End(ErrTransportShutdown)
}
