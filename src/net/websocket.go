package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultQuarantineWindow is how long a Failed connection refuses to
	// reconnect.
	DefaultQuarantineWindow = 60 * time.Second
	// DefaultDialTimeout ...
	DefaultDialTimeout = 10 * time.Second
	// DefaultWriteTimeout ...
	DefaultWriteTimeout = 10 * time.Second

	welcomeMethod = "Radix.welcome"
)

var (
	// ErrTransportShutdown is returned when operations on a client are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")
	// ErrQuarantined is returned by Connect while a Failed connection is
	// still inside its quarantine window.
	ErrQuarantined = errors.New("node quarantined")
	// ErrNotConnected is returned by Send when the connection has Failed and
	// the message would never be delivered.
	ErrNotConnected = errors.New("not connected")
	// ErrConnectionClosed ends every message listener when the underlying
	// socket goes away.
	ErrConnectionClosed = errors.New("connection closed")
)

// WebSocketConfig ...
type WebSocketConfig struct {
	QuarantineWindow time.Duration
	DialTimeout      time.Duration
	WriteTimeout     time.Duration
}

// DefaultWebSocketConfig ...
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		QuarantineWindow: DefaultQuarantineWindow,
		DialTimeout:      DefaultDialTimeout,
		WriteTimeout:     DefaultWriteTimeout,
	}
}

/*
WebSocketClient manages a single WebSocket connection to a Radix node.

A connection is only usable once the node has sent its Radix.welcome push. The
welcome is consumed by the client and moves the connection to Ready. Messages
sent before that are queued and written, in order, right after the welcome.

Incoming messages are fanned out to every registered Listener, each of which
buffers independently so a slow reader never stalls the socket. Listeners also
pin the connection open: Close is refused while any exist.
*/
type WebSocketClient struct {
	node   peers.Node
	conf   WebSocketConfig
	dialer *websocket.Dialer
	logger *logrus.Entry

	mu         sync.Mutex
	status     Status
	generation uint64
	conn       *websocket.Conn
	queue      [][]byte
	failedAt   time.Time
	quarantine *time.Timer
	shutdown   bool

	listeners    map[uint64]*Listener
	nextListener uint64

	statusFeed *common.Feed[Status]
}

// NewWebSocketClient creates a Disconnected client for node.
func NewWebSocketClient(
	node peers.Node,
	conf WebSocketConfig,
	logger *logrus.Entry,
) *WebSocketClient {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	if conf.QuarantineWindow <= 0 {
		conf.QuarantineWindow = DefaultQuarantineWindow
	}
	if conf.DialTimeout <= 0 {
		conf.DialTimeout = DefaultDialTimeout
	}
	if conf.WriteTimeout <= 0 {
		conf.WriteTimeout = DefaultWriteTimeout
	}

	c := &WebSocketClient{
		node: node,
		conf: conf,
		dialer: &websocket.Dialer{
			HandshakeTimeout: conf.DialTimeout,
		},
		logger:     logger.WithField("node", node.Key()),
		listeners:  make(map[uint64]*Listener),
		statusFeed: common.NewFeed[Status](common.ReplayLatest),
	}

	c.statusFeed.Send(Disconnected)

	return c
}

// Node ...
func (c *WebSocketClient) Node() peers.Node {
	return c.node
}

// Status returns the current connection status.
func (c *WebSocketClient) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ObserveStatus returns a subscription to status changes. The current status
// is delivered first. The subscription completes when the client is shut
// down.
func (c *WebSocketClient) ObserveStatus() *common.Subscription[Status] {
	return c.statusFeed.Subscribe()
}

// Connect starts connecting if the client is Disconnected, or Failed with an
// expired quarantine. It is a no-op in every other status, and returns
// ErrQuarantined for a Failed client inside its quarantine window.
func (c *WebSocketClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrTransportShutdown
	}

	switch c.status {
	case Disconnected:
	case Failed:
		if time.Since(c.failedAt) < c.conf.QuarantineWindow {
			return ErrQuarantined
		}
		c.stopQuarantine()
	default:
		return nil
	}

	c.generation++
	c.setStatus(Connecting)

	go c.dial(c.generation)

	return nil
}

// Send writes msg if the connection is Ready, and queues it otherwise. Queued
// messages are written in order as soon as the connection becomes Ready, and
// dropped if it fails or is closed first. Sending on a Failed connection
// returns ErrNotConnected.
func (c *WebSocketClient) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shutdown {
		return ErrTransportShutdown
	}

	switch c.status {
	case Ready:
		if err := c.write(msg); err != nil {
			return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
		}
	case Failed:
		return ErrNotConnected
	default:
		c.queue = append(c.queue, msg)
	}

	return nil
}

// Listen registers a new message listener.
func (c *WebSocketClient) Listen() *Listener {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := newListener(c, c.nextListener)
	c.nextListener++

	if c.shutdown {
		l.end(ErrTransportShutdown)
		return l
	}

	c.listeners[l.id] = l

	return l
}

// ListenerCount returns the number of registered listeners.
func (c *WebSocketClient) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Close tears the connection down unless it still has listeners, in which
// case it returns false and does nothing. A Ready or Connecting connection
// goes through Closing to Disconnected, never Failed, whatever errors occur
// while closing.
func (c *WebSocketClient) Close() bool {
	c.mu.Lock()

	if len(c.listeners) > 0 {
		c.mu.Unlock()
		return false
	}

	if c.status != Ready && c.status != Connecting {
		c.mu.Unlock()
		return true
	}

	conn := c.teardown()
	gen := c.generation
	c.mu.Unlock()

	c.closeConn(conn)

	c.mu.Lock()
	if c.generation == gen && c.status == Closing {
		c.setStatus(Disconnected)
	}
	c.mu.Unlock()

	return true
}

// Shutdown closes the connection regardless of listeners and permanently
// disables the client.
func (c *WebSocketClient) Shutdown() {
	c.mu.Lock()

	if c.shutdown {
		c.mu.Unlock()
		return
	}

	var conn *websocket.Conn
	if c.status == Ready || c.status == Connecting {
		conn = c.teardown()
	}

	c.shutdown = true
	c.stopQuarantine()
	c.endListeners(ErrTransportShutdown)
	c.mu.Unlock()

	c.closeConn(conn)

	c.mu.Lock()
	if c.status != Disconnected {
		c.setStatus(Disconnected)
	}
	c.statusFeed.End(nil)
	c.mu.Unlock()
}

// teardown moves to Closing and detaches the current socket. It invalidates
// the current generation so the read loop and any pending dial stay silent.
// Queued messages are dropped. Must be called with mu held.
func (c *WebSocketClient) teardown() *websocket.Conn {
	c.setStatus(Closing)
	c.generation++

	conn := c.conn
	c.conn = nil
	c.dropQueue()

	c.endListeners(ErrConnectionClosed)

	return conn
}

func (c *WebSocketClient) closeConn(conn *websocket.Conn) {
	if conn == nil {
		return
	}

	deadline := time.Now().Add(c.conf.WriteTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		c.logger.WithError(err).Debug("Writing close message")
	}

	if err := conn.Close(); err != nil {
		c.logger.WithError(err).Debug("Closing connection")
	}
}

func (c *WebSocketClient) dial(gen uint64) {
	c.logger.WithField("url", c.node.URL()).Debug("Dialing")

	ctx, cancel := context.WithTimeout(context.Background(), c.conf.DialTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.node.URL(), nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.status != Connecting {
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.fail(err)
		return
	}

	c.conn = conn

	go c.readLoop(gen, conn)
}

func (c *WebSocketClient) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.connectionLost(gen, err)
			return
		}

		c.handleMessage(gen, msg)
	}
}

type methodPeek struct {
	Method string `json:"method"`
}

func (c *WebSocketClient) handleMessage(gen uint64, msg []byte) {
	var peek methodPeek
	if err := json.Unmarshal(msg, &peek); err != nil {
		c.logger.WithError(err).Debug("Ignoring malformed message")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}

	if peek.Method == welcomeMethod {
		if c.status == Connecting {
			c.setStatus(Ready)
			c.flush()
		}
		return
	}

	for _, l := range c.listeners {
		l.feed.Send(msg)
	}
}

// flush writes queued messages in order. A failed write drops the rest, as
// the read loop then fails the connection. Must be called with mu held.
func (c *WebSocketClient) flush() {
	queue := c.queue
	c.queue = nil

	for _, msg := range queue {
		if err := c.write(msg); err != nil {
			return
		}
	}

	if len(queue) > 0 {
		c.logger.WithField("messages", len(queue)).Debug("Flushed queue")
	}
}

// write must be called with mu held.
func (c *WebSocketClient) write(msg []byte) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.conf.WriteTimeout))

	if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		c.logger.WithError(err).Debug("Write failed")
		// the read loop reports the failure
		c.conn.Close()
		return err
	}

	return nil
}

func (c *WebSocketClient) connectionLost(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}

	c.conn = nil
	c.fail(err)
}

// fail must be called with mu held.
func (c *WebSocketClient) fail(err error) {
	c.logger.WithError(err).Debug("Connection failed")

	c.failedAt = time.Now()
	c.setStatus(Failed)
	c.dropQueue()
	c.endListeners(ErrConnectionClosed)

	gen := c.generation
	c.stopQuarantine()
	c.quarantine = time.AfterFunc(c.conf.QuarantineWindow, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.generation == gen && c.status == Failed && !c.shutdown {
			c.setStatus(Disconnected)
		}
	})
}

// dropQueue discards messages meant for a connection that is gone. Their
// senders learn it through their listeners. Must be called with mu held.
func (c *WebSocketClient) dropQueue() {
	if len(c.queue) > 0 {
		c.logger.WithField("messages", len(c.queue)).Debug("Dropping queued messages")
	}
	c.queue = nil
}

func (c *WebSocketClient) stopQuarantine() {
	if c.quarantine != nil {
		c.quarantine.Stop()
		c.quarantine = nil
	}
}

// setStatus must be called with mu held, which keeps status notifications in
// transition order.
func (c *WebSocketClient) setStatus(s Status) {
	if c.status == s {
		return
	}

	c.logger.WithFields(logrus.Fields{
		"from": c.status,
		"to":   s,
	}).Debug("Status")

	c.status = s
	c.statusFeed.Send(s)
}

func (c *WebSocketClient) endListeners(err error) {
	for id, l := range c.listeners {
		delete(c.listeners, id)
		l.end(err)
	}
}

func (c *WebSocketClient) removeListener(id uint64) {
	c.mu.Lock()
	delete(c.listeners, id)
	c.mu.Unlock()
}

// Listener receives every message pushed by the node while it is registered.
type Listener struct {
	id     uint64
	client *WebSocketClient
	feed   *common.Feed[[]byte]
	sub    *common.Subscription[[]byte]
}

func newListener(client *WebSocketClient, id uint64) *Listener {
	feed := common.NewFeed[[]byte](common.ReplayNone)
	return &Listener{
		id:     id,
		client: client,
		feed:   feed,
		sub:    feed.Subscribe(),
	}
}

// C delivers messages in arrival order. It is closed when the listener is
// closed or the connection goes away.
func (l *Listener) C() <-chan []byte {
	return l.sub.C()
}

// Err returns why C was closed: ErrConnectionClosed, ErrTransportShutdown, or
// nil if the listener was closed by its owner.
func (l *Listener) Err() error {
	return l.sub.Err()
}

// Close unregisters the listener.
func (l *Listener) Close() {
	l.client.removeListener(l.id)
	l.sub.Close()
}

func (l *Listener) end(err error) {
	l.feed.End(err)
}
