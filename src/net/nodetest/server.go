// Package nodetest provides an in-process Radix node speaking JSON-RPC over
// WebSocket, for use in tests.
package nodetest

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/radixdlt/radix-go/src/peers"
)

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Request is a JSON-RPC request as received by the node.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Handler answers a request. Returning a nil result and a nil error sends a
// null result.
type Handler func(s *Session, req Request) (interface{}, *Error)

// Server is a fake Radix node.
type Server struct {
	t   testing.TB
	srv *httptest.Server

	upgrader websocket.Upgrader

	mu        sync.Mutex
	handlers  map[string]Handler
	sessions  []*Session
	noWelcome bool
	sessionCh chan *Session
}

// NewServer starts a node. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		t:         t,
		handlers:  make(map[string]Handler),
		sessionCh: make(chan *Session, 64),
	}

	s.srv = httptest.NewServer(http.HandlerFunc(s.serveWS))
	t.Cleanup(s.Close)

	return s
}

// Node returns the node reachable at the server address.
func (s *Server) Node() peers.Node {
	host, portStr, err := net.SplitHostPort(s.srv.Listener.Addr().String())
	if err != nil {
		s.t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)
	return peers.NewNode(host, port, false)
}

// Handle registers h for method.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	s.handlers[method] = h
	s.mu.Unlock()
}

// HandleResult answers method with a fixed result.
func (s *Server) HandleResult(method string, result interface{}) {
	s.Handle(method, func(*Session, Request) (interface{}, *Error) {
		return result, nil
	})
}

// SetWelcome controls whether new sessions receive Radix.welcome.
func (s *Server) SetWelcome(welcome bool) {
	s.mu.Lock()
	s.noWelcome = !welcome
	s.mu.Unlock()
}

// Sessions returns the sessions opened so far.
func (s *Server) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session(nil), s.sessions...)
}

// WaitSession waits for the next session to be opened.
func (s *Server) WaitSession(timeout time.Duration) *Session {
	select {
	case sess := <-s.sessionCh:
		return sess
	case <-time.After(timeout):
		s.t.Fatalf("no session opened after %v", timeout)
		return nil
	}
}

// Close stops the server and drops every session.
func (s *Server) Close() {
	for _, sess := range s.Sessions() {
		sess.Drop()
	}
	s.srv.CloseClientConnections()
	s.srv.Close()
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sess := &Session{
		server:   s,
		conn:     conn,
		received: make(chan Request, 256),
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	welcome := !s.noWelcome
	s.mu.Unlock()

	if welcome {
		sess.Welcome()
	}

	s.sessionCh <- sess

	sess.serve()
}

// Session is one client connection to the node.
type Session struct {
	server *Server
	conn   *websocket.Conn

	writeMu  sync.Mutex
	received chan Request
}

// Received delivers every request, in order.
func (s *Session) Received() <-chan Request {
	return s.received
}

// WaitRequest waits for the next request.
func (s *Session) WaitRequest(timeout time.Duration) Request {
	select {
	case req := <-s.received:
		return req
	case <-time.After(timeout):
		s.server.t.Fatalf("no request received after %v", timeout)
		return Request{}
	}
}

// Welcome pushes Radix.welcome.
func (s *Session) Welcome() {
	s.Push("Radix.welcome", map[string]string{"message": "Hello!"})
}

// Push sends a notification.
func (s *Session) Push(method string, params interface{}) {
	s.write(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

// WriteRaw sends data as is.
func (s *Session) WriteRaw(data []byte) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.WriteMessage(websocket.TextMessage, data)
}

// Drop closes the socket without a close handshake.
func (s *Session) Drop() {
	s.conn.Close()
}

func (s *Session) write(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.server.t.Errorf("encoding message: %v", err)
		return
	}
	s.WriteRaw(data)
}

func (s *Session) serve() {
	defer close(s.received)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			continue
		}

		select {
		case s.received <- req:
		default:
		}

		s.server.mu.Lock()
		h, ok := s.server.handlers[req.Method]
		s.server.mu.Unlock()

		if len(req.ID) == 0 {
			continue
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}

		switch {
		case !ok:
			resp["error"] = &Error{Code: -32601, Message: "Method not found"}
		default:
			result, rpcErr := h(s, req)
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
		}

		s.write(resp)
	}
}
