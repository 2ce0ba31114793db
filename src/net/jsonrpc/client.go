package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// Transport is the part of net.WebSocketClient the Client relies on.
type Transport interface {
	Send(msg []byte) error
	Listen() *net.Listener
}

// Client issues JSON-RPC calls and subscriptions over a Transport.
type Client struct {
	transport Transport
	logger    *logrus.Entry

	// now stamps received observations
	now func() time.Time
}

// NewClient ...
func NewClient(transport Transport, logger *logrus.Entry) *Client {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &Client{
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
}

// GetInfo calls Network.getInfo.
func (c *Client) GetInfo(ctx context.Context) (*peers.NodeInfo, error) {
	var info peers.NodeInfo
	if err := c.call(ctx, MethodGetInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetLivePeers calls Network.getLivePeers.
func (c *Client) GetLivePeers(ctx context.Context) ([]LivePeer, error) {
	var res []LivePeer
	if err := c.call(ctx, MethodGetLivePeers, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// GetUniverse calls Universe.getUniverse.
func (c *Client) GetUniverse(ctx context.Context) (*atom.UniverseConfig, error) {
	var u atom.UniverseConfig
	if err := c.call(ctx, MethodGetUniverse, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetAtom calls Ledger.getAtom with the hex id of an atom.
func (c *Client) GetAtom(ctx context.Context, hid string) (*atom.Atom, error) {
	var a atom.Atom
	if err := c.call(ctx, MethodGetAtom, GetAtomRequest{AID: hid}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	l := c.transport.Listen()
	defer l.Close()

	id := uuid.New().String()

	if err := c.send(id, method, params); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-l.C():
			if !ok {
				return listenerErr(l)
			}

			var msg message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}

			if !msg.isResponseTo(id) {
				continue
			}

			if msg.Error != nil {
				return msg.Error
			}

			if result == nil {
				return nil
			}

			if err := json.Unmarshal(msg.Result, result); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrMalformedMessage, method, err)
			}

			return nil
		}
	}
}

func (c *Client) send(id string, method string, params interface{}) error {
	data, err := json.Marshal(request{
		JSONRPC: version,
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"id":     id,
		"method": method,
	}).Debug("Send")

	return c.transport.Send(data)
}

func listenerErr(l *net.Listener) error {
	if err := l.Err(); err != nil {
		return err
	}
	return net.ErrConnectionClosed
}

// subscription is the machinery shared by atom and submission streams. The
// decode function turns a notification into values and reports whether the
// stream is complete.
type subscription[T any] struct {
	id       string
	listener *net.Listener
	feed     *common.Feed[T]
	reader   *common.Subscription[T]

	done      chan struct{}
	closeOnce sync.Once
}

func subscribe[T any](
	ctx context.Context,
	c *Client,
	method string,
	params interface{},
	subscriberID string,
	notification string,
	decode func(params json.RawMessage) ([]T, bool, error),
) (*subscription[T], error) {

	feed := common.NewFeed[T](common.ReplayNone)

	s := &subscription[T]{
		id:       subscriberID,
		listener: c.transport.Listen(),
		feed:     feed,
		reader:   feed.Subscribe(),
		done:     make(chan struct{}),
	}

	reqID := uuid.New().String()
	ack := make(chan error, 1)

	go s.run(c, reqID, notification, decode, ack)

	if err := c.send(reqID, method, params); err != nil {
		s.close()
		return nil, err
	}

	select {
	case <-ctx.Done():
		s.close()
		return nil, ctx.Err()
	case err := <-ack:
		if err != nil {
			s.close()
			return nil, err
		}
	}

	return s, nil
}

func (s *subscription[T]) run(
	c *Client,
	reqID string,
	notification string,
	decode func(params json.RawMessage) ([]T, bool, error),
	ack chan<- error,
) {
	acked := false
	complete := false

	defer func() {
		if !acked {
			ack <- listenerErr(s.listener)
		}
	}()

	for {
		select {
		case <-s.done:
			acked = true
			return
		case data, ok := <-s.listener.C():
			if !ok {
				s.feed.End(listenerErr(s.listener))
				return
			}

			var msg message
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}

			if !acked && msg.isResponseTo(reqID) {
				acked = true
				if msg.Error != nil {
					ack <- msg.Error
					return
				}
				ack <- nil
				if complete {
					s.listener.Close()
					return
				}
				continue
			}

			if complete || !msg.isNotification(notification) || msg.subscriberID() != s.id {
				continue
			}

			values, last, err := decode(msg.Params)
			if err != nil {
				c.logger.WithError(err).WithField("subscriberId", s.id).Warn("Bad notification")
				continue
			}

			for _, v := range values {
				s.feed.Send(v)
			}

			if last {
				complete = true
				s.feed.End(nil)
				if acked {
					s.listener.Close()
					return
				}
			}
		}
	}
}

func (s *subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.listener.Close()
		s.feed.End(nil)
		s.reader.Close()
	})
}
