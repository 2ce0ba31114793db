package network

import (
	"context"
	"sync"
	"time"

	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/net/jsonrpc"
	"github.com/radixdlt/radix-go/src/peers"
	"github.com/sirupsen/logrus"
)

// AtomSubmitEpic serves SubmitAtomRequests: it finds a node serving the atom's
// shards, submits the atom there and republishes every submission update as a
// SubmitAtomStatus. Any transport or node error ends the request with a Failed
// update.
type AtomSubmitEpic struct {
	clients        *NodeClients
	requestTimeout time.Duration
	logger         *logrus.Entry

	selections *selections
}

// NewAtomSubmitEpic ...
func NewAtomSubmitEpic(clients *NodeClients, requestTimeout time.Duration, logger *logrus.Entry) *AtomSubmitEpic {
	return &AtomSubmitEpic{
		clients:        clients,
		requestTimeout: requestTimeout,
		logger:         logger.WithField("epic", "submit"),
		selections:     newSelections(),
	}
}

// Run implements Epic.
func (e *AtomSubmitEpic) Run(ctx context.Context, actions <-chan NodeAction, state StateSource, out chan<- NodeAction) {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-actions:
			if !ok {
				return
			}

			switch a := a.(type) {
			case SubmitAtomRequest:
				wg.Add(1)
				go func() {
					defer wg.Done()
					e.submit(ctx, a, out)
				}()

			case FindSuitableNodeResult:
				e.selections.deliver(a)
			}
		}
	}
}

func (e *AtomSubmitEpic) submit(ctx context.Context, req SubmitAtomRequest, out chan<- NodeAction) {
	logger := e.logger.WithFields(logrus.Fields{
		"id":   req.ID,
		"atom": req.Atom.HID(),
	})

	status := func(node peers.Node, u jsonrpc.SubmissionUpdate) bool {
		return emit(ctx, out, SubmitAtomStatus{
			ID:     req.ID,
			Atom:   req.Atom,
			Node:   node,
			Update: u,
		})
	}

	node, err := e.selections.request(ctx, out, req.ID, req.Atom.Shards())
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.WithError(err).Debug("No node")
		status(node, jsonrpc.NewFailedUpdate(err))
		return
	}

	sub, err := e.open(ctx, node, req)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.WithError(err).WithField("node", node.Key()).Debug("Submission failed")
		status(node, jsonrpc.NewFailedUpdate(err))
		return
	}

	defer emit(ctx, out, CloseWebSocket{Node: node})
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-sub.C():
			if !ok {
				err := sub.Err()
				if err == nil {
					err = net.ErrConnectionClosed
				}
				status(node, jsonrpc.NewFailedUpdate(err))
				return
			}

			if !status(node, u) || u.State.IsTerminal() {
				return
			}
		}
	}
}

func (e *AtomSubmitEpic) open(ctx context.Context, node peers.Node, req SubmitAtomRequest) (*jsonrpc.SubmissionSubscription, error) {
	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	// the submission's own listener keeps the socket open once it is made
	release := e.clients.Hold(node)
	defer release()

	if err := e.clients.WaitReady(ctx, node); err != nil {
		return nil, err
	}

	return e.clients.Client(node).SubmitAtom(ctx, req.Atom)
}
