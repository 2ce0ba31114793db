package jsonrpc

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
)

// AtomSubscription streams the observations of an Atoms.subscribeUpdate
// subscription.
type AtomSubscription struct {
	client *Client
	sub    *subscription[atom.AtomObservation]
}

// ObserveAtoms subscribes to the atoms of address. It returns once the node has
// acknowledged the subscription.
func (c *Client) ObserveAtoms(ctx context.Context, address atom.Address) (*AtomSubscription, error) {
	subscriberID := uuid.New().String()

	sub, err := subscribe(
		ctx,
		c,
		MethodSubscribeAtoms,
		AtomsSubscribeRequest{
			SubscriberID: subscriberID,
			Address:      address,
		},
		subscriberID,
		NotificationAtoms,
		c.decodeAtomsNotification,
	)
	if err != nil {
		return nil, err
	}

	return &AtomSubscription{
		client: c,
		sub:    sub,
	}, nil
}

func (c *Client) decodeAtomsNotification(params json.RawMessage) ([]atom.AtomObservation, bool, error) {
	var n AtomsNotification
	if err := json.Unmarshal(params, &n); err != nil {
		return nil, false, err
	}

	now := c.now()
	res := make([]atom.AtomObservation, 0, len(n.AtomEvents)+1)

	for _, e := range n.AtomEvents {
		kind, err := atom.ParseObservationType(e.Type)
		if err != nil {
			return nil, false, err
		}

		switch kind {
		case atom.Store:
			res = append(res, atom.NewStore(e.Atom, e.Soft, now))
		case atom.Delete:
			res = append(res, atom.NewDelete(e.Atom, e.Soft, now))
		case atom.Head:
			res = append(res, atom.NewHead(now))
		case atom.Resync:
			res = append(res, atom.NewResync(now))
		}
	}

	if n.IsHead {
		res = append(res, atom.NewHead(now))
	}

	return res, false, nil
}

// SubscriberID ...
func (s *AtomSubscription) SubscriberID() string {
	return s.sub.id
}

// C delivers observations in the order the node sent them. It is closed when
// the subscription is cancelled or the connection drops, see Err.
func (s *AtomSubscription) C() <-chan atom.AtomObservation {
	return s.sub.reader.C()
}

// Err is nil after Cancel, and the transport error after a connection drop.
func (s *AtomSubscription) Err() error {
	return s.sub.reader.Err()
}

// Cancel asks the node to stop the subscription and releases it locally. The
// subscription is released even if the cancel request fails.
func (s *AtomSubscription) Cancel(ctx context.Context) error {
	defer func() {
		s.sub.close()
	}()

	return s.client.call(ctx, MethodCancelAtoms, AtomsCancelRequest{SubscriberID: s.sub.id}, nil)
}
