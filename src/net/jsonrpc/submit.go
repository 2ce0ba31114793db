package jsonrpc

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
)

// SubmissionSubscription streams the states of an atom submission. It
// completes after the first terminal state.
type SubmissionSubscription struct {
	sub *subscription[SubmissionUpdate]
}

// SubmitAtom calls Universe.submitAtomAndSubscribe. It returns once the node
// has acknowledged the submission; a node error at that point is returned as
// an *Error.
func (c *Client) SubmitAtom(ctx context.Context, a *atom.Atom) (*SubmissionSubscription, error) {
	subscriberID := uuid.New().String()

	sub, err := subscribe(
		ctx,
		c,
		MethodSubmitAndSubscribe,
		SubmitAtomRequest{
			SubscriberID: subscriberID,
			Atom:         a,
		},
		subscriberID,
		NotificationSubmission,
		decodeSubmissionNotification,
	)
	if err != nil {
		return nil, err
	}

	return &SubmissionSubscription{
		sub: sub,
	}, nil
}

func decodeSubmissionNotification(params json.RawMessage) ([]SubmissionUpdate, bool, error) {
	var n SubmissionNotification
	if err := json.Unmarshal(params, &n); err != nil {
		return nil, false, err
	}

	state, err := ParseSubmissionState(n.Value)
	if err != nil {
		return nil, false, err
	}

	update := SubmissionUpdate{
		State: state,
		Data:  n.Data,
	}

	return []SubmissionUpdate{update}, state.IsTerminal(), nil
}

// SubscriberID ...
func (s *SubmissionSubscription) SubscriberID() string {
	return s.sub.id
}

// C delivers submission updates. It is closed after a terminal state, or when
// the connection drops, in which case Err is set.
func (s *SubmissionSubscription) C() <-chan SubmissionUpdate {
	return s.sub.reader.C()
}

// Err ...
func (s *SubmissionSubscription) Err() error {
	return s.sub.reader.Err()
}

// Close stops listening for updates.
func (s *SubmissionSubscription) Close() {
	s.sub.close()
}
