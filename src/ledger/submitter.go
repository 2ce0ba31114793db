package ledger

import (
	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/network"
	"github.com/sirupsen/logrus"
)

// AtomSubmitter submits atoms through the network controller.
type AtomSubmitter struct {
	bus    ActionBus
	logger *logrus.Entry
}

// NewAtomSubmitter ...
func NewAtomSubmitter(bus ActionBus, logger *logrus.Entry) *AtomSubmitter {
	return &AtomSubmitter{
		bus:    bus,
		logger: logger.WithField("component", "submitter"),
	}
}

// Submit sends a to a node serving its shards. The subscription yields every
// status update and completes after the first terminal one. Closing it early
// stops watching the submission but does not cancel it.
func (s *AtomSubmitter) Submit(a *atom.Atom) *common.Subscription[network.SubmitAtomStatus] {
	id := uuid.New()

	feed := common.NewFeed[network.SubmitAtomStatus](common.ReplayAll)
	sub := feed.Subscribe()

	actions := s.bus.ObserveActions()
	feed.OnEmpty(actions.Close)

	go func() {
		defer actions.Close()

		for action := range actions.C() {
			status, ok := action.(network.SubmitAtomStatus)
			if !ok || status.ID != id {
				continue
			}

			feed.Send(status)

			if status.Update.State.IsTerminal() {
				s.logger.WithFields(logrus.Fields{
					"atom":  a.HID(),
					"state": status.Update.State,
				}).Debug("Submission done")
				feed.End(nil)
				return
			}
		}

		feed.End(ErrClosed)
	}()

	s.bus.Dispatch(network.SubmitAtomRequest{ID: id, Atom: a})

	return sub
}
