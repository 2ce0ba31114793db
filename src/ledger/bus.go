package ledger

import (
	"errors"

	"github.com/radixdlt/radix-go/src/common"
	"github.com/radixdlt/radix-go/src/network"
)

// ActionBus is the part of the network controller the ledger talks to.
type ActionBus interface {
	Dispatch(action network.NodeAction)
	ObserveActions() *common.Subscription[network.NodeAction]
}

// ErrClosed ends the streams of the ledger once it, or the controller behind
// it, is closed.
var ErrClosed = errors.New("ledger closed")
