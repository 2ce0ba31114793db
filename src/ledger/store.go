package ledger

import (
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
)

// AtomStore is an interface for backend stores of atom observations.
type AtomStore interface {
	// Store appends an observation to the log of address. Consecutive
	// duplicates are ignored. Store and Delete observations that carry no
	// atom, no particle groups, or that do not touch address are refused with
	// a Rejected StoreErr.
	Store(address atom.Address, o atom.AtomObservation) error
	// Atoms replays the log of address, then follows new observations.
	Atoms(address atom.Address) *common.Subscription[atom.AtomObservation]
	// Close ends every subscription and releases the store.
	Close() error
}

// validate checks that o can be stored under address.
func validate(address atom.Address, o atom.AtomObservation) error {
	if o.IsHead() || o.IsResync() {
		return nil
	}

	a := o.Atom()
	if a == nil || len(a.ParticleGroups) == 0 || !a.Touches(address) {
		return common.NewStoreErr("AtomObservation", common.Rejected, address.String())
	}

	return nil
}
