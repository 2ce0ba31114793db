package ledger

import (
	"github.com/sirupsen/logrus"
)

// Ledger bundles the local view of the ledger kept in sync through an
// ActionBus.
type Ledger struct {
	AtomStore     AtomStore
	AtomPuller    *AtomPuller
	ParticleStore *ParticleStore
	AtomSubmitter *AtomSubmitter
}

// NewLedger ...
func NewLedger(bus ActionBus, store AtomStore, logger *logrus.Entry) *Ledger {
	logger = logger.WithField("prefix", "ledger")

	return &Ledger{
		AtomStore:     store,
		AtomPuller:    NewAtomPuller(bus, store, logger),
		ParticleStore: NewParticleStore(store),
		AtomSubmitter: NewAtomSubmitter(bus, logger),
	}
}

// Close stops every pull and closes the stores.
func (l *Ledger) Close() error {
	l.AtomPuller.Close()
	l.ParticleStore.Close()
	return l.AtomStore.Close()
}
