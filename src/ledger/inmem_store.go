package ledger

import (
	"sync"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
)

// InmemAtomStore implements the AtomStore interface in memory. Logs are never
// truncated.
type InmemAtomStore struct {
	mu     sync.Mutex
	logs   map[string]*atomLog //address => log
	closed bool
}

type atomLog struct {
	feed *common.Feed[atom.AtomObservation]
	last atom.AtomObservation
	len  int
}

// NewInmemAtomStore ...
func NewInmemAtomStore() *InmemAtomStore {
	return &InmemAtomStore{
		logs: make(map[string]*atomLog),
	}
}

// Store implements the AtomStore interface.
func (s *InmemAtomStore) Store(address atom.Address, o atom.AtomObservation) error {
	_, err := s.add(address, o)
	return err
}

// add returns the position of o in the log of address, or -1 if o was a
// duplicate of the last entry.
func (s *InmemAtomStore) add(address atom.Address, o atom.AtomObservation) (int, error) {
	if err := validate(address, o); err != nil {
		return -1, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return -1, common.NewStoreErr("AtomStore", common.Closed, address.String())
	}

	l := s.log(address)
	if l.len > 0 && l.last.SameUpdate(o) {
		return -1, nil
	}

	l.feed.Send(o)
	l.last = o
	l.len++

	return l.len - 1, nil
}

// Atoms implements the AtomStore interface.
func (s *InmemAtomStore) Atoms(address atom.Address) *common.Subscription[atom.AtomObservation] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.log(address).feed.Subscribe()
}

// Len returns the number of observations logged for address.
func (s *InmemAtomStore) Len(address atom.Address) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.logs[address.String()]; ok {
		return l.len
	}
	return 0
}

// Close implements the AtomStore interface.
func (s *InmemAtomStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, l := range s.logs {
		l.feed.End(nil)
	}

	return nil
}

// log must be called with mu held. The feed of a closed store is created
// ended.
func (s *InmemAtomStore) log(address atom.Address) *atomLog {
	key := address.String()

	l, ok := s.logs[key]
	if !ok {
		l = &atomLog{feed: common.NewFeed[atom.AtomObservation](common.ReplayAll)}
		if s.closed {
			l.feed.End(nil)
		}
		s.logs[key] = l
	}

	return l
}
