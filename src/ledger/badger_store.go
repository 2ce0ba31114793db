package ledger

import (
	"fmt"
	"strings"

	"github.com/dgraph-io/badger"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/common"
	"github.com/sirupsen/logrus"
)

const observationPrefix = "obs"

// BadgerAtomStore implements the AtomStore interface with a persistent Badger
// database behind an InmemAtomStore. The logs found in the database are
// loaded into memory when the store is opened.
type BadgerAtomStore struct {
	inmemStore *InmemAtomStore
	db         *badger.DB
	path       string
	logger     *logrus.Entry
}

// NewBadgerAtomStore opens an existing database or creates a new one if
// nothing is found in path.
func NewBadgerAtomStore(path string, logger *logrus.Entry) (*BadgerAtomStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithField("ns", "badger"))
	} else {
		opts = opts.WithLogger(nil)
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerAtomStore{
		inmemStore: NewInmemAtomStore(),
		db:         handle,
		path:       path,
		logger:     logger,
	}

	if err := store.dbLoad(); err != nil {
		handle.Close()
		return nil, err
	}

	return store, nil
}

//==============================================================================
//Keys

func observationKey(address string, index int) []byte {
	return []byte(fmt.Sprintf("%s_%s_%09d", observationPrefix, address, index))
}

func addressFromKey(key []byte) (atom.Address, error) {
	parts := strings.Split(string(key), "_")
	if len(parts) != 3 {
		return atom.Address{}, common.NewStoreErr("AtomObservation", common.Corrupted, string(key))
	}
	return atom.ParseAddress(parts[1])
}

//==============================================================================
//Implement the AtomStore interface

// Store implements the AtomStore interface. The observation is only persisted
// once the in-memory log has accepted it.
func (s *BadgerAtomStore) Store(address atom.Address, o atom.AtomObservation) error {
	index, err := s.inmemStore.add(address, o)
	if err != nil || index < 0 {
		return err
	}

	return s.dbSetObservation(address, index, o)
}

// Atoms implements the AtomStore interface.
func (s *BadgerAtomStore) Atoms(address atom.Address) *common.Subscription[atom.AtomObservation] {
	return s.inmemStore.Atoms(address)
}

// Len returns the number of observations logged for address.
func (s *BadgerAtomStore) Len(address atom.Address) int {
	return s.inmemStore.Len(address)
}

// Close implements the AtomStore interface.
func (s *BadgerAtomStore) Close() error {
	if err := s.inmemStore.Close(); err != nil {
		return err
	}
	return s.db.Close()
}

// StorePath returns the directory of the database.
func (s *BadgerAtomStore) StorePath() string {
	return s.path
}

//++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++
//DB Methods

func (s *BadgerAtomStore) dbSetObservation(address atom.Address, index int, o atom.AtomObservation) error {
	val, err := o.MarshalDB()
	if err != nil {
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	if err := tx.Set(observationKey(address.String(), index), val); err != nil {
		return err
	}

	return tx.Commit()
}

// dbLoad replays every persisted observation into the in-memory store. Keys
// sort by address then index, so each log is rebuilt in order.
func (s *BadgerAtomStore) dbLoad() error {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(observationPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			address, err := addressFromKey(item.Key())
			if err != nil {
				return err
			}

			err = item.Value(func(data []byte) error {
				var o atom.AtomObservation
				if err := o.UnmarshalDB(data); err != nil {
					return err
				}
				_, err := s.inmemStore.add(address, o)
				return err
			})
			if err != nil {
				return err
			}

			count++
		}
		return nil
	})

	if err == nil && s.logger != nil {
		s.logger.WithField("observations", count).Debug("Loaded atom store")
	}

	return err
}
