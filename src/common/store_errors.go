package common

import (
	"errors"
	"fmt"
)

// StoreErrType ...
type StoreErrType uint32

const (
	// Closed ...
	Closed StoreErrType = iota
	// Rejected is returned when an entry is refused by the store's validation
	// rules.
	Rejected
	// Corrupted ...
	Corrupted
)

// StoreErr ...
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr ...
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Type returns the kind of failure.
func (e StoreErr) Type() StoreErrType {
	return e.errType
}

// Error ...
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case Closed:
		m = "Closed"
	case Rejected:
		m = "Rejected"
	case Corrupted:
		m = "Corrupted"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that it's code matches
// the provided StoreErr code. Wrapped errors are unwrapped.
func IsStore(err error, t StoreErrType) bool {
	var storeErr StoreErr
	return errors.As(err, &storeErr) && storeErr.errType == t
}
