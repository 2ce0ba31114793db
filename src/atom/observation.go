package atom

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ugorji/go/codec"
)

// ObservationType enumerates the kinds of AtomObservation.
type ObservationType int

const (
	// Store signals that an atom is now part of the address's history.
	Store ObservationType = iota
	// Delete signals that a previously stored atom was removed.
	Delete
	// Head marks the point where the node has sent everything it knew at the
	// time of subscription. Later observations are live.
	Head
	// Resync tells observers to discard everything seen so far and rebuild
	// from the observations that follow.
	Resync
)

func (t ObservationType) String() string {
	switch t {
	case Store:
		return "STORE"
	case Delete:
		return "DELETE"
	case Head:
		return "HEAD"
	case Resync:
		return "RESYNC"
	default:
		return fmt.Sprintf("ObservationType(%d)", int(t))
	}
}

// ParseObservationType converts the type string of an atom event.
func ParseObservationType(s string) (ObservationType, error) {
	switch s {
	case "store", "STORE":
		return Store, nil
	case "delete", "DELETE":
		return Delete, nil
	case "head", "HEAD":
		return Head, nil
	case "resync", "RESYNC":
		return Resync, nil
	}
	return 0, fmt.Errorf("unknown atom event type %q", s)
}

// AtomObservation is one event in the history of an address. It can only be
// built through NewStore, NewDelete, NewHead and NewResync, so Head and Resync
// observations never carry an atom.
type AtomObservation struct {
	kind       ObservationType
	atom       *Atom
	soft       bool
	receivedAt time.Time
}

// NewStore ...
func NewStore(a *Atom, soft bool, receivedAt time.Time) AtomObservation {
	return AtomObservation{
		kind:       Store,
		atom:       a,
		soft:       soft,
		receivedAt: receivedAt,
	}
}

// NewDelete ...
func NewDelete(a *Atom, soft bool, receivedAt time.Time) AtomObservation {
	return AtomObservation{
		kind:       Delete,
		atom:       a,
		soft:       soft,
		receivedAt: receivedAt,
	}
}

// NewHead ...
func NewHead(receivedAt time.Time) AtomObservation {
	return AtomObservation{
		kind:       Head,
		receivedAt: receivedAt,
	}
}

// NewResync ...
func NewResync(receivedAt time.Time) AtomObservation {
	return AtomObservation{
		kind:       Resync,
		receivedAt: receivedAt,
	}
}

// Type ...
func (o AtomObservation) Type() ObservationType {
	return o.kind
}

// Atom returns the observed atom, nil for Head and Resync.
func (o AtomObservation) Atom() *Atom {
	return o.atom
}

// IsSoft reports whether the node only tentatively accepted the atom.
func (o AtomObservation) IsSoft() bool {
	return o.soft
}

// ReceivedAt ...
func (o AtomObservation) ReceivedAt() time.Time {
	return o.receivedAt
}

// IsStore ...
func (o AtomObservation) IsStore() bool {
	return o.kind == Store
}

// IsDelete ...
func (o AtomObservation) IsDelete() bool {
	return o.kind == Delete
}

// IsHead ...
func (o AtomObservation) IsHead() bool {
	return o.kind == Head
}

// IsResync ...
func (o AtomObservation) IsResync() bool {
	return o.kind == Resync
}

// HasAtom reports whether the observation is a Store or Delete carrying an
// atom.
func (o AtomObservation) HasAtom() bool {
	return (o.kind == Store || o.kind == Delete) && o.atom != nil
}

// SameUpdate reports whether o and other describe the same ledger update:
// same kind, same atom hash and same softness. Reception times are ignored.
func (o AtomObservation) SameUpdate(other AtomObservation) bool {
	if o.kind != other.kind || o.soft != other.soft {
		return false
	}

	if o.atom == nil || other.atom == nil {
		return o.atom == nil && other.atom == nil
	}

	return bytes.Equal(o.atom.Hash(), other.atom.Hash())
}

func (o AtomObservation) String() string {
	if o.atom == nil {
		return fmt.Sprintf("%s@%d", o.kind, o.receivedAt.UnixNano())
	}
	return fmt.Sprintf("%s(%s, soft=%v)@%d", o.kind, o.atom.HID(), o.soft, o.receivedAt.UnixNano())
}

// observationWrapper is the stored form of an AtomObservation.
type observationWrapper struct {
	Kind       ObservationType
	Atom       *Atom
	Soft       bool
	ReceivedAt int64
}

// MarshalDB encodes the observation, atom included, for persistent storage.
func (o AtomObservation) MarshalDB() ([]byte, error) {
	wrapper := observationWrapper{
		Kind:       o.kind,
		Atom:       o.atom,
		Soft:       o.soft,
		ReceivedAt: o.receivedAt.UnixNano(),
	}

	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, cborHandle())
	if err := enc.Encode(wrapper); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalDB decodes the output of MarshalDB.
func (o *AtomObservation) UnmarshalDB(data []byte) error {
	var wrapper observationWrapper

	dec := codec.NewDecoder(bytes.NewBuffer(data), cborHandle())
	if err := dec.Decode(&wrapper); err != nil {
		return err
	}

	if wrapper.Kind < Store || wrapper.Kind > Resync {
		return fmt.Errorf("unknown observation type %d", wrapper.Kind)
	}

	o.kind = wrapper.Kind
	o.soft = wrapper.Soft
	o.receivedAt = time.Unix(0, wrapper.ReceivedAt)
	o.atom = nil
	if o.kind == Store || o.kind == Delete {
		o.atom = wrapper.Atom
	}

	return nil
}
