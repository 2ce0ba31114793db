package jsonrpc

import (
	"encoding/json"

	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/peers"
)

// Method names.
const (
	MethodGetInfo            = "Network.getInfo"
	MethodGetLivePeers       = "Network.getLivePeers"
	MethodGetUniverse        = "Universe.getUniverse"
	MethodGetAtom            = "Ledger.getAtom"
	MethodSubscribeAtoms     = "Atoms.subscribeUpdate"
	MethodCancelAtoms        = "Atoms.cancel"
	MethodSubmitAndSubscribe = "Universe.submitAtomAndSubscribe"

	NotificationAtoms      = "Atoms.subscribeUpdate"
	NotificationSubmission = "AtomSubmissionState.onNext"
)

// LivePeer is an entry of Network.getLivePeers.
type LivePeer struct {
	Host string          `json:"host"`
	Port int             `json:"port"`
	Info *peers.NodeInfo `json:"info,omitempty"`
}

// Node returns the peer as a Node.
func (p LivePeer) Node(useTLS bool) peers.Node {
	return peers.NewNode(p.Host, p.Port, useTLS)
}

// GetAtomRequest is the parameter of Ledger.getAtom.
type GetAtomRequest struct {
	AID string `json:"aid"`
}

// AtomsSubscribeRequest starts an Atoms.subscribeUpdate subscription.
type AtomsSubscribeRequest struct {
	SubscriberID string       `json:"subscriberId"`
	Address      atom.Address `json:"address"`
}

// AtomsCancelRequest ends an Atoms.subscribeUpdate subscription.
type AtomsCancelRequest struct {
	SubscriberID string `json:"subscriberId"`
}

// SubmitAtomRequest is the parameter of Universe.submitAtomAndSubscribe.
type SubmitAtomRequest struct {
	SubscriberID string     `json:"subscriberId"`
	Atom         *atom.Atom `json:"atom"`
}

// AtomEvent is a single update in an AtomsNotification.
type AtomEvent struct {
	Type string     `json:"type"`
	Atom *atom.Atom `json:"atom"`
	Soft bool       `json:"soft,omitempty"`
}

// AtomsNotification is pushed on Atoms.subscribeUpdate.
type AtomsNotification struct {
	SubscriberID string      `json:"subscriberId"`
	AtomEvents   []AtomEvent `json:"atomEvents"`
	IsHead       bool        `json:"isHead"`
}

// SubmissionNotification is pushed on AtomSubmissionState.onNext.
type SubmissionNotification struct {
	SubscriberID string          `json:"subscriberId"`
	Value        string          `json:"value"`
	Data         json.RawMessage `json:"data,omitempty"`
}
