package network

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/radixdlt/radix-go/src/atom"
	"github.com/radixdlt/radix-go/src/net"
	"github.com/radixdlt/radix-go/src/net/jsonrpc"
	"github.com/radixdlt/radix-go/src/peers"
)

// NodeAction is an event on the controller's action bus. The set of actions is
// closed: only the types of this package implement it.
type NodeAction interface {
	// Name identifies the action type in logs and metrics.
	Name() string
	nodeAction()
}

// DiscoverMoreNodes asks for seed nodes to be contacted and their live peers
// added to the network state.
type DiscoverMoreNodes struct{}

// AddNode registers a node, optionally with the info it advertised.
type AddNode struct {
	Node peers.Node
	Info *peers.NodeInfo
}

// GetNodeInfoResult carries the answer to Network.getInfo.
type GetNodeInfoResult struct {
	Node peers.Node
	Info peers.NodeInfo
}

// GetUniverseConfigResult carries the answer to Universe.getUniverse.
type GetUniverseConfigResult struct {
	Node     peers.Node
	Universe atom.UniverseConfig
}

// ConnectWebSocket asks for a connection to Node.
type ConnectWebSocket struct {
	Node peers.Node
}

// CloseWebSocket asks for the connection to Node to be closed. It is only
// honored if nothing is listening on the connection.
type CloseWebSocket struct {
	Node peers.Node
}

// WebSocketStatusChanged reports a transition of a node's connection.
type WebSocketStatusChanged struct {
	Node   peers.Node
	Status net.Status
}

// FindSuitableNodeRequest asks for a Ready node serving one of Shards.
type FindSuitableNodeRequest struct {
	ID     uuid.UUID
	Shards []int64
}

// FindSuitableNodeResult answers the FindSuitableNodeRequest with the same ID.
// Err is set, and Node is zero, when no node could be found.
type FindSuitableNodeResult struct {
	ID   uuid.UUID
	Node peers.Node
	Err  error
}

// FetchAtomsRequest starts streaming the atoms of Address.
type FetchAtomsRequest struct {
	ID      uuid.UUID
	Address atom.Address
}

// FetchAtomsObservation carries one observation for a FetchAtomsRequest.
type FetchAtomsObservation struct {
	ID          uuid.UUID
	Address     atom.Address
	Node        peers.Node
	Observation atom.AtomObservation
}

// FetchAtomsCancel stops the FetchAtomsRequest with the same ID.
type FetchAtomsCancel struct {
	ID      uuid.UUID
	Address atom.Address
}

// FetchAtomsFailed ends a FetchAtomsRequest that can not be served.
type FetchAtomsFailed struct {
	ID      uuid.UUID
	Address atom.Address
	Err     error
}

// SubmitAtomRequest submits Atom to a node serving its shards.
type SubmitAtomRequest struct {
	ID   uuid.UUID
	Atom *atom.Atom
}

// SubmitAtomStatus carries one update of a SubmitAtomRequest. The last update
// of a request is the first one with a terminal state.
type SubmitAtomStatus struct {
	ID     uuid.UUID
	Atom   *atom.Atom
	Node   peers.Node
	Update jsonrpc.SubmissionUpdate
}

func (DiscoverMoreNodes) nodeAction()       {}
func (AddNode) nodeAction()                 {}
func (GetNodeInfoResult) nodeAction()       {}
func (GetUniverseConfigResult) nodeAction() {}
func (ConnectWebSocket) nodeAction()        {}
func (CloseWebSocket) nodeAction()          {}
func (WebSocketStatusChanged) nodeAction()  {}
func (FindSuitableNodeRequest) nodeAction() {}
func (FindSuitableNodeResult) nodeAction()  {}
func (FetchAtomsRequest) nodeAction()       {}
func (FetchAtomsObservation) nodeAction()   {}
func (FetchAtomsCancel) nodeAction()        {}
func (FetchAtomsFailed) nodeAction()        {}
func (SubmitAtomRequest) nodeAction()       {}
func (SubmitAtomStatus) nodeAction()        {}

// Name ...
func (DiscoverMoreNodes) Name() string { return "DISCOVER_MORE_NODES" }

// Name ...
func (AddNode) Name() string { return "ADD_NODE" }

// Name ...
func (GetNodeInfoResult) Name() string { return "GET_NODE_INFO_RESULT" }

// Name ...
func (GetUniverseConfigResult) Name() string { return "GET_UNIVERSE_CONFIG_RESULT" }

// Name ...
func (ConnectWebSocket) Name() string { return "CONNECT_WEBSOCKET" }

// Name ...
func (CloseWebSocket) Name() string { return "CLOSE_WEBSOCKET" }

// Name ...
func (WebSocketStatusChanged) Name() string { return "WEBSOCKET_STATUS_CHANGED" }

// Name ...
func (FindSuitableNodeRequest) Name() string { return "FIND_SUITABLE_NODE_REQUEST" }

// Name ...
func (FindSuitableNodeResult) Name() string { return "FIND_SUITABLE_NODE_RESULT" }

// Name ...
func (FetchAtomsRequest) Name() string { return "FETCH_ATOMS_REQUEST" }

// Name ...
func (FetchAtomsObservation) Name() string { return "FETCH_ATOMS_OBSERVATION" }

// Name ...
func (FetchAtomsCancel) Name() string { return "FETCH_ATOMS_CANCEL" }

// Name ...
func (FetchAtomsFailed) Name() string { return "FETCH_ATOMS_FAILED" }

// Name ...
func (SubmitAtomRequest) Name() string { return "SUBMIT_ATOM_REQUEST" }

// Name ...
func (SubmitAtomStatus) Name() string { return "SUBMIT_ATOM_STATUS" }

func (a WebSocketStatusChanged) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Name(), a.Node, a.Status)
}

func (a FetchAtomsObservation) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Name(), a.Address, a.Observation)
}

func (a SubmitAtomStatus) String() string {
	return fmt.Sprintf("%s(%s, %s)", a.Name(), a.Atom.HID(), a.Update)
}
