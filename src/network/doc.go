// Package network keeps track of the Radix nodes a client knows about and
// drives every interaction with them.
//
// All state lives in an immutable NetworkState, replaced by Reduce for every
// NodeAction dispatched to the Controller. Reduce is the only place where
// state changes. Everything else happens in epics: long running goroutines
// that receive every action, read the current state and emit new actions.
//
//	DiscoveryEpic      DiscoverMoreNodes -> AddNode
//	ConnectionEpic     ConnectWebSocket/CloseWebSocket -> WebSocketStatusChanged
//	NodeInfoEpic       Ready -> GetNodeInfoResult, GetUniverseConfigResult
//	FindANodeEpic      FindSuitableNodeRequest -> FindSuitableNodeResult
//	AtomFetchEpic      FetchAtomsRequest -> FetchAtomsObservation
//	AtomSubmitEpic     SubmitAtomRequest -> SubmitAtomStatus
//
// Actions emitted by epics go through the same queue as the ones dispatched
// from outside, so every observer sees a single ordered stream.
package network
