// Package jsonrpc implements the Radix node API: JSON-RPC 2.0 over the
// WebSocket transport of the net package.
//
// Plain calls (Network.getInfo, Network.getLivePeers, Universe.getUniverse,
// Ledger.getAtom) register a listener on the transport for the duration of the
// call and match the response by request id.
//
// Subscriptions (Atoms.subscribeUpdate, Universe.submitAtomAndSubscribe) are
// keyed by a client generated subscriberId. The node acknowledges the request
// and then pushes notifications carrying that subscriberId, which the client
// turns into a stream. Notifications can arrive before the acknowledgement;
// they are buffered, never lost.
//
// Errors returned by the node are *Error values. Transport failures surface as
// the errors of the net package (net.ErrConnectionClosed, net.ErrNotConnected)
// and are never wrapped into an *Error.
package jsonrpc
