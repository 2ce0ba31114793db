// Package net implements the WebSocket transport used to talk to Radix nodes.
//
// Every node gets one WebSocketClient, held by the WebSockets registry. A
// client goes through the following statuses:
//
//	Disconnected -> Connecting -> Ready -> Closing -> Disconnected
//
// and can drop to Failed from Connecting or Ready when the socket breaks. A
// Failed client is quarantined: Connect returns ErrQuarantined until the
// quarantine window has elapsed, at which point the client moves back to
// Disconnected by itself.
//
// A freshly dialed socket is not Ready until the node has pushed its
// Radix.welcome notification. Messages sent in the meantime are queued and
// flushed in order. The welcome itself is never delivered to listeners.
//
// Listeners receive every other message pushed by the node. The JSON-RPC
// client registers one for the duration of each call or subscription, and a
// client with listeners refuses to Close.
package net
