package net

import "fmt"

// Status is the state of a WebSocket connection to a node.
//
//	Disconnected -> Connecting -> Ready -> Closing -> Disconnected
//	Connecting, Ready -> Failed -> (quarantine) -> Disconnected
type Status int

const (
	// Disconnected ...
	Disconnected Status = iota
	// Connecting covers both the dial and the wait for the welcome message.
	Connecting
	// Ready ...
	Ready
	// Closing ...
	Closing
	// Failed connections are quarantined before going back to Disconnected.
	Failed
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Ready:
		return "Ready"
	case Closing:
		return "Closing"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Statuses lists every Status, in declaration order.
var Statuses = []Status{Disconnected, Connecting, Ready, Closing, Failed}
