package jsonrpc

import (
	"encoding/json"
)

const version = "2.0"

// request is sent by the client.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// message is anything received from the node: a response when ID is set, a
// notification when Method is set.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (m *message) isResponseTo(id string) bool {
	if len(m.ID) == 0 || m.Method != "" {
		return false
	}
	var s string
	if err := json.Unmarshal(m.ID, &s); err != nil {
		return false
	}
	return s == id
}

func (m *message) isNotification(method string) bool {
	return len(m.ID) == 0 && m.Method == method
}

// subscriberID extracts the subscriberId of a notification.
func (m *message) subscriberID() string {
	var peek struct {
		SubscriberID string `json:"subscriberId"`
	}
	if err := json.Unmarshal(m.Params, &peek); err != nil {
		return ""
	}
	return peek.SubscriberID
}
