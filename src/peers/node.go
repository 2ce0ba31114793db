package peers

import (
	"fmt"
	"net"
	"strconv"
)

// Node is a Radix node reachable over a WebSocket. It is an immutable value.
type Node struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	UseTLS bool   `json:"tls,omitempty"`
}

// NewNode ...
func NewNode(host string, port int, useTLS bool) Node {
	return Node{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
	}
}

// ParseNode parses a host:port string.
func ParseNode(hostPort string, useTLS bool) (Node, error) {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return Node{}, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Node{}, fmt.Errorf("invalid port in %q", hostPort)
	}

	return NewNode(host, port, useTLS), nil
}

// Key identifies the node in registries and state maps. Two nodes with the
// same host and port share a Key whatever their TLS flag.
func (n Node) Key() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

// Equal compares host and port.
func (n Node) Equal(o Node) bool {
	return n.Host == o.Host && n.Port == o.Port
}

// URL is the WebSocket endpoint of the node's JSON-RPC API.
func (n Node) URL() string {
	scheme := "ws"
	if n.UseTLS {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s/rpc", scheme, n.Key())
}

func (n Node) String() string {
	return n.Key()
}

// ExcludeNode returns nodes without n.
func ExcludeNode(nodes []Node, n Node) []Node {
	res := make([]Node, 0, len(nodes))
	for _, o := range nodes {
		if !o.Equal(n) {
			res = append(res, o)
		}
	}
	return res
}
