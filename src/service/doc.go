// Package service exposes a read-only HTTP API over the state of the network
// controller.
//
//  GET /nodes         every known node, sorted by host:port
//  GET /nodes/{node}  a single node, given as host:port
//  GET /stats         node counts by connection status
//  GET /metrics       Prometheus metrics
package service
