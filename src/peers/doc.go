// Package peers defines the Radix nodes a client talks to and the metadata
// they advertise.
//
// A Node is identified by its host and port only. The transport flag and any
// advertised NodeInfo never take part in equality, so a node learned from a
// seed file and the same node announced by a peer collapse into a single
// entry.
//
// NodeInfo carries the ShardSpace a node serves. Shards are signed 64 bit
// integers and a node serves the half-open range [Low, High) of its
// ShardSpace. Atoms are routed to any node whose range contains one of the
// shards of the addresses they touch.
//
// Upon starting up, the client looks for a seeds.json file in its data
// directory. It lists the nodes used to bootstrap discovery, and is read by
// JSONSeeds. StaticSeeds serves the same purpose for a fixed list.
package peers
