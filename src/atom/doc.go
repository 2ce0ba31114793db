// Package atom defines the ledger data carried between Radix nodes and the
// client: atoms, the particles they spin up or down, the addresses particles
// are routed to, and the observations a node pushes about an address.
//
// Atoms are opaque to the client beyond routing. The only derived values are
// the atom hash (double SHA-256 of the canonical CBOR encoding of the unsigned
// atom), the set of addresses it touches, and the shards of those addresses.
package atom
