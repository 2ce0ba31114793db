// Package ledger keeps a local, per address view of the Radix ledger.
//
// The AtomPuller turns a Pull into a single FetchAtomsRequest on the network
// controller, however many times the address is pulled, and writes every
// observation into an AtomStore. The AtomStore keeps one log per address and
// replays it to every new reader. A Resync in a log means the node stream
// started over: readers reset what they derived from earlier entries.
//
// The ParticleStore and the AtomSubmitter sit on top of these. All four are
// bundled by Ledger.
package ledger
