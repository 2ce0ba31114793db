// Package keys implements the public key handling used by Radix addresses.
//
// Radix accounts are identified by secp256k1 public keys, the same curve used
// by Bitcoin, so this package relies on btcec for parsing and serialization.
// Addresses and particles always carry the 33-byte compressed form. Signing is
// not handled here: atoms reach this library already signed.
package keys
