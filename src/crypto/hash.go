package crypto

import (
	"crypto/sha256"
)

// SHA256 returns the SHA256 hash of the data.
func SHA256(data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	hash := hasher.Sum(nil)
	return hash
}

// DoubleSHA256 returns SHA256(SHA256(data)). It is the hash function used by
// Radix for atom identifiers, address checksums and EUIDs.
func DoubleSHA256(data []byte) []byte {
	return SHA256(SHA256(data))
}

