// Package crypto contains the hash functions used to identify atoms and
// addresses. Key handling lives in the keys sub-package.
package crypto
