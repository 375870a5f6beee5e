// Package crypto provides the hashing and signing primitives used when
// deriving ledger identities and signing credit records.
package crypto

import (
	"github.com/trustline-app/trustline/pkg/types"
	"github.com/zeebo/blake3"
)

// DigestSize is the length of a credit-record digest in bytes.
const DigestSize = 32

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) [DigestSize]byte {
	return blake3.Sum256(data)
}

// AddressFromPubKey derives a ledger address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}
