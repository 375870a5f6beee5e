// Package types defines the basic identifier types shared across Trustline.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// AddressSize is the length of an address in bytes.
const AddressSize = 20

// Address represents a 160-bit ledger principal (public key hash).
// The ledger service renders addresses as bare lowercase hex with no 0x
// prefix; ParseAddress tolerates the prefixed form on input.
type Address [AddressSize]byte

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Hex returns the lowercase hex-encoded address without prefix.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the same rendering as Hex.
func (a Address) String() string {
	return a.Hex()
}

// ShortHex returns the first 8 hex characters of the address.
// Used as the synthetic nickname stem for unresolved principals.
func (a Address) ShortHex() string {
	return a.Hex()[:8]
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// ParseAddress decodes an address from hex, accepting an optional "0x"
// prefix and mixed case.
func ParseAddress(s string) (Address, error) {
	var addr Address
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "0x")
	if len(s) != AddressSize*2 {
		return addr, fmt.Errorf("address must be %d hex chars, got %d", AddressSize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("decode address: %w", err)
	}
	copy(addr[:], b)
	return addr, nil
}

// NormalizeHex lowercases a raw address string and strips any "0x" prefix
// without validating it. Used when deduplicating counterparty lists whose
// entries come straight off the wire.
func NormalizeHex(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "0x")
}

// MarshalJSON encodes the address as a bare hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON decodes a hex string (with or without 0x) into an address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
