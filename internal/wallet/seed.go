package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// SeedFromPhrase derives a 512-bit seed from a recovery phrase using
// PBKDF2-SHA512 as specified in BIP-39. No passphrase is used: the same
// phrase must always recover the same ledger identity.
func SeedFromPhrase(phrase string) ([]byte, error) {
	if !ValidateMnemonic(phrase) {
		return nil, ErrInvalidPhrase
	}
	seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
	if err != nil {
		return nil, fmt.Errorf("derive seed: %w", err)
	}
	return seed, nil
}
