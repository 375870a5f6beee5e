// Package wallet derives ledger credentials from a BIP-39 recovery phrase
// and stores them in an encrypted local vault.
package wallet

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 12-word recovery phrases.
const MnemonicEntropyBits = 128

// MinPhraseWords is the minimum word count accepted for a newly entered
// recovery phrase. Phrases loaded back from the vault are trusted.
const MinPhraseWords = 12

// GenerateMnemonic creates a new 12-word BIP-39 recovery phrase.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a phrase is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// NormalizePhrase lowercases a recovery phrase and collapses all
// whitespace to single spaces, so derivation is insensitive to how the
// user typed it in.
func NormalizePhrase(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}
