package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// ErrInvalidPhrase is returned when a recovery phrase fails validation.
var ErrInvalidPhrase = errors.New("invalid recovery phrase")

// Account holds the credentials for one ledger identity. It is created
// once per session by DeriveAccount and never mutated afterwards; the
// signer is the sole source of signing authority.
type Account struct {
	Address types.Address
	Signer  *crypto.PrivateKey
	Phrase  string
}

// DeriveAccount deterministically derives a ledger account from a
// recovery phrase. The same phrase always yields the same address and
// signing key, so the ledger service recognizes the account as the same
// principal on every login. Performs no I/O.
func DeriveAccount(phrase string) (*Account, error) {
	phrase = NormalizePhrase(phrase)
	if len(strings.Fields(phrase)) < MinPhraseWords {
		return nil, fmt.Errorf("%w: need at least %d words", ErrInvalidPhrase, MinPhraseWords)
	}
	if !ValidateMnemonic(phrase) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidPhrase)
	}

	seed, err := SeedFromPhrase(phrase)
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	identity, err := master.DeriveIdentity()
	if err != nil {
		return nil, fmt.Errorf("derive identity: %w", err)
	}
	signer, err := identity.Signer()
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}

	return &Account{
		Address: crypto.AddressFromPubKey(signer.PublicKey()),
		Signer:  signer,
		Phrase:  phrase,
	}, nil
}
