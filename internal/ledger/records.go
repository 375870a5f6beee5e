package ledger

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// FriendRecord is the canonical form of a raw friend entry. The service
// sends friend entries in two shapes: a bare address string, or an object
// with "addr" and an optional "nick". UnmarshalJSON folds both into one
// type at the boundary, so nothing downstream ever sees the raw variants.
type FriendRecord struct {
	Addr string `json:"addr"`
	Nick string `json:"nick,omitempty"`
}

// UnmarshalJSON accepts either a JSON string (bare address) or an object.
func (f *FriendRecord) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Addr = s
		f.Nick = ""
		return nil
	}

	type alias FriendRecord
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("friend record is neither string nor object: %w", err)
	}
	if obj.Addr == "" {
		return fmt.Errorf("friend record missing addr")
	}
	*f = FriendRecord(obj)
	return nil
}

// UserRecord is a search result entry.
type UserRecord struct {
	Addr string `json:"addr"`
	Nick string `json:"nick"`
}

// PendingRecord is a raw pending credit record as returned by the service.
// Hash is assigned by the service on submission.
type PendingRecord struct {
	Hash            string `json:"hash"`
	CreditorAddress string `json:"creditor"`
	DebtorAddress   string `json:"debtor"`
	Amount          uint64 `json:"amount"`
	Memo            string `json:"memo"`
	SubmittedAt     int64  `json:"submitted_at,omitempty"`
}

// RecentRecord is a raw settled credit record from transaction history.
type RecentRecord struct {
	Hash            string `json:"hash"`
	CreditorAddress string `json:"creditor"`
	DebtorAddress   string `json:"debtor"`
	Amount          uint64 `json:"amount"`
	Memo            string `json:"memo"`
	Timestamp       int64  `json:"timestamp"`
}

// CreditRecord is a service-constructed representation of a proposed debt.
// The service assigns the nonce and the digest; the client's only job is
// to sign the digest and hand the record back.
type CreditRecord struct {
	LedgerContractID string        `json:"ledger_contract_id"`
	Creditor         types.Address `json:"creditor"`
	Debtor           types.Address `json:"debtor"`
	Amount           uint64        `json:"amount"`
	Memo             string        `json:"memo"`
	Nonce            uint64        `json:"nonce"`
	Digest           string        `json:"digest"` // 32-byte hex
}

// DigestBytes decodes the record's digest field.
func (r *CreditRecord) DigestBytes() ([]byte, error) {
	b, err := hex.DecodeString(r.Digest)
	if err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	if len(b) != crypto.DigestSize {
		return nil, fmt.Errorf("digest must be %d bytes, got %d", crypto.DigestSize, len(b))
	}
	return b, nil
}

// Sign produces a hex-encoded Schnorr signature over the record digest.
func (r *CreditRecord) Sign(signer crypto.Signer) (string, error) {
	digest, err := r.DigestBytes()
	if err != nil {
		return "", err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return "", fmt.Errorf("sign record: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// signedDigest signs a locally computed BLAKE3 digest over the given
// payload. Used for operations that the service authenticates by
// signature but that carry no service-built record (nickname updates,
// rejections).
func signedDigest(signer crypto.Signer, payload string) (string, error) {
	digest := crypto.Hash([]byte(payload))
	sig, err := signer.Sign(digest[:])
	if err != nil {
		return "", fmt.Errorf("sign payload: %w", err)
	}
	return hex.EncodeToString(sig), nil
}
