// Package reconcile turns raw, unordered records fetched from the remote
// ledger service into a locally consistent view: friends with resolved
// display names, per-counterparty balances, and the pending/recent
// transaction ledger. It also drives the create → sign → submit →
// confirm/reject lifecycle of a credit record.
//
// All collections produced here are replacement snapshots. A new slice is
// built off to the side and handed to the caller once complete; nothing is
// patched in place after it is returned, so concurrent readers never
// observe a half-updated view.
package reconcile

import (
	"context"
	"time"

	"github.com/trustline-app/trustline/internal/ledger"
	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// UnresolvedNickname is the sentinel the service sends for principals
// without a registered nickname. Entries carrying it are candidates for
// re-resolution.
const UnresolvedNickname = "N/A"

// Service is the consumer-side view of the remote ledger service. The
// concrete implementation is ledger.Client; tests substitute a fake.
type Service interface {
	GetNickname(ctx context.Context, addr types.Address) (string, error)
	GetBalanceBetween(ctx context.Context, a, b types.Address) (int64, error)
	GetBalance(ctx context.Context, addr types.Address) (int64, error)
	GetCounterparties(ctx context.Context, addr types.Address) ([]string, error)
	GetFriends(ctx context.Context, addr types.Address) ([]ledger.FriendRecord, error)
	AddFriend(ctx context.Context, addr, friend types.Address) error
	RemoveFriend(ctx context.Context, addr, friend types.Address) error
	SearchUsers(ctx context.Context, query string) ([]ledger.UserRecord, error)
	GetPendingTransactions(ctx context.Context, addr types.Address) ([]ledger.PendingRecord, error)
	GetTransactions(ctx context.Context, addr types.Address) ([]ledger.RecentRecord, error)
	CreateCreditRecord(ctx context.Context, contractID string, creditor, debtor types.Address, amount uint64, memo string) (*ledger.CreditRecord, error)
	SubmitCreditRecord(ctx context.Context, record *ledger.CreditRecord, direction string, signature string) error
	RejectPendingTransaction(ctx context.Context, hash string, signer crypto.Signer) error
}

// Direction says which side of a new debt the acting account takes.
type Direction string

const (
	// DirectionLend means the acting account is the creditor.
	DirectionLend Direction = "lend"
	// DirectionBorrow means the acting account is the debtor.
	DirectionBorrow Direction = "borrow"
)

// Valid reports whether the direction is one of the two known values.
func (d Direction) Valid() bool {
	return d == DirectionLend || d == DirectionBorrow
}

// Friend is a counterparty the account has befriended.
type Friend struct {
	Address  types.Address
	Nickname string
}

// Balance is the aggregated net position against one counterparty, in
// signed minor units (positive: the counterparty owes the account).
type Balance struct {
	Counterparty types.Address
	Nickname     string
	Amount       int64
}

// PendingTransaction is a submitted but not yet confirmed or rejected
// credit record. Hash is empty only for a proposal that never reached
// the service.
type PendingTransaction struct {
	Hash             string
	CreditorAddress  types.Address
	DebtorAddress    types.Address
	Amount           uint64
	Memo             string
	CreditorNickname string
	DebtorNickname   string
}

// RecentTransaction is an immutable settled record from history.
type RecentTransaction struct {
	Hash             string
	CreditorAddress  types.Address
	DebtorAddress    types.Address
	Amount           uint64
	Memo             string
	CreditorNickname string
	DebtorNickname   string
	Timestamp        time.Time
}

// pendingFromRecord normalizes a raw pending record.
func pendingFromRecord(rec ledger.PendingRecord) (PendingTransaction, error) {
	creditor, err := types.ParseAddress(rec.CreditorAddress)
	if err != nil {
		return PendingTransaction{}, err
	}
	debtor, err := types.ParseAddress(rec.DebtorAddress)
	if err != nil {
		return PendingTransaction{}, err
	}
	return PendingTransaction{
		Hash:            rec.Hash,
		CreditorAddress: creditor,
		DebtorAddress:   debtor,
		Amount:          rec.Amount,
		Memo:            rec.Memo,
	}, nil
}

// recentFromRecord normalizes a raw history record.
func recentFromRecord(rec ledger.RecentRecord) (RecentTransaction, error) {
	creditor, err := types.ParseAddress(rec.CreditorAddress)
	if err != nil {
		return RecentTransaction{}, err
	}
	debtor, err := types.ParseAddress(rec.DebtorAddress)
	if err != nil {
		return RecentTransaction{}, err
	}
	return RecentTransaction{
		Hash:            rec.Hash,
		CreditorAddress: creditor,
		DebtorAddress:   debtor,
		Amount:          rec.Amount,
		Memo:            rec.Memo,
		Timestamp:       time.Unix(rec.Timestamp, 0).UTC(),
	}, nil
}
