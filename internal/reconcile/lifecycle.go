package reconcile

import (
	"context"
	"fmt"

	"github.com/trustline-app/trustline/config"
	"github.com/trustline-app/trustline/internal/log"
	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// Manager drives the credit-record lifecycle: proposal creation with
// input validation and the pending-conflict check, then signing and
// submission, and confirmation or rejection of records proposed by
// either party.
//
// Each operation returns nil on ledger-confirmed success and a typed
// error otherwise, and emits exactly one user notification either way.
// Failed operations leave the pending transaction in place; the caller
// refreshes its snapshot via Pending after a success.
type Manager struct {
	svc        Service
	resolver   *Resolver
	notify     Notifier
	contractID string
}

// NewManager creates a lifecycle manager bound to a ledger contract.
func NewManager(svc Service, resolver *Resolver, notify Notifier, contractID string) *Manager {
	return &Manager{svc: svc, resolver: resolver, notify: notify, contractID: contractID}
}

// CreateProposal validates and submits a new debt proposal.
//
// Validation short-circuits before any network call: friend and amount
// must be present, the sanitized amount must be positive and below the
// protocol maximum, memo and direction must be set, and self-debt is
// rejected. The single outstanding-transaction rule is then enforced by
// scanning the account's pending set: an account with any pending
// transaction, in either role, cannot propose another. That rule is
// account-global, not per counterparty pair, matching the ledger
// service's own enforcement.
func (m *Manager) CreateProposal(ctx context.Context, addr types.Address, signer crypto.Signer, friend Friend, rawAmount, memo string, direction Direction) error {
	if friend.Address.IsZero() {
		return m.reject(&ValidationError{Msg: "Friend must be selected"})
	}
	if rawAmount == "" {
		return m.reject(&ValidationError{Msg: "Amount must be entered"})
	}

	amount, err := SanitizeAmount(rawAmount)
	if err != nil {
		return m.reject(err)
	}
	if amount <= 0 {
		return m.reject(&ValidationError{Msg: "Amount must be greater than $0"})
	}
	if amount >= config.MaxAmount {
		return m.reject(&ValidationError{Msg: "Amount must be less than $1,000,000,000"})
	}
	if memo == "" {
		return m.reject(&ValidationError{Msg: "Memo must be entered"})
	}
	if !direction.Valid() {
		return m.reject(&ValidationError{Msg: "Please choose the correct statement to determine the creditor and debtor"})
	}
	if addr == friend.Address {
		return m.reject(&ValidationError{Msg: "You can't create debt with yourself, choose another friend"})
	}

	pending, err := m.svc.GetPendingTransactions(ctx, addr)
	if err != nil {
		m.notify.DisplayError("Debt could not be created")
		return &LedgerError{Op: "getPendingTransactions", Err: err}
	}
	hexAddr := addr.Hex()
	for _, rec := range pending {
		if types.NormalizeHex(rec.CreditorAddress) == hexAddr || types.NormalizeHex(rec.DebtorAddress) == hexAddr {
			return m.reject(&ConflictError{Msg: "Please resolve your pending transaction before creating another"})
		}
	}

	creditor, debtor := addr, friend.Address
	if direction == DirectionBorrow {
		creditor, debtor = friend.Address, addr
	}

	if err := m.submit(ctx, signer, creditor, debtor, uint64(amount), memo, direction); err != nil {
		m.notify.DisplayError("Debt could not be created")
		return err
	}

	m.notify.DisplaySuccess(fmt.Sprintf("Debt proposal sent to %s", friend.Nickname))
	return nil
}

// Confirm countersigns and submits a pending transaction proposed by the
// counterparty. The direction is inferred by comparing the account
// address to the record's creditor.
func (m *Manager) Confirm(ctx context.Context, addr types.Address, signer crypto.Signer, tx PendingTransaction) error {
	if tx.Hash == "" {
		return m.reject(&ValidationError{Msg: "Transaction has not been submitted yet"})
	}
	if addr != tx.CreditorAddress && addr != tx.DebtorAddress {
		return m.reject(&ValidationError{Msg: "Transaction does not involve this account"})
	}

	direction := DirectionBorrow
	if addr == tx.CreditorAddress {
		direction = DirectionLend
	}

	if err := m.submit(ctx, signer, tx.CreditorAddress, tx.DebtorAddress, tx.Amount, tx.Memo, direction); err != nil {
		m.notify.DisplayError("Debt could not be confirmed")
		return err
	}

	m.notify.DisplaySuccess("Debt confirmed")
	return nil
}

// Reject submits a signed rejection of a pending transaction. On
// success the record leaves the pending set on the service; the local
// snapshot is refreshed by the caller.
func (m *Manager) Reject(ctx context.Context, signer crypto.Signer, tx PendingTransaction) error {
	if tx.Hash == "" {
		return m.reject(&ValidationError{Msg: "Transaction has not been submitted yet"})
	}

	if err := m.svc.RejectPendingTransaction(ctx, tx.Hash, signer); err != nil {
		m.notify.DisplayError("Debt could not be rejected")
		return &LedgerError{Op: "rejectPendingTransaction", Err: err}
	}

	m.notify.DisplaySuccess("Debt rejected")
	return nil
}

// Pending returns the account's pending transactions as a replacement
// snapshot with resolved nicknames.
func (m *Manager) Pending(ctx context.Context, addr types.Address) ([]PendingTransaction, error) {
	records, err := m.svc.GetPendingTransactions(ctx, addr)
	if err != nil {
		m.notify.DisplayError("Pending transactions could not be loaded")
		return nil, &LedgerError{Op: "getPendingTransactions", Err: err}
	}

	txs := make([]PendingTransaction, 0, len(records))
	for _, rec := range records {
		tx, err := pendingFromRecord(rec)
		if err != nil {
			log.Reconcile.Warn().Err(err).Str("hash", rec.Hash).Msg("skipping malformed pending record")
			continue
		}
		txs = append(txs, tx)
	}
	return m.resolver.ResolvePendingNames(ctx, txs), nil
}

// Recent returns the account's settled transaction history as a
// replacement snapshot with resolved nicknames.
func (m *Manager) Recent(ctx context.Context, addr types.Address) ([]RecentTransaction, error) {
	records, err := m.svc.GetTransactions(ctx, addr)
	if err != nil {
		m.notify.DisplayError("Transaction history could not be loaded")
		return nil, &LedgerError{Op: "getTransactions", Err: err}
	}

	txs := make([]RecentTransaction, 0, len(records))
	for _, rec := range records {
		tx, err := recentFromRecord(rec)
		if err != nil {
			log.Reconcile.Warn().Err(err).Str("hash", rec.Hash).Msg("skipping malformed history record")
			continue
		}
		txs = append(txs, tx)
	}
	return m.resolver.ResolveRecentNames(ctx, txs), nil
}

// submit runs the create-record -> sign -> submit sequence shared by
// CreateProposal and Confirm.
func (m *Manager) submit(ctx context.Context, signer crypto.Signer, creditor, debtor types.Address, amount uint64, memo string, direction Direction) error {
	record, err := m.svc.CreateCreditRecord(ctx, m.contractID, creditor, debtor, amount, memo)
	if err != nil {
		return &LedgerError{Op: "createCreditRecord", Err: err}
	}
	signature, err := record.Sign(signer)
	if err != nil {
		return &LedgerError{Op: "signCreditRecord", Err: err}
	}
	if err := m.svc.SubmitCreditRecord(ctx, record, string(direction), signature); err != nil {
		return &LedgerError{Op: "submitCreditRecord", Err: err}
	}
	return nil
}

// reject emits the validation/conflict notification and passes the error
// through.
func (m *Manager) reject(err error) error {
	m.notify.DisplayError(err.Error())
	return err
}
