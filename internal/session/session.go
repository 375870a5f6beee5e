// Package session ties together the local encrypted vault and the remote
// ledger service into the account lifecycle a user interacts with:
// create, recover, login, logout, and account-level settings such as the
// registered nickname and notification channel.
package session

import (
	"context"
	"fmt"

	"github.com/trustline-app/trustline/internal/log"
	"github.com/trustline-app/trustline/internal/reconcile"
	"github.com/trustline-app/trustline/internal/wallet"
	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// MinPasswordLength is the shortest password the vault accepts.
const MinPasswordLength = 8

// LedgerService is the slice of the ledger client the session needs.
// Implemented by ledger.Client; tests substitute a fake.
type LedgerService interface {
	GetNickname(ctx context.Context, addr types.Address) (string, error)
	SetNickname(ctx context.Context, addr types.Address, nickname string, signer crypto.Signer) error
	TakenNick(ctx context.Context, nickname string) (bool, error)
	GetBalance(ctx context.Context, addr types.Address) (int64, error)
	RegisterChannelID(ctx context.Context, addr types.Address, channelID, platform string) error
}

// AccountInfo is the logged-in account summary shown after login.
type AccountInfo struct {
	Address  types.Address
	Nickname string
	Balance  int64
}

// Session holds a logged-in account and its collaborators. A nil account
// means logged out; every operation that needs one returns an error in
// that state instead of panicking.
type Session struct {
	client  LedgerService
	vault   *wallet.Vault
	notify  reconcile.Notifier
	account *wallet.Account
}

// New creates a logged-out session over the given vault path.
func New(client LedgerService, vaultPath string, notify reconcile.Notifier) (*Session, error) {
	vault, err := wallet.NewVault(vaultPath)
	if err != nil {
		return nil, err
	}
	return &Session{client: client, vault: vault, notify: notify}, nil
}

// Account returns the logged-in account, or nil when logged out.
func (s *Session) Account() *wallet.Account {
	return s.account
}

// HasStoredAccount reports whether a vault file exists on disk.
func (s *Session) HasStoredAccount() bool {
	return s.vault.Exists()
}

// Create generates a fresh recovery phrase, stores it in the vault under
// the password, registers the nickname on the ledger service, and logs
// the new account in. The phrase is returned exactly once so the user
// can write it down.
func (s *Session) Create(ctx context.Context, nickname, password, confirm string) (string, error) {
	if err := s.checkPassword(password, confirm); err != nil {
		return "", s.fail(err)
	}
	if err := CheckNickname(nickname); err != nil {
		return "", s.fail(err)
	}

	phrase, err := wallet.GenerateMnemonic()
	if err != nil {
		return "", fmt.Errorf("generate recovery phrase: %w", err)
	}
	account, err := wallet.DeriveAccount(phrase)
	if err != nil {
		return "", fmt.Errorf("derive account: %w", err)
	}
	if err := s.vault.Store(phrase, password); err != nil {
		return "", fmt.Errorf("store account: %w", err)
	}

	if err := s.client.SetNickname(ctx, account.Address, nickname, account.Signer); err != nil {
		// The account exists locally either way; the nickname can be
		// set again later.
		log.Session.Warn().Err(err).Msg("nickname registration failed")
		s.notify.DisplayError("Nickname could not be registered")
	}

	s.account = account
	log.Session.Info().Str("address", account.Address.Hex()).Msg("account created")
	return phrase, nil
}

// Recover rebuilds the account from an existing recovery phrase, stores
// it in the vault, and logs it in.
func (s *Session) Recover(ctx context.Context, phrase, password, confirm string) error {
	if err := s.checkPassword(password, confirm); err != nil {
		return s.fail(err)
	}
	normalized := wallet.NormalizePhrase(phrase)
	account, err := wallet.DeriveAccount(normalized)
	if err != nil {
		return s.fail(&reconcile.ValidationError{Msg: "Recovery phrase is not valid"})
	}
	if err := s.vault.Store(normalized, password); err != nil {
		return fmt.Errorf("store account: %w", err)
	}

	s.account = account
	log.Session.Info().Str("address", account.Address.Hex()).Msg("account recovered")
	return nil
}

// Login verifies the password against the stored bcrypt hash, decrypts
// the stored phrase, and re-derives the account. A wrong password
// surfaces as wallet.ErrWrongPassword.
func (s *Session) Login(password string) error {
	if err := s.vault.VerifyPassword(password); err != nil {
		return err
	}
	phrase, err := s.vault.LoadPhrase(password)
	if err != nil {
		return err
	}
	account, err := wallet.DeriveAccount(phrase)
	if err != nil {
		return fmt.Errorf("derive account: %w", err)
	}
	s.account = account
	log.Session.Debug().Str("address", account.Address.Hex()).Msg("logged in")
	return nil
}

// Logout drops the in-memory account. The vault stays on disk.
func (s *Session) Logout() {
	s.account = nil
}

// Remove logs out and deletes the vault file. The account can only come
// back via Recover with its phrase.
func (s *Session) Remove() error {
	s.account = nil
	return s.vault.Remove()
}

// Info fetches the logged-in account's nickname and total balance.
// Either lookup failing degrades the summary rather than failing it:
// the nickname falls back to the address prefix and the balance to zero.
func (s *Session) Info(ctx context.Context) (AccountInfo, error) {
	if s.account == nil {
		return AccountInfo{}, wallet.ErrNoStoredAccount
	}
	info := AccountInfo{Address: s.account.Address}

	nick, err := s.client.GetNickname(ctx, s.account.Address)
	if err != nil || nick == "" || nick == reconcile.UnresolvedNickname {
		info.Nickname = s.account.Address.ShortHex()
	} else {
		info.Nickname = nick
	}

	balance, err := s.client.GetBalance(ctx, s.account.Address)
	if err != nil {
		log.Session.Warn().Err(err).Msg("balance lookup failed")
	} else {
		info.Balance = balance
	}
	return info, nil
}

// UpdateNickname validates and registers a new nickname for the
// logged-in account.
func (s *Session) UpdateNickname(ctx context.Context, nickname string) error {
	if s.account == nil {
		return wallet.ErrNoStoredAccount
	}
	if err := CheckNickname(nickname); err != nil {
		return s.fail(err)
	}
	if err := s.client.SetNickname(ctx, s.account.Address, nickname, s.account.Signer); err != nil {
		s.notify.DisplayError("Nickname could not be updated")
		return &reconcile.LedgerError{Op: "setNickname", Err: err}
	}
	s.notify.DisplaySuccess(fmt.Sprintf("Nickname updated to %s", nickname))
	return nil
}

// NicknameTaken reports whether the nickname is already registered.
// Queries shorter than the minimum length report not taken without a
// network call.
func (s *Session) NicknameTaken(ctx context.Context, nickname string) (bool, error) {
	if len(nickname) < reconcile.MinNicknameLength {
		return false, nil
	}
	return s.client.TakenNick(ctx, nickname)
}

// RegisterChannel registers a push-notification channel for the
// logged-in account.
func (s *Session) RegisterChannel(ctx context.Context, channelID, platform string) error {
	if s.account == nil {
		return wallet.ErrNoStoredAccount
	}
	if err := s.client.RegisterChannelID(ctx, s.account.Address, channelID, platform); err != nil {
		return &reconcile.LedgerError{Op: "registerChannelID", Err: err}
	}
	return nil
}

// Signer returns the logged-in account's signer.
func (s *Session) Signer() (crypto.Signer, error) {
	if s.account == nil {
		return nil, wallet.ErrNoStoredAccount
	}
	return s.account.Signer, nil
}

// CheckNickname validates a nickname: lowercase letters and digits only,
// at least the minimum length.
func CheckNickname(nickname string) error {
	if len(nickname) < reconcile.MinNicknameLength {
		return &reconcile.ValidationError{
			Msg: fmt.Sprintf("Nickname must be at least %d characters", reconcile.MinNicknameLength),
		}
	}
	for _, r := range nickname {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return &reconcile.ValidationError{Msg: "Nickname must use only lowercase letters and numbers"}
		}
	}
	return nil
}

func (s *Session) checkPassword(password, confirm string) error {
	if len(password) < MinPasswordLength {
		return &reconcile.ValidationError{
			Msg: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}
	if password != confirm {
		return &reconcile.ValidationError{Msg: "Passwords do not match"}
	}
	return nil
}

// fail emits the notification for a validation failure and passes the
// error through.
func (s *Session) fail(err error) error {
	s.notify.DisplayError(err.Error())
	return err
}
