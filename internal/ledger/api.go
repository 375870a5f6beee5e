package ledger

import (
	"context"
	"fmt"

	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// Param and result types for the ledger service methods.

// AddressParam wraps a single address argument.
type AddressParam struct {
	Address string `json:"address"`
}

// PairParam wraps two addresses for pairwise queries.
type PairParam struct {
	A string `json:"a"`
	B string `json:"b"`
}

// NicknameResult wraps a nickname lookup result.
type NicknameResult struct {
	Nickname string `json:"nickname"`
}

// SetNicknameParam carries a signed nickname update.
type SetNicknameParam struct {
	Address   string `json:"address"`
	Nickname  string `json:"nickname"`
	Signature string `json:"signature"`
}

// TakenNickResult reports whether a nickname is taken.
type TakenNickResult struct {
	Taken bool `json:"taken"`
}

// SearchParam carries a nickname search query.
type SearchParam struct {
	Nickname string `json:"nickname"`
}

// BalanceResult wraps a signed balance in minor units.
type BalanceResult struct {
	Amount int64 `json:"amount"`
}

// CreateCreditParam carries the inputs for credit-record construction.
type CreateCreditParam struct {
	LedgerContractID string `json:"ledger_contract_id"`
	Creditor         string `json:"creditor"`
	Debtor           string `json:"debtor"`
	Amount           uint64 `json:"amount"`
	Memo             string `json:"memo"`
}

// SubmitCreditParam carries a signed credit record for submission.
type SubmitCreditParam struct {
	Record    CreditRecord `json:"record"`
	Direction string       `json:"direction"`
	Signature string       `json:"signature"`
}

// RejectParam carries a signed rejection of a pending record.
type RejectParam struct {
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

// RegisterChannelParam carries a push-channel registration.
type RegisterChannelParam struct {
	Address   string `json:"address"`
	ChannelID string `json:"channel_id"`
	Platform  string `json:"platform"`
}

// GetNickname looks up the nickname registered for an address.
func (c *Client) GetNickname(ctx context.Context, addr types.Address) (string, error) {
	var result NicknameResult
	if err := c.Call(ctx, "nick_get", AddressParam{Address: addr.Hex()}, &result); err != nil {
		return "", err
	}
	return result.Nickname, nil
}

// SetNickname registers a nickname for an address. The update is
// authenticated by a signature over "address:nickname".
func (c *Client) SetNickname(ctx context.Context, addr types.Address, nickname string, signer crypto.Signer) error {
	sig, err := signedDigest(signer, addr.Hex()+":"+nickname)
	if err != nil {
		return err
	}
	return c.Call(ctx, "nick_set", SetNicknameParam{
		Address:   addr.Hex(),
		Nickname:  nickname,
		Signature: sig,
	}, nil)
}

// TakenNick reports whether a nickname is already registered.
func (c *Client) TakenNick(ctx context.Context, nickname string) (bool, error) {
	var result TakenNickResult
	if err := c.Call(ctx, "nick_taken", SearchParam{Nickname: nickname}, &result); err != nil {
		return false, err
	}
	return result.Taken, nil
}

// SearchUsers finds registered users whose nickname matches the query.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]UserRecord, error) {
	var result []UserRecord
	if err := c.Call(ctx, "user_search", SearchParam{Nickname: query}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetBalanceBetween returns the pairwise net balance between two
// principals in minor units, signed from a's perspective.
func (c *Client) GetBalanceBetween(ctx context.Context, a, b types.Address) (int64, error) {
	var result BalanceResult
	if err := c.Call(ctx, "balance_getBetween", PairParam{A: a.Hex(), B: b.Hex()}, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

// GetCounterparties returns the raw counterparty address strings for an
// account. Entries may carry 0x prefixes and duplicates; callers
// normalize and deduplicate.
func (c *Client) GetCounterparties(ctx context.Context, addr types.Address) ([]string, error) {
	var result []string
	if err := c.Call(ctx, "balance_getCounterparties", AddressParam{Address: addr.Hex()}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetBalance returns the total net balance for an account in minor units.
func (c *Client) GetBalance(ctx context.Context, addr types.Address) (int64, error) {
	var result BalanceResult
	if err := c.Call(ctx, "balance_get", AddressParam{Address: addr.Hex()}, &result); err != nil {
		return 0, err
	}
	return result.Amount, nil
}

// GetFriends returns the raw friend records for an account.
func (c *Client) GetFriends(ctx context.Context, addr types.Address) ([]FriendRecord, error) {
	var result []FriendRecord
	if err := c.Call(ctx, "friend_list", AddressParam{Address: addr.Hex()}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AddFriend records a friendship between two accounts.
func (c *Client) AddFriend(ctx context.Context, addr, friend types.Address) error {
	return c.Call(ctx, "friend_add", PairParam{A: addr.Hex(), B: friend.Hex()}, nil)
}

// RemoveFriend removes a friendship between two accounts.
func (c *Client) RemoveFriend(ctx context.Context, addr, friend types.Address) error {
	return c.Call(ctx, "friend_remove", PairParam{A: addr.Hex(), B: friend.Hex()}, nil)
}

// GetPendingTransactions returns the raw pending credit records that
// involve an account in either role.
func (c *Client) GetPendingTransactions(ctx context.Context, addr types.Address) ([]PendingRecord, error) {
	var result []PendingRecord
	if err := c.Call(ctx, "credit_getPending", AddressParam{Address: addr.Hex()}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTransactions returns the settled credit records for an account.
func (c *Client) GetTransactions(ctx context.Context, addr types.Address) ([]RecentRecord, error) {
	var result []RecentRecord
	if err := c.Call(ctx, "credit_getHistory", AddressParam{Address: addr.Hex()}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateCreditRecord asks the service to construct a signable credit
// record for the given debt.
func (c *Client) CreateCreditRecord(ctx context.Context, contractID string, creditor, debtor types.Address, amount uint64, memo string) (*CreditRecord, error) {
	var record CreditRecord
	err := c.Call(ctx, "credit_create", CreateCreditParam{
		LedgerContractID: contractID,
		Creditor:         creditor.Hex(),
		Debtor:           debtor.Hex(),
		Amount:           amount,
		Memo:             memo,
	}, &record)
	if err != nil {
		return nil, err
	}
	if _, err := record.DigestBytes(); err != nil {
		return nil, fmt.Errorf("malformed credit record: %w", err)
	}
	return &record, nil
}

// SubmitCreditRecord submits a signed credit record.
func (c *Client) SubmitCreditRecord(ctx context.Context, record *CreditRecord, direction string, signature string) error {
	return c.Call(ctx, "credit_submit", SubmitCreditParam{
		Record:    *record,
		Direction: direction,
		Signature: signature,
	}, nil)
}

// RejectPendingTransaction rejects a pending credit record by hash,
// authenticated by a signature over the hash.
func (c *Client) RejectPendingTransaction(ctx context.Context, hash string, signer crypto.Signer) error {
	sig, err := signedDigest(signer, hash)
	if err != nil {
		return err
	}
	return c.Call(ctx, "credit_rejectByHash", RejectParam{Hash: hash, Signature: sig}, nil)
}

// RegisterChannelID registers a push-notification channel for an account.
func (c *Client) RegisterChannelID(ctx context.Context, addr types.Address, channelID, platform string) error {
	return c.Call(ctx, "channel_register", RegisterChannelParam{
		Address:   addr.Hex(),
		ChannelID: channelID,
		Platform:  platform,
	}, nil)
}
