package reconcile

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/trustline-app/trustline/internal/ledger"
	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// fakeService implements Service with per-method hooks. Unset hooks
// return zero values. Call counters are safe for concurrent use.
type fakeService struct {
	mu sync.Mutex

	nicknameFn     func(addr types.Address) (string, error)
	balanceBetween func(a, b types.Address) (int64, error)
	balanceFn      func(addr types.Address) (int64, error)
	counterparties func(addr types.Address) ([]string, error)
	friendsFn      func(addr types.Address) ([]ledger.FriendRecord, error)
	addFriendFn    func(addr, friend types.Address) error
	removeFriendFn func(addr, friend types.Address) error
	searchFn       func(query string) ([]ledger.UserRecord, error)
	pendingFn      func(addr types.Address) ([]ledger.PendingRecord, error)
	recentFn       func(addr types.Address) ([]ledger.RecentRecord, error)
	createFn       func(contractID string, creditor, debtor types.Address, amount uint64, memo string) (*ledger.CreditRecord, error)
	submitFn       func(record *ledger.CreditRecord, direction, signature string) error
	rejectFn       func(hash string) error

	nicknameCalls map[string]int
	balanceCalls  map[string]int
	submitCalls   int
	rejectCalls   int
}

func newFakeService() *fakeService {
	return &fakeService{
		nicknameCalls: make(map[string]int),
		balanceCalls:  make(map[string]int),
	}
}

func (f *fakeService) GetNickname(_ context.Context, addr types.Address) (string, error) {
	f.mu.Lock()
	f.nicknameCalls[addr.Hex()]++
	f.mu.Unlock()
	if f.nicknameFn == nil {
		return "", nil
	}
	return f.nicknameFn(addr)
}

func (f *fakeService) GetBalanceBetween(_ context.Context, a, b types.Address) (int64, error) {
	f.mu.Lock()
	f.balanceCalls[b.Hex()]++
	f.mu.Unlock()
	if f.balanceBetween == nil {
		return 0, nil
	}
	return f.balanceBetween(a, b)
}

func (f *fakeService) GetBalance(_ context.Context, addr types.Address) (int64, error) {
	if f.balanceFn == nil {
		return 0, nil
	}
	return f.balanceFn(addr)
}

func (f *fakeService) GetCounterparties(_ context.Context, addr types.Address) ([]string, error) {
	if f.counterparties == nil {
		return nil, nil
	}
	return f.counterparties(addr)
}

func (f *fakeService) GetFriends(_ context.Context, addr types.Address) ([]ledger.FriendRecord, error) {
	if f.friendsFn == nil {
		return nil, nil
	}
	return f.friendsFn(addr)
}

func (f *fakeService) AddFriend(_ context.Context, addr, friend types.Address) error {
	if f.addFriendFn == nil {
		return nil
	}
	return f.addFriendFn(addr, friend)
}

func (f *fakeService) RemoveFriend(_ context.Context, addr, friend types.Address) error {
	if f.removeFriendFn == nil {
		return nil
	}
	return f.removeFriendFn(addr, friend)
}

func (f *fakeService) SearchUsers(_ context.Context, query string) ([]ledger.UserRecord, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(query)
}

func (f *fakeService) GetPendingTransactions(_ context.Context, addr types.Address) ([]ledger.PendingRecord, error) {
	if f.pendingFn == nil {
		return nil, nil
	}
	return f.pendingFn(addr)
}

func (f *fakeService) GetTransactions(_ context.Context, addr types.Address) ([]ledger.RecentRecord, error) {
	if f.recentFn == nil {
		return nil, nil
	}
	return f.recentFn(addr)
}

func (f *fakeService) CreateCreditRecord(_ context.Context, contractID string, creditor, debtor types.Address, amount uint64, memo string) (*ledger.CreditRecord, error) {
	if f.createFn == nil {
		return &ledger.CreditRecord{
			LedgerContractID: contractID,
			Creditor:         creditor,
			Debtor:           debtor,
			Amount:           amount,
			Memo:             memo,
			Nonce:            1,
			Digest:           strings.Repeat("ab", 32),
		}, nil
	}
	return f.createFn(contractID, creditor, debtor, amount, memo)
}

func (f *fakeService) SubmitCreditRecord(_ context.Context, record *ledger.CreditRecord, direction, signature string) error {
	f.mu.Lock()
	f.submitCalls++
	f.mu.Unlock()
	if f.submitFn == nil {
		return nil
	}
	return f.submitFn(record, direction, signature)
}

func (f *fakeService) RejectPendingTransaction(_ context.Context, hash string, _ crypto.Signer) error {
	f.mu.Lock()
	f.rejectCalls++
	f.mu.Unlock()
	if f.rejectFn == nil {
		return nil
	}
	return f.rejectFn(hash)
}

// recordingNotifier captures notifications for assertion.
type recordingNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

func (n *recordingNotifier) DisplayError(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) DisplaySuccess(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func testAddr(b byte) types.Address {
	var a types.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func testSigner(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}
