package reconcile

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/trustline-app/trustline/internal/log"
	"github.com/trustline-app/trustline/pkg/types"
)

// nicknameCacheSize bounds the resolver's address->nickname cache.
const nicknameCacheSize = 512

// Resolver resolves addresses to display nicknames via the ledger
// service. Resolution never fails outward: on any lookup failure the
// first 8 hex characters of the address stand in as a synthetic
// nickname. Successful lookups are cached; fallbacks are not, so a
// later batch can retry them.
type Resolver struct {
	svc   Service
	cache *lru.Cache[string, string]
}

// NewResolver creates a resolver backed by the given ledger service.
func NewResolver(svc Service) *Resolver {
	cache, err := lru.New[string, string](nicknameCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &Resolver{svc: svc, cache: cache}
}

// Resolve returns a usable display name for the address.
func (r *Resolver) Resolve(ctx context.Context, addr types.Address) string {
	key := addr.Hex()
	if nick, ok := r.cache.Get(key); ok {
		return nick
	}
	nick, err := r.svc.GetNickname(ctx, addr)
	if err != nil || nick == "" || nick == UnresolvedNickname {
		log.Reconcile.Debug().Str("address", key).Msg("nickname fallback")
		return addr.ShortHex()
	}
	r.cache.Add(key, nick)
	return nick
}

// needsResolution reports whether a friend entry still carries the
// unresolved sentinel or no nickname at all.
func needsResolution(nickname string) bool {
	return nickname == "" || nickname == UnresolvedNickname
}

// ResolveFriends returns a new friend set in which every entry that
// lacked a nickname has one resolved (or synthesized). Already-resolved
// entries are copied untouched. All lookups run concurrently; the call
// returns only once every lookup has settled.
func (r *Resolver) ResolveFriends(ctx context.Context, friends []Friend) []Friend {
	out := make([]Friend, len(friends))
	copy(out, friends)

	var wg sync.WaitGroup
	for i := range out {
		if !needsResolution(out[i].Nickname) {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i].Nickname = r.Resolve(ctx, out[i].Address)
		}(i)
	}
	wg.Wait()
	return out
}

// ResolvePendingNames returns a new pending-transaction set with creditor
// and debtor nicknames filled in. Both names of a transaction are
// refreshed whenever either is missing; each lookup runs concurrently.
func (r *Resolver) ResolvePendingNames(ctx context.Context, txs []PendingTransaction) []PendingTransaction {
	out := make([]PendingTransaction, len(txs))
	copy(out, txs)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].CreditorNickname != "" && out[i].DebtorNickname != "" {
			continue
		}
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			out[i].CreditorNickname = r.Resolve(ctx, out[i].CreditorAddress)
		}(i)
		go func(i int) {
			defer wg.Done()
			out[i].DebtorNickname = r.Resolve(ctx, out[i].DebtorAddress)
		}(i)
	}
	wg.Wait()
	return out
}

// ResolveRecentNames is ResolvePendingNames for history records.
func (r *Resolver) ResolveRecentNames(ctx context.Context, txs []RecentTransaction) []RecentTransaction {
	out := make([]RecentTransaction, len(txs))
	copy(out, txs)

	var wg sync.WaitGroup
	for i := range out {
		if out[i].CreditorNickname != "" && out[i].DebtorNickname != "" {
			continue
		}
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			out[i].CreditorNickname = r.Resolve(ctx, out[i].CreditorAddress)
		}(i)
		go func(i int) {
			defer wg.Done()
			out[i].DebtorNickname = r.Resolve(ctx, out[i].DebtorAddress)
		}(i)
	}
	wg.Wait()
	return out
}
