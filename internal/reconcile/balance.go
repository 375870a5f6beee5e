package reconcile

import (
	"context"
	"sort"
	"sync"

	"github.com/trustline-app/trustline/internal/log"
	"github.com/trustline-app/trustline/pkg/types"
)

const balancesError = "Some balances could not be loaded"

// Aggregator computes the per-counterparty balance set for an account by
// fanning out one pairwise query per unique counterparty.
type Aggregator struct {
	svc      Service
	resolver *Resolver
	notify   Notifier
}

// NewAggregator creates an aggregator.
func NewAggregator(svc Service, resolver *Resolver, notify Notifier) *Aggregator {
	return &Aggregator{svc: svc, resolver: resolver, notify: notify}
}

// Aggregate returns the full replacement balance set for the account.
//
// Counterparty addresses from the service are normalized (0x prefix
// stripped, lowercased) and deduplicated, so each counterparty is queried
// exactly once. Balance queries and nickname resolution run concurrently
// across counterparties. A counterparty whose balance query fails is
// silently omitted; if any failed, a single aggregate-level error
// notification is emitted. Only the initial counterparty-list fetch can
// fail the call as a whole.
func (a *Aggregator) Aggregate(ctx context.Context, addr types.Address) ([]Balance, error) {
	raw, err := a.svc.GetCounterparties(ctx, addr)
	if err != nil {
		a.notify.DisplayError(balancesError)
		return nil, &LedgerError{Op: "getCounterparties", Err: err}
	}

	seen := make(map[string]struct{}, len(raw))
	unique := make([]types.Address, 0, len(raw))
	for _, entry := range raw {
		normalized := types.NormalizeHex(entry)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		cp, err := types.ParseAddress(normalized)
		if err != nil {
			log.Reconcile.Warn().Str("entry", entry).Msg("skipping malformed counterparty")
			continue
		}
		unique = append(unique, cp)
	}

	results := make([]Balance, len(unique))
	failed := make([]bool, len(unique))

	var wg sync.WaitGroup
	for i, cp := range unique {
		wg.Add(1)
		go func(i int, cp types.Address) {
			defer wg.Done()
			amount, err := a.svc.GetBalanceBetween(ctx, addr, cp)
			if err != nil {
				log.Reconcile.Warn().Err(err).Str("counterparty", cp.Hex()).Msg("balance query failed")
				failed[i] = true
				return
			}
			results[i] = Balance{
				Counterparty: cp,
				Nickname:     a.resolver.Resolve(ctx, cp),
				Amount:       amount,
			}
		}(i, cp)
	}
	wg.Wait()

	balances := make([]Balance, 0, len(results))
	anyFailed := false
	for i := range results {
		if failed[i] {
			anyFailed = true
			continue
		}
		balances = append(balances, results[i])
	}
	if anyFailed {
		a.notify.DisplayError(balancesError)
	}

	// Stable output order for display; no ordering is promised.
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Counterparty.Hex() < balances[j].Counterparty.Hex()
	})
	return balances, nil
}

// TotalBalance returns the account's total net balance in minor units.
func (a *Aggregator) TotalBalance(ctx context.Context, addr types.Address) (int64, error) {
	amount, err := a.svc.GetBalance(ctx, addr)
	if err != nil {
		return 0, &LedgerError{Op: "getBalance", Err: err}
	}
	return amount, nil
}
