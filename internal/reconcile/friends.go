package reconcile

import (
	"context"
	"fmt"

	"github.com/trustline-app/trustline/internal/log"
	"github.com/trustline-app/trustline/pkg/types"
)

// MinNicknameLength is the shortest nickname the service registers.
// Search queries below this length return nothing without a network call.
const MinNicknameLength = 3

// Directory loads and manages the account's friend set. It keeps no
// cache: AddFriend and RemoveFriend delegate to the service, and callers
// re-invoke LoadFriends to observe the change.
type Directory struct {
	svc      Service
	resolver *Resolver
	notify   Notifier
}

// NewDirectory creates a friend directory.
func NewDirectory(svc Service, resolver *Resolver, notify Notifier) *Directory {
	return &Directory{svc: svc, resolver: resolver, notify: notify}
}

// LoadFriends returns the account's friends as a replacement snapshot
// with best-effort-resolved nicknames. A raw entry without a nickname
// gets a synthetic one (first 8 hex characters of its address); an entry
// carrying the unresolved sentinel is looked up on the service.
// Malformed entries are dropped with a log warning.
func (d *Directory) LoadFriends(ctx context.Context, addr types.Address) ([]Friend, error) {
	records, err := d.svc.GetFriends(ctx, addr)
	if err != nil {
		d.notify.DisplayError("Friends could not be loaded")
		return nil, &LedgerError{Op: "getFriends", Err: err}
	}

	friends := make([]Friend, 0, len(records))
	for _, rec := range records {
		friendAddr, err := types.ParseAddress(rec.Addr)
		if err != nil {
			log.Reconcile.Warn().Str("addr", rec.Addr).Msg("skipping malformed friend record")
			continue
		}
		nick := rec.Nick
		if nick == "" {
			nick = friendAddr.ShortHex()
		}
		friends = append(friends, Friend{Address: friendAddr, Nickname: nick})
	}

	return d.resolver.ResolveFriends(ctx, friends), nil
}

// AddFriend records a friendship on the service.
func (d *Directory) AddFriend(ctx context.Context, addr types.Address, friend Friend) error {
	if err := d.svc.AddFriend(ctx, addr, friend.Address); err != nil {
		d.notify.DisplayError("Friend could not be added")
		return &LedgerError{Op: "addFriend", Err: err}
	}
	d.notify.DisplaySuccess(fmt.Sprintf("%s is now a friend", friend.Nickname))
	return nil
}

// RemoveFriend removes a friendship on the service.
func (d *Directory) RemoveFriend(ctx context.Context, addr types.Address, friend Friend) error {
	if err := d.svc.RemoveFriend(ctx, addr, friend.Address); err != nil {
		d.notify.DisplayError("Friend could not be removed")
		return &LedgerError{Op: "removeFriend", Err: err}
	}
	d.notify.DisplaySuccess(fmt.Sprintf("%s was removed from your friends", friend.Nickname))
	return nil
}

// Search finds registered users by nickname. Queries shorter than
// MinNicknameLength return an empty result without touching the service.
func (d *Directory) Search(ctx context.Context, query string) ([]Friend, error) {
	if len(query) < MinNicknameLength {
		return nil, nil
	}
	users, err := d.svc.SearchUsers(ctx, query)
	if err != nil {
		return nil, &LedgerError{Op: "searchUsers", Err: err}
	}

	found := make([]Friend, 0, len(users))
	for _, u := range users {
		userAddr, err := types.ParseAddress(u.Addr)
		if err != nil {
			log.Reconcile.Warn().Str("addr", u.Addr).Msg("skipping malformed search result")
			continue
		}
		nick := u.Nick
		if needsResolution(nick) {
			nick = userAddr.ShortHex()
		}
		found = append(found, Friend{Address: userAddr, Nickname: nick})
	}
	return found, nil
}
