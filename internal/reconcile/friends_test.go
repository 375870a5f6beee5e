package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/trustline-app/trustline/internal/ledger"
	"github.com/trustline-app/trustline/pkg/types"
)

func TestDirectory_LoadFriends(t *testing.T) {
	addrA := testAddr(0x01)
	addrB := testAddr(0x02)
	addrC := testAddr(0x03)

	svc := newFakeService()
	svc.friendsFn = func(types.Address) ([]ledger.FriendRecord, error) {
		return []ledger.FriendRecord{
			{Addr: addrA.Hex(), Nick: "alice"},
			{Addr: addrB.Hex(), Nick: ""},
			{Addr: addrC.Hex(), Nick: UnresolvedNickname},
			{Addr: "garbage", Nick: "ignored"},
		}, nil
	}
	svc.nicknameFn = func(addr types.Address) (string, error) {
		if addr == addrC {
			return "carol", nil
		}
		return "", errors.New("unknown")
	}
	notify := &recordingNotifier{}
	dir := NewDirectory(svc, NewResolver(svc), notify)

	friends, err := dir.LoadFriends(context.Background(), testAddr(0xff))
	if err != nil {
		t.Fatalf("LoadFriends: %v", err)
	}
	if len(friends) != 3 {
		t.Fatalf("len = %d, want 3 (malformed entry dropped)", len(friends))
	}
	if friends[0].Nickname != "alice" {
		t.Errorf("friends[0].Nickname = %q", friends[0].Nickname)
	}
	// Empty nickname gets a synthetic one at parse time and is not
	// looked up again.
	if want := addrB.ShortHex(); friends[1].Nickname != want {
		t.Errorf("friends[1].Nickname = %q, want %q", friends[1].Nickname, want)
	}
	if friends[2].Nickname != "carol" {
		t.Errorf("friends[2].Nickname = %q, want %q", friends[2].Nickname, "carol")
	}
	if len(notify.errors) != 0 {
		t.Errorf("unexpected notifications: %v", notify.errors)
	}
}

func TestDirectory_LoadFriendsFailure(t *testing.T) {
	svc := newFakeService()
	svc.friendsFn = func(types.Address) ([]ledger.FriendRecord, error) {
		return nil, errors.New("down")
	}
	notify := &recordingNotifier{}
	dir := NewDirectory(svc, NewResolver(svc), notify)

	_, err := dir.LoadFriends(context.Background(), testAddr(0x01))
	var lerr *LedgerError
	if !errors.As(err, &lerr) {
		t.Fatalf("error = %v, want LedgerError", err)
	}
	if len(notify.errors) != 1 {
		t.Errorf("error notifications = %d, want 1", len(notify.errors))
	}
}

func TestDirectory_AddRemoveFriend(t *testing.T) {
	owner := testAddr(0x01)
	friend := Friend{Address: testAddr(0x02), Nickname: "bob"}

	t.Run("add success", func(t *testing.T) {
		svc := newFakeService()
		notify := &recordingNotifier{}
		dir := NewDirectory(svc, NewResolver(svc), notify)

		if err := dir.AddFriend(context.Background(), owner, friend); err != nil {
			t.Fatalf("AddFriend: %v", err)
		}
		if len(notify.successes) != 1 || notify.successes[0] != "bob is now a friend" {
			t.Errorf("successes = %v", notify.successes)
		}
	})

	t.Run("add failure", func(t *testing.T) {
		svc := newFakeService()
		svc.addFriendFn = func(_, _ types.Address) error { return errors.New("down") }
		notify := &recordingNotifier{}
		dir := NewDirectory(svc, NewResolver(svc), notify)

		err := dir.AddFriend(context.Background(), owner, friend)
		var lerr *LedgerError
		if !errors.As(err, &lerr) {
			t.Fatalf("error = %v, want LedgerError", err)
		}
		if len(notify.errors) != 1 {
			t.Errorf("error notifications = %d, want 1", len(notify.errors))
		}
	})

	t.Run("remove success", func(t *testing.T) {
		svc := newFakeService()
		notify := &recordingNotifier{}
		dir := NewDirectory(svc, NewResolver(svc), notify)

		if err := dir.RemoveFriend(context.Background(), owner, friend); err != nil {
			t.Fatalf("RemoveFriend: %v", err)
		}
		if len(notify.successes) != 1 || notify.successes[0] != "bob was removed from your friends" {
			t.Errorf("successes = %v", notify.successes)
		}
	})
}

func TestDirectory_Search(t *testing.T) {
	svc := newFakeService()
	called := false
	svc.searchFn = func(query string) ([]ledger.UserRecord, error) {
		called = true
		return []ledger.UserRecord{
			{Addr: testAddr(0x05).Hex(), Nick: "dave"},
			{Addr: testAddr(0x06).Hex(), Nick: UnresolvedNickname},
		}, nil
	}
	dir := NewDirectory(svc, NewResolver(svc), &recordingNotifier{})
	ctx := context.Background()

	t.Run("short query skips the service", func(t *testing.T) {
		found, err := dir.Search(ctx, "da")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if found != nil || called {
			t.Errorf("short query reached the service")
		}
	})

	t.Run("results", func(t *testing.T) {
		found, err := dir.Search(ctx, "dav")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(found) != 2 {
			t.Fatalf("len = %d, want 2", len(found))
		}
		if found[0].Nickname != "dave" {
			t.Errorf("found[0].Nickname = %q", found[0].Nickname)
		}
		if want := testAddr(0x06).ShortHex(); found[1].Nickname != want {
			t.Errorf("found[1].Nickname = %q, want %q", found[1].Nickname, want)
		}
	})
}
