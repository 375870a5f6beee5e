// trustline-cli is a command-line client for a trustline ledger service.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/trustline-app/trustline/config"
	"github.com/trustline-app/trustline/internal/ledger"
	"github.com/trustline-app/trustline/internal/log"
	"github.com/trustline-app/trustline/internal/reconcile"
	"github.com/trustline-app/trustline/internal/session"
	"github.com/trustline-app/trustline/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	apiURL := ""
	dataDir := ""
	timeout := ""
	logLevel := ""

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--api" && len(args) > 1:
			apiURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--api="):
			apiURL = args[0][len("--api="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--timeout" && len(args) > 1:
			timeout = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--timeout="):
			timeout = args[0][len("--timeout="):]
			args = args[1:]
		case args[0] == "--log-level" && len(args) > 1:
			logLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			logLevel = args[0][len("--log-level="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(dataDir)
	if err != nil {
		fatal("load config: %v", err)
	}
	if apiURL != "" {
		cfg.APIEndpoint = apiURL
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			fatal("bad --timeout %q: %v", timeout, err)
		}
		cfg.RequestTimeout = d
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		fatal("config: %v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	app, err := newApp(cfg)
	if err != nil {
		fatal("%v", err)
	}
	ctx := context.Background()

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "create":
		app.cmdCreate(ctx, cmdArgs)
	case "recover":
		app.cmdRecover(ctx)
	case "remove":
		app.cmdRemove()
	case "whoami":
		app.cmdWhoami(ctx)
	case "balances":
		app.cmdBalances(ctx)
	case "friends":
		app.cmdFriends(ctx)
	case "friend-add":
		app.cmdFriendAdd(ctx, cmdArgs)
	case "friend-remove":
		app.cmdFriendRemove(ctx, cmdArgs)
	case "search":
		app.cmdSearch(ctx, cmdArgs)
	case "lend":
		app.cmdPropose(ctx, cmdArgs, reconcile.DirectionLend)
	case "borrow":
		app.cmdPropose(ctx, cmdArgs, reconcile.DirectionBorrow)
	case "pending":
		app.cmdPending(ctx)
	case "history":
		app.cmdHistory(ctx)
	case "confirm":
		app.cmdConfirm(ctx, cmdArgs)
	case "reject":
		app.cmdReject(ctx, cmdArgs)
	case "nickname":
		app.cmdNickname(ctx, cmdArgs)
	case "register-channel":
		app.cmdRegisterChannel(ctx, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: trustline-cli [global flags] <command> [args]

Global flags:
  --api <url>         Ledger service endpoint (default: http://127.0.0.1:7402)
  --datadir <path>    Data directory (default: ~/.trustline)
  --timeout <dur>     Per-request timeout, e.g. 5s (default: 10s)
  --log-level <lvl>   debug, info, warn, or error

Commands:
  create <nickname>             Create a new account; prints the recovery phrase
  recover                       Restore an account from its recovery phrase
  remove                        Delete the stored account from this machine
  whoami                        Show address, nickname, and total balance

  balances                      Show per-counterparty balances
  pending                       Show pending transactions
  history                       Show settled transaction history

  lend <friend> <amount> <memo>    Propose a debt you are owed
  borrow <friend> <amount> <memo>  Propose a debt you owe
  confirm <hash>                Confirm a pending transaction
  reject <hash>                 Reject a pending transaction

  friends                       List friends
  friend-add <address>          Add a friend by address
  friend-remove <address>       Remove a friend
  search <nickname>             Search registered users

  nickname <name>               Change your registered nickname
  register-channel <id> <platform>
                                Register a push notification channel
`)
}

// app wires the CLI's collaborators for one invocation.
type app struct {
	cfg       *config.Config
	client    *ledger.Client
	sess      *session.Session
	resolver  *reconcile.Resolver
	balances  *reconcile.Aggregator
	friends   *reconcile.Directory
	lifecycle *reconcile.Manager
}

func newApp(cfg *config.Config) (*app, error) {
	client := ledger.NewWithTimeout(cfg.APIEndpoint, cfg.RequestTimeout)
	notify := consoleNotifier{}
	sess, err := session.New(client, cfg.VaultFile(), notify)
	if err != nil {
		return nil, err
	}
	resolver := reconcile.NewResolver(client)
	return &app{
		cfg:       cfg,
		client:    client,
		sess:      sess,
		resolver:  resolver,
		balances:  reconcile.NewAggregator(client, resolver, notify),
		friends:   reconcile.NewDirectory(client, resolver, notify),
		lifecycle: reconcile.NewManager(client, resolver, notify, config.LedgerContractID),
	}, nil
}

// login prompts for the password and loads the stored account.
func (a *app) login() {
	if !a.sess.HasStoredAccount() {
		fatal("no account on this machine; run 'trustline-cli create' or 'recover' first")
	}
	password, err := readPassword("Password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if err := a.sess.Login(string(password)); err != nil {
		fatal("%v", err)
	}
}

// ── account ─────────────────────────────────────────────────────────────

func (a *app) cmdCreate(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli create <nickname>")
	}
	if a.sess.HasStoredAccount() {
		fatal("an account already exists; run 'trustline-cli remove' first")
	}
	nickname := args[0]
	if err := session.CheckNickname(nickname); err != nil {
		fatal("%v", err)
	}
	taken, err := a.sess.NicknameTaken(ctx, nickname)
	if err != nil {
		log.Session.Warn().Err(err).Msg("nickname availability check failed")
	} else if taken {
		fatal("nickname %q is already taken", nickname)
	}

	password := readNewPassword()
	phrase, err := a.sess.Create(ctx, nickname, password, password)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("Address:  %s\n\n", a.sess.Account().Address.Hex())
	fmt.Println("Recovery phrase (write it down, it is shown only once):")
	fmt.Printf("\n  %s\n", phrase)
}

func (a *app) cmdRecover(ctx context.Context) {
	if a.sess.HasStoredAccount() {
		fatal("an account already exists; run 'trustline-cli remove' first")
	}
	fmt.Fprint(os.Stderr, "Recovery phrase: ")
	reader := bufio.NewReader(os.Stdin)
	phrase, err := reader.ReadString('\n')
	if err != nil {
		fatal("read phrase: %v", err)
	}

	password := readNewPassword()
	if err := a.sess.Recover(ctx, phrase, password, password); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Account restored: %s\n", a.sess.Account().Address.Hex())
}

func (a *app) cmdRemove() {
	if !a.sess.HasStoredAccount() {
		fatal("no account on this machine")
	}
	// Require the password so a stray invocation can't wipe the vault.
	a.login()
	if err := a.sess.Remove(); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Account removed. It can be restored with its recovery phrase.")
}

func (a *app) cmdWhoami(ctx context.Context) {
	a.login()
	info, err := a.sess.Info(ctx)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Address:  %s\n", info.Address.Hex())
	fmt.Printf("Nickname: %s\n", info.Nickname)
	fmt.Printf("Balance:  %s\n", formatAmount(info.Balance))
}

func (a *app) cmdNickname(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli nickname <name>")
	}
	a.login()
	if err := a.sess.UpdateNickname(ctx, args[0]); err != nil {
		os.Exit(1)
	}
}

func (a *app) cmdRegisterChannel(ctx context.Context, args []string) {
	if len(args) < 2 {
		fatal("Usage: trustline-cli register-channel <id> <platform>")
	}
	a.login()
	if err := a.sess.RegisterChannel(ctx, args[0], args[1]); err != nil {
		fatal("%v", err)
	}
	fmt.Println("Notification channel registered.")
}

// ── balances ────────────────────────────────────────────────────────────

func (a *app) cmdBalances(ctx context.Context) {
	a.login()
	balances, err := a.balances.Aggregate(ctx, a.sess.Account().Address)
	if err != nil {
		os.Exit(1)
	}
	if len(balances) == 0 {
		fmt.Println("No balances.")
		return
	}
	for _, b := range balances {
		fmt.Printf("%-20s %-12s %s\n", b.Nickname, b.Counterparty.ShortHex(), formatAmount(b.Amount))
	}
}

// ── friends ─────────────────────────────────────────────────────────────

func (a *app) cmdFriends(ctx context.Context) {
	a.login()
	friends, err := a.friends.LoadFriends(ctx, a.sess.Account().Address)
	if err != nil {
		os.Exit(1)
	}
	if len(friends) == 0 {
		fmt.Println("No friends yet.")
		return
	}
	for _, f := range friends {
		fmt.Printf("%-20s %s\n", f.Nickname, f.Address.Hex())
	}
}

func (a *app) cmdFriendAdd(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli friend-add <address>")
	}
	a.login()
	friend, err := a.friendByAddress(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	if err := a.friends.AddFriend(ctx, a.sess.Account().Address, friend); err != nil {
		os.Exit(1)
	}
}

func (a *app) cmdFriendRemove(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli friend-remove <address>")
	}
	a.login()
	friend, err := a.friendByAddress(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	if err := a.friends.RemoveFriend(ctx, a.sess.Account().Address, friend); err != nil {
		os.Exit(1)
	}
}

func (a *app) cmdSearch(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli search <nickname>")
	}
	found, err := a.friends.Search(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	if len(found) == 0 {
		fmt.Println("No users found.")
		return
	}
	for _, f := range found {
		fmt.Printf("%-20s %s\n", f.Nickname, f.Address.Hex())
	}
}

// friendByAddress parses the address and attaches a display nickname.
func (a *app) friendByAddress(ctx context.Context, raw string) (reconcile.Friend, error) {
	addr, err := types.ParseAddress(raw)
	if err != nil {
		return reconcile.Friend{}, fmt.Errorf("bad address %q: %w", raw, err)
	}
	return reconcile.Friend{Address: addr, Nickname: a.resolver.Resolve(ctx, addr)}, nil
}

// ── transactions ────────────────────────────────────────────────────────

func (a *app) cmdPropose(ctx context.Context, args []string, direction reconcile.Direction) {
	if len(args) < 3 {
		fatal("Usage: trustline-cli %s <friend-address> <amount> <memo>", direction)
	}
	a.login()
	friend, err := a.lookupFriend(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	signer, err := a.sess.Signer()
	if err != nil {
		fatal("%v", err)
	}
	memo := strings.Join(args[2:], " ")
	if err := a.lifecycle.CreateProposal(ctx, a.sess.Account().Address, signer, friend, args[1], memo, direction); err != nil {
		os.Exit(1)
	}
}

func (a *app) cmdPending(ctx context.Context) {
	a.login()
	txs, err := a.lifecycle.Pending(ctx, a.sess.Account().Address)
	if err != nil {
		os.Exit(1)
	}
	if len(txs) == 0 {
		fmt.Println("No pending transactions.")
		return
	}
	for _, tx := range txs {
		fmt.Printf("%s  %s owes %s %s  %q\n",
			tx.Hash, tx.DebtorNickname, tx.CreditorNickname, formatAmount(int64(tx.Amount)), tx.Memo)
	}
}

func (a *app) cmdHistory(ctx context.Context) {
	a.login()
	txs, err := a.lifecycle.Recent(ctx, a.sess.Account().Address)
	if err != nil {
		os.Exit(1)
	}
	if len(txs) == 0 {
		fmt.Println("No settled transactions.")
		return
	}
	for _, tx := range txs {
		fmt.Printf("%s  %s  %s owes %s %s  %q\n",
			tx.Timestamp.Format("2006-01-02 15:04"), tx.Hash,
			tx.DebtorNickname, tx.CreditorNickname, formatAmount(int64(tx.Amount)), tx.Memo)
	}
}

func (a *app) cmdConfirm(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli confirm <hash>")
	}
	a.login()
	tx, err := a.pendingByHash(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	signer, err := a.sess.Signer()
	if err != nil {
		fatal("%v", err)
	}
	if err := a.lifecycle.Confirm(ctx, a.sess.Account().Address, signer, tx); err != nil {
		os.Exit(1)
	}
}

func (a *app) cmdReject(ctx context.Context, args []string) {
	if len(args) < 1 {
		fatal("Usage: trustline-cli reject <hash>")
	}
	a.login()
	tx, err := a.pendingByHash(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	signer, err := a.sess.Signer()
	if err != nil {
		fatal("%v", err)
	}
	if err := a.lifecycle.Reject(ctx, signer, tx); err != nil {
		os.Exit(1)
	}
}

// lookupFriend finds the counterparty in the friend list so proposals
// only go to established friends.
func (a *app) lookupFriend(ctx context.Context, raw string) (reconcile.Friend, error) {
	addr, err := types.ParseAddress(raw)
	if err != nil {
		return reconcile.Friend{}, fmt.Errorf("bad address %q: %w", raw, err)
	}
	friends, err := a.friends.LoadFriends(ctx, a.sess.Account().Address)
	if err != nil {
		return reconcile.Friend{}, err
	}
	for _, f := range friends {
		if f.Address == addr {
			return f, nil
		}
	}
	return reconcile.Friend{}, fmt.Errorf("%s is not a friend; run 'trustline-cli friend-add' first", addr.ShortHex())
}

// pendingByHash finds one of the account's pending transactions.
func (a *app) pendingByHash(ctx context.Context, hash string) (reconcile.PendingTransaction, error) {
	txs, err := a.lifecycle.Pending(ctx, a.sess.Account().Address)
	if err != nil {
		return reconcile.PendingTransaction{}, err
	}
	for _, tx := range txs {
		if tx.Hash == hash {
			return tx, nil
		}
	}
	return reconcile.PendingTransaction{}, fmt.Errorf("no pending transaction with hash %s", hash)
}

// ── Notifier ────────────────────────────────────────────────────────────

// consoleNotifier prints outcome messages for the terminal user.
type consoleNotifier struct{}

func (consoleNotifier) DisplayError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}

func (consoleNotifier) DisplaySuccess(message string) {
	fmt.Println(message)
}

// ── Password helpers ────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readNewPassword prompts twice and fails fast on a mismatch.
func readNewPassword() string {
	password, err := readPassword("New password (min 8 characters): ")
	if err != nil {
		fatal("read password: %v", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	if len(password) < session.MinPasswordLength {
		fatal("password must be at least %d characters", session.MinPasswordLength)
	}
	return string(password)
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
