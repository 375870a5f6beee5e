package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trustline-app/trustline/pkg/crypto"
	"github.com/trustline-app/trustline/pkg/types"
)

// fakeService is an httptest JSON-RPC handler scripted per method.
type fakeService struct {
	t *testing.T
	// handlers maps method name to a result payload or an *RPCError.
	handlers map[string]interface{}
	// calls records every method invocation with its raw params.
	calls []recordedCall
}

type recordedCall struct {
	Method string
	Params json.RawMessage
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		ID     int             `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		f.t.Errorf("decode request: %v", err)
		return
	}
	f.calls = append(f.calls, recordedCall{Method: req.Method, Params: req.Params})

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	switch h := f.handlers[req.Method].(type) {
	case nil:
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	case *RPCError:
		resp["error"] = map[string]interface{}{"code": h.Code, "message": h.Message}
	default:
		resp["result"] = h
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

func newFakeService(t *testing.T, handlers map[string]interface{}) (*fakeService, *Client) {
	t.Helper()
	svc := &fakeService{t: t, handlers: handlers}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return svc, New(srv.URL)
}

func testAddr(t *testing.T, b byte) types.Address {
	t.Helper()
	var a types.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestClient_GetNickname(t *testing.T) {
	svc, client := newFakeService(t, map[string]interface{}{
		"nick_get": NicknameResult{Nickname: "alice"},
	})

	nick, err := client.GetNickname(context.Background(), testAddr(t, 0xaa))
	if err != nil {
		t.Fatalf("GetNickname error: %v", err)
	}
	if nick != "alice" {
		t.Errorf("nickname = %q, want alice", nick)
	}

	if len(svc.calls) != 1 || svc.calls[0].Method != "nick_get" {
		t.Fatalf("calls = %+v, want one nick_get", svc.calls)
	}
	var p AddressParam
	if err := json.Unmarshal(svc.calls[0].Params, &p); err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Address != testAddr(t, 0xaa).Hex() {
		t.Errorf("address param = %q", p.Address)
	}
}

func TestClient_GetBalanceBetween_Negative(t *testing.T) {
	_, client := newFakeService(t, map[string]interface{}{
		"balance_getBetween": BalanceResult{Amount: -1250},
	})

	amount, err := client.GetBalanceBetween(context.Background(), testAddr(t, 1), testAddr(t, 2))
	if err != nil {
		t.Fatalf("GetBalanceBetween error: %v", err)
	}
	if amount != -1250 {
		t.Errorf("amount = %d, want -1250", amount)
	}
}

func TestClient_GetFriends_MixedShapes(t *testing.T) {
	_, client := newFakeService(t, map[string]interface{}{
		"friend_list": []interface{}{
			"0x0102030405060708090a0b0c0d0e0f1011121314",
			map[string]string{"addr": "ffeeddccbbaa99887766554433221100ffeeddcc", "nick": "bob"},
		},
	})

	friends, err := client.GetFriends(context.Background(), testAddr(t, 3))
	if err != nil {
		t.Fatalf("GetFriends error: %v", err)
	}
	if len(friends) != 2 {
		t.Fatalf("len = %d, want 2", len(friends))
	}
	if friends[1].Nick != "bob" {
		t.Errorf("Nick = %q, want bob", friends[1].Nick)
	}
}

func TestClient_CreateCreditRecord(t *testing.T) {
	digest := crypto.Hash([]byte("payload"))
	svc, client := newFakeService(t, map[string]interface{}{
		"credit_create": CreditRecord{
			LedgerContractID: "trustline-usd",
			Amount:           550,
			Memo:             "lunch",
			Nonce:            7,
			Digest:           hex.EncodeToString(digest[:]),
		},
	})

	record, err := client.CreateCreditRecord(context.Background(), "trustline-usd", testAddr(t, 1), testAddr(t, 2), 550, "lunch")
	if err != nil {
		t.Fatalf("CreateCreditRecord error: %v", err)
	}
	if record.Nonce != 7 {
		t.Errorf("nonce = %d, want 7", record.Nonce)
	}

	var p CreateCreditParam
	if err := json.Unmarshal(svc.calls[0].Params, &p); err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Creditor != testAddr(t, 1).Hex() || p.Debtor != testAddr(t, 2).Hex() {
		t.Errorf("creditor/debtor = %q/%q", p.Creditor, p.Debtor)
	}
	if p.Amount != 550 || p.Memo != "lunch" {
		t.Errorf("amount/memo = %d/%q", p.Amount, p.Memo)
	}
}

func TestClient_CreateCreditRecord_MalformedDigest(t *testing.T) {
	_, client := newFakeService(t, map[string]interface{}{
		"credit_create": CreditRecord{Digest: "not-hex"},
	})
	if _, err := client.CreateCreditRecord(context.Background(), "trustline-usd", testAddr(t, 1), testAddr(t, 2), 1, "m"); err == nil {
		t.Error("expected error for malformed digest")
	}
}

func TestClient_RejectPendingTransaction_Signs(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey error: %v", err)
	}
	svc, client := newFakeService(t, map[string]interface{}{
		"credit_rejectByHash": map[string]bool{"ok": true},
	})

	hash := "deadbeef"
	if err := client.RejectPendingTransaction(context.Background(), hash, key); err != nil {
		t.Fatalf("RejectPendingTransaction error: %v", err)
	}

	var p RejectParam
	if err := json.Unmarshal(svc.calls[0].Params, &p); err != nil {
		t.Fatalf("params: %v", err)
	}
	sig, err := hex.DecodeString(p.Signature)
	if err != nil {
		t.Fatalf("signature not hex: %v", err)
	}
	digest := crypto.Hash([]byte(hash))
	if !crypto.VerifySignature(digest[:], sig, key.PublicKey()) {
		t.Error("rejection signature should verify over the hash digest")
	}
}

func TestClient_ServiceError(t *testing.T) {
	_, client := newFakeService(t, map[string]interface{}{
		"balance_get": &RPCError{Code: -32000, Message: "unknown account"},
	})

	_, err := client.GetBalance(context.Background(), testAddr(t, 9))
	if err == nil {
		t.Fatal("expected error")
	}
	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32000 {
		t.Errorf("code = %d, want -32000", rpcErr.Code)
	}
}

func TestClient_MethodNotFound(t *testing.T) {
	_, client := newFakeService(t, nil)
	err := client.Call(context.Background(), "nonexistent_method", nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}
	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("code = %d, want -32601", rpcErr.Code)
	}
}

func TestClient_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // port 1 — should refuse
	err := client.Call(context.Background(), "balance_get", nil, nil)
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	_, client := newFakeService(t, map[string]interface{}{
		"balance_get": BalanceResult{Amount: 1},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Call(ctx, "balance_get", nil, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
