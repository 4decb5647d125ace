package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	"github.com/louisbranch/leaveledger/internal/services/leave/ledger"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"github.com/louisbranch/leaveledger/internal/services/leave/session"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage/sqlite"
	"github.com/louisbranch/leaveledger/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "leave.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dir := directory.New(store, directory.WithBcryptCost(bcrypt.MinCost))
	if _, _, err := dir.EnsureAdmin(context.Background(), directory.DefaultAdminSeed()); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	server, err := New(domain.Deps{
		Sessions:  session.NewStore(),
		Directory: dir,
		Ledger:    ledger.New(store),
		Engine:    requests.NewEngine(store),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

func connectClient(t *testing.T, ctx context.Context, server *Server) (*mcp.ClientSession, <-chan error) {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), time.Second)
	defer clientCancel()
	clientSession, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	return clientSession, serveErr
}

func decodeStructuredContent[T any](t *testing.T, value any) T {
	t.Helper()

	data, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var output T
	if err := json.Unmarshal(data, &output); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return output
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func TestNewRejectsMissingDeps(t *testing.T) {
	if _, err := New(domain.Deps{}); err == nil {
		t.Fatal("expected error for empty deps")
	}
}

func TestServerListsLeaveTools(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientSession, _ := connectClient(t, ctx, newTestServer(t))
	defer clientSession.Close()

	result, err := clientSession.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"admin_create_employee",
		"admin_deactivate_employee",
		"admin_list_employees",
		"apply_leave",
		"credit_leave",
		"get_leave_balance",
		"initialize_balance",
		"list_my_leave_requests",
		"login",
		"logout",
		"reset_credential",
		"who_am_i",
	}
	if len(names) != len(want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tools = %v, want %v", names, want)
		}
	}
}

func TestServerLoginAndApplyLeave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientSession, _ := connectClient(t, ctx, newTestServer(t))
	defer clientSession.Close()

	loginResult, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "login",
		Arguments: map[string]any{"username": "admin", "password": "admin"},
	})
	if err != nil {
		t.Fatalf("call login: %v", err)
	}
	if loginResult.IsError {
		t.Fatalf("login failed: %+v", loginResult)
	}
	login := decodeStructuredContent[envelope[wire.LoginPayload]](t, loginResult.StructuredContent)
	if !login.Success || login.Data.Token == "" {
		t.Fatalf("login envelope = %+v, want token", login)
	}

	applyResult, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name: "apply_leave",
		Arguments: map[string]any{
			"token":      login.Data.Token,
			"leave_type": "PL",
			"days":       2.5,
			"start_date": "2025-03-10",
		},
	})
	if err != nil {
		t.Fatalf("call apply_leave: %v", err)
	}
	if applyResult.IsError {
		t.Fatalf("apply_leave failed: %+v", applyResult)
	}
	applied := decodeStructuredContent[envelope[wire.ApplyPayload]](t, applyResult.StructuredContent)
	if got := applied.Data.Balances["PL"]; got != 12.5 {
		t.Fatalf("PL = %v, want 12.5", got)
	}

	rejected, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "who_am_i",
		Arguments: map[string]any{"token": "not-a-token"},
	})
	if err != nil {
		t.Fatalf("call who_am_i: %v", err)
	}
	if !rejected.IsError {
		t.Fatal("expected who_am_i with a bad token to be an error result")
	}
}

func TestServeWithTransportStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientSession, serveErr := connectClient(t, ctx, newTestServer(t))
	defer clientSession.Close()

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRunUnsupportedTransport(t *testing.T) {
	server := newTestServer(t)
	if err := server.Run(context.Background(), Config{Transport: "carrier-pigeon"}); err == nil {
		t.Fatal("expected unsupported transport error")
	}
}

func TestAddMCPToolRejectsUnknownHandler(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	err := addMCPTool(server, &mcp.Tool{Name: "odd"}, func() {})
	if err == nil {
		t.Fatal("expected error for unsupported handler type")
	}
}
