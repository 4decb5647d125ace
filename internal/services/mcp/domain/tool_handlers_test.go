package domain

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	"github.com/louisbranch/leaveledger/internal/services/leave/ledger"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"github.com/louisbranch/leaveledger/internal/services/leave/session"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage/sqlite"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/crypto/bcrypt"
)

func newTestDeps(t *testing.T) Deps {
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
	return Deps{
		Sessions:  session.NewStore(),
		Directory: dir,
		Ledger:    ledger.New(store),
		Engine:    requests.NewEngine(store),
	}
}

func login(t *testing.T, deps Deps, username, password string) string {
	t.Helper()
	_, env, err := LoginHandler(deps)(context.Background(), nil, LoginInput{Username: username, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !env.Success {
		t.Fatalf("login %s failed: %s", username, env.Code())
	}
	return env.Data.(wire.LoginPayload).Token
}

func createEmployee(t *testing.T, deps Deps, adminToken, id, username string) {
	t.Helper()
	_, env, err := AdminCreateEmployeeHandler(deps)(context.Background(), nil, AdminCreateEmployeeInput{
		Token:    adminToken,
		ID:       id,
		Username: username,
		Password: "secret",
		Name:     "Employee " + id,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	if !env.Success {
		t.Fatalf("create employee %s failed: %s", id, env.Code())
	}
}

func requireFailure(t *testing.T, result *mcp.CallToolResult, env wire.Envelope, code string) {
	t.Helper()
	if env.Success {
		t.Fatalf("success = true, want failure %s", code)
	}
	if env.Code() != code {
		t.Fatalf("error code = %q, want %q", env.Code(), code)
	}
	if result == nil || !result.IsError {
		t.Fatalf("result.IsError = false, want true")
	}
}

func TestLoginReturnsTokenAndIdentity(t *testing.T) {
	deps := newTestDeps(t)

	result, env, err := LoginHandler(deps)(context.Background(), nil, LoginInput{Username: "admin", Password: "admin"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.IsError {
		t.Fatalf("result.IsError = true, want false")
	}
	payload, ok := env.Data.(wire.LoginPayload)
	if !ok {
		t.Fatalf("data type = %T, want wire.LoginPayload", env.Data)
	}
	if payload.EmployeeID != "admin" || !payload.IsAdmin || payload.Name != "Administrator" {
		t.Fatalf("payload = %+v, want admin identity", payload)
	}
	if len(payload.Token) != 32 {
		t.Fatalf("token length = %d, want 32", len(payload.Token))
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	deps := newTestDeps(t)

	result, env, err := LoginHandler(deps)(context.Background(), nil, LoginInput{Username: "admin", Password: "wrong"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireFailure(t, result, env, "AUTH_FAILED")
	if *env.ErrorMessage != "Invalid username or password" {
		t.Fatalf("message = %q, want generic auth failure", *env.ErrorMessage)
	}
}

func TestWhoAmIAndLogout(t *testing.T) {
	deps := newTestDeps(t)
	token := login(t, deps, "admin", "admin")

	_, env, err := WhoAmIHandler(deps)(context.Background(), nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("who_am_i: %v", err)
	}
	if got := env.Data.(wire.EmployeePayload).Employee.ID; got != "admin" {
		t.Fatalf("employee id = %q, want admin", got)
	}

	_, env, err = LogoutHandler(deps)(context.Background(), nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := env.Data.(wire.MessagePayload).Message; got != "Logout successful" {
		t.Fatalf("message = %q, want Logout successful", got)
	}

	result, env, err := WhoAmIHandler(deps)(context.Background(), nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("who_am_i after logout: %v", err)
	}
	requireFailure(t, result, env, "AUTH_FAILED")

	result, env, err = LogoutHandler(deps)(context.Background(), nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("second logout: %v", err)
	}
	requireFailure(t, result, env, "AUTH_FAILED")
}

func TestAdminToolsRequireAdmin(t *testing.T) {
	deps := newTestDeps(t)
	adminToken := login(t, deps, "admin", "admin")
	createEmployee(t, deps, adminToken, "E1", "alice")
	userToken := login(t, deps, "alice", "secret")

	result, env, err := AdminListEmployeesHandler(deps)(context.Background(), nil, TokenInput{Token: userToken})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireFailure(t, result, env, "FORBIDDEN")
	if *env.ErrorMessage != "Admin only feature" {
		t.Fatalf("message = %q, want Admin only feature", *env.ErrorMessage)
	}

	result, env, err = AdminCreateEmployeeHandler(deps)(context.Background(), nil, AdminCreateEmployeeInput{
		Token: userToken, ID: "E2", Username: "bob", Password: "x", Name: "Bob", Email: "bob@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireFailure(t, result, env, "FORBIDDEN")

	_, env, err = AdminListEmployeesHandler(deps)(context.Background(), nil, TokenInput{Token: adminToken})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	list := env.Data.(wire.EmployeeListPayload)
	if list.Count != 2 {
		t.Fatalf("count = %d, want 2", list.Count)
	}
}

func TestAdminCreateEmployeeRejectsDuplicates(t *testing.T) {
	deps := newTestDeps(t)
	adminToken := login(t, deps, "admin", "admin")
	createEmployee(t, deps, adminToken, "E1", "alice")

	result, env, err := AdminCreateEmployeeHandler(deps)(context.Background(), nil, AdminCreateEmployeeInput{
		Token: adminToken, ID: "E2", Username: "alice", Password: "x", Name: "Other", Email: "other@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	requireFailure(t, result, env, "DUPLICATE_IDENTITY")
	if *env.ErrorMessage != "Username already in use" {
		t.Fatalf("message = %q, want Username already in use", *env.ErrorMessage)
	}
}

func TestAdminDeactivateEmployee(t *testing.T) {
	deps := newTestDeps(t)
	adminToken := login(t, deps, "admin", "admin")
	createEmployee(t, deps, adminToken, "E1", "alice")
	userToken := login(t, deps, "alice", "secret")

	result, env, err := AdminDeactivateEmployeeHandler(deps)(context.Background(), nil, AdminDeactivateEmployeeInput{Token: userToken, ID: "E1"})
	if err != nil {
		t.Fatalf("deactivate as employee: %v", err)
	}
	requireFailure(t, result, env, "FORBIDDEN")

	result, env, err = AdminDeactivateEmployeeHandler(deps)(context.Background(), nil, AdminDeactivateEmployeeInput{Token: adminToken, ID: "admin"})
	if err != nil {
		t.Fatalf("deactivate self: %v", err)
	}
	requireFailure(t, result, env, "VALIDATION_ERROR")

	result, env, err = AdminDeactivateEmployeeHandler(deps)(context.Background(), nil, AdminDeactivateEmployeeInput{Token: adminToken, ID: "ghost"})
	if err != nil {
		t.Fatalf("deactivate unknown: %v", err)
	}
	requireFailure(t, result, env, "NOT_FOUND")

	_, env, err = AdminDeactivateEmployeeHandler(deps)(context.Background(), nil, AdminDeactivateEmployeeInput{Token: adminToken, ID: "E1"})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if !env.Success {
		t.Fatalf("deactivate failed: %s", env.Code())
	}

	result, env, err = WhoAmIHandler(deps)(context.Background(), nil, TokenInput{Token: userToken})
	if err != nil {
		t.Fatalf("who_am_i: %v", err)
	}
	requireFailure(t, result, env, "AUTH_FAILED")

	result, env, err = LoginHandler(deps)(context.Background(), nil, LoginInput{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	requireFailure(t, result, env, "AUTH_FAILED")

	_, env, err = AdminListEmployeesHandler(deps)(context.Background(), nil, TokenInput{Token: adminToken})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if got := env.Data.(wire.EmployeeListPayload).Count; got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
}

func TestLeaveToolsFlow(t *testing.T) {
	deps := newTestDeps(t)
	adminToken := login(t, deps, "admin", "admin")
	createEmployee(t, deps, adminToken, "E1", "alice")
	token := login(t, deps, "alice", "secret")
	ctx := context.Background()

	_, env, err := GetLeaveBalanceHandler(deps)(ctx, nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got := env.Data.(wire.BalancePayload).Balances["CL"]; got != 10 {
		t.Fatalf("CL = %v, want 10", got)
	}

	_, env, err = ApplyLeaveHandler(deps)(ctx, nil, ApplyLeaveInput{
		Token: token, LeaveType: "CL", Days: 3, StartDate: "2025-01-01", Reason: "trip",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	applied := env.Data.(wire.ApplyPayload)
	if applied.Balances["CL"] != 7 {
		t.Fatalf("CL after apply = %v, want 7", applied.Balances["CL"])
	}
	if applied.Request.Status != "APPROVED" {
		t.Fatalf("status = %q, want APPROVED", applied.Request.Status)
	}

	result, env, err := ApplyLeaveHandler(deps)(ctx, nil, ApplyLeaveInput{
		Token: token, LeaveType: "PL", Days: 1, StartDate: "2025-01-03",
	})
	if err != nil {
		t.Fatalf("overlapping apply: %v", err)
	}
	requireFailure(t, result, env, "OVERLAPPING_REQUEST")

	result, env, err = ApplyLeaveHandler(deps)(ctx, nil, ApplyLeaveInput{
		Token: token, LeaveType: "CL", Days: 8, StartDate: "2025-02-01",
	})
	if err != nil {
		t.Fatalf("insufficient apply: %v", err)
	}
	requireFailure(t, result, env, "INSUFFICIENT_BALANCE")

	_, env, err = ListMyLeaveRequestsHandler(deps)(ctx, nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := env.Data.(wire.RequestListPayload).Count; got != 1 {
		t.Fatalf("request count = %d, want 1", got)
	}

	_, env, err = CreditLeaveHandler(deps)(ctx, nil, CreditLeaveInput{Token: token, LeaveType: "CL", Days: 2})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	credit := env.Data.(wire.CreditPayload)
	if credit.Balances["CL"] != 9 {
		t.Fatalf("CL after credit = %v, want 9", credit.Balances["CL"])
	}
	if credit.Adjustment.Note != "manual credit" {
		t.Fatalf("note = %q, want manual credit", credit.Adjustment.Note)
	}

	casual := 4.5
	_, env, err = InitializeBalanceHandler(deps)(ctx, nil, InitializeBalanceInput{Token: token, Casual: &casual})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	balances := env.Data.(wire.BalancePayload).Balances
	if balances["CL"] != 4.5 || balances["PL"] != 15 || balances["ML"] != 90 || balances["OTHER"] != 0 {
		t.Fatalf("balances = %v, want CL 4.5 with defaults elsewhere", balances)
	}
}

func TestApplyLeaveValidation(t *testing.T) {
	deps := newTestDeps(t)
	token := login(t, deps, "admin", "admin")

	tests := []struct {
		name  string
		input ApplyLeaveInput
		code  string
	}{
		{name: "zero days", input: ApplyLeaveInput{Token: token, LeaveType: "CL", Days: 0, StartDate: "2025-01-01"}, code: "VALIDATION_ERROR"},
		{name: "unknown type", input: ApplyLeaveInput{Token: token, LeaveType: "XL", Days: 1, StartDate: "2025-01-01"}, code: "VALIDATION_ERROR"},
		{name: "bad date", input: ApplyLeaveInput{Token: token, LeaveType: "CL", Days: 1, StartDate: "01/01/2025"}, code: "VALIDATION_ERROR"},
		{name: "bad token", input: ApplyLeaveInput{Token: "nope", LeaveType: "CL", Days: 1, StartDate: "2025-01-01"}, code: "AUTH_FAILED"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, env, err := ApplyLeaveHandler(deps)(context.Background(), nil, tc.input)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			requireFailure(t, result, env, tc.code)
		})
	}
}

func TestResetCredentialKeepsSession(t *testing.T) {
	deps := newTestDeps(t)
	token := login(t, deps, "admin", "admin")

	_, env, err := ResetCredentialHandler(deps)(context.Background(), nil, ResetCredentialInput{Token: token, NewPassword: "changed"})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !env.Success {
		t.Fatalf("reset failed: %s", env.Code())
	}
	login(t, deps, "admin", "changed")

	_, env, err = WhoAmIHandler(deps)(context.Background(), nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("who_am_i: %v", err)
	}
	if !env.Success {
		t.Fatalf("old token rejected after reset: %s", env.Code())
	}
}

func TestCallerWithMissingEmployee(t *testing.T) {
	deps := newTestDeps(t)
	token := deps.Sessions.Issue("ghost")

	result, env, err := WhoAmIHandler(deps)(context.Background(), nil, TokenInput{Token: token})
	if err != nil {
		t.Fatalf("who_am_i: %v", err)
	}
	requireFailure(t, result, env, "AUTH_FAILED")
	if *env.ErrorMessage != "Employee not found" {
		t.Fatalf("message = %q, want Employee not found", *env.ErrorMessage)
	}
}
