package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	"github.com/louisbranch/leaveledger/internal/services/leave/ledger"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage/sqlite"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope[T any] struct {
	Success      bool    `json:"success"`
	Data         T       `json:"data"`
	ErrorCode    *string `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

type testServer struct {
	router http.Handler
	dir    *directory.Directory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "leave.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dir := directory.New(store, directory.WithBcryptCost(bcrypt.MinCost))
	handler := NewHandler(Deps{
		Directory: dir,
		Ledger:    ledger.New(store),
		Engine:    requests.NewEngine(store),
	})
	return &testServer{router: NewRouter(handler), dir: dir}
}

func (s *testServer) seed(t *testing.T, id, username, password string) {
	t.Helper()
	_, err := s.dir.Create(context.Background(), directory.CreateInput{
		ID:         id,
		Username:   username,
		Credential: password,
		Name:       username,
		Email:      username + "@example.com",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

type call struct {
	method   string
	path     string
	body     any
	username string
	password string
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		if err := json.NewEncoder(&body).Encode(c.body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env
}

func errorCode[T any](env envelope[T]) string {
	if env.ErrorCode == nil {
		return ""
	}
	return *env.ErrorCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, call{method: http.MethodGet, path: "/health"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decode[map[string]string](t, rec)
	if !env.Success || env.Data["status"] != "ok" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestCreateAndListEmployees(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, call{method: http.MethodPost, path: "/employees", body: map[string]string{
		"id":       "E1",
		"username": "alice",
		"password": "pw",
		"name":     "Alice",
		"email":    "alice@example.com",
	}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[wire.EmployeePayload](t, rec)
	if created.Data.Employee.ID != "E1" || !created.Data.Employee.IsActive {
		t.Fatalf("employee = %+v", created.Data.Employee)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("pw")) {
		t.Fatalf("response leaks credential: %s", rec.Body.String())
	}

	rec = srv.do(t, call{method: http.MethodGet, path: "/employees"})
	list := decode[wire.EmployeeListPayload](t, rec)
	if list.Data.Count != 1 || list.Data.Employees[0].Username != "alice" {
		t.Fatalf("list = %+v", list.Data)
	}
}

func TestCreateEmployeeDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")

	rec := srv.do(t, call{method: http.MethodPost, path: "/employees", body: map[string]string{
		"id":       "E2",
		"username": "alice",
		"password": "pw",
		"name":     "Other Alice",
		"email":    "other@example.com",
	}})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errorCode(decode[any](t, rec)); code != "DUPLICATE_IDENTITY" {
		t.Fatalf("error code = %q, want DUPLICATE_IDENTITY", code)
	}
}

func TestCreateEmployeeBindingErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, call{method: http.MethodPost, path: "/employees", body: map[string]string{
		"id":    "E1",
		"email": "not-an-email",
	}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decode[any](t, rec)
	if errorCode(env) != "VALIDATION_ERROR" {
		t.Fatalf("error code = %q, want VALIDATION_ERROR", errorCode(env))
	}
	if env.ErrorMessage == nil || !bytes.Contains([]byte(*env.ErrorMessage), []byte("username is required")) {
		t.Fatalf("message = %v, want json field names", env.ErrorMessage)
	}
}

func TestBasicAuth(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")

	tests := []struct {
		name     string
		username string
		password string
		status   int
	}{
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong password", username: "alice", password: "nope", status: http.StatusUnauthorized},
		{name: "unknown user", username: "mallory", password: "pw", status: http.StatusUnauthorized},
		{name: "valid", username: "alice", password: "pw", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, call{method: http.MethodGet, path: "/employees/me", username: tt.username, password: tt.password})
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate header")
			}
		})
	}
}

func TestSelfOnlyRoutes(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")
	srv.seed(t, "E2", "bob", "pw")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/employees/E2/leave-balance"},
		{http.MethodGet, "/employees/E2/leave-requests"},
		{http.MethodPost, "/employees/E2/initialize"},
		{http.MethodPost, "/employees/E2/reset-password"},
	}
	for _, p := range paths {
		rec := srv.do(t, call{method: p.method, path: p.path, username: "alice", password: "pw"})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s %s status = %d, want 403", p.method, p.path, rec.Code)
		}
		if code := errorCode(decode[any](t, rec)); code != "FORBIDDEN" {
			t.Fatalf("%s %s code = %q, want FORBIDDEN", p.method, p.path, code)
		}
	}
}

func TestLeaveFlow(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")
	auth := func(c call) call {
		c.username, c.password = "alice", "pw"
		return c
	}

	rec := srv.do(t, auth(call{method: http.MethodGet, path: "/employees/E1/leave-balance"}))
	balance := decode[wire.BalancePayload](t, rec)
	if balance.Data.Balances["CL"] != 10 || balance.Data.EmployeeID != "E1" {
		t.Fatalf("balance = %+v", balance.Data)
	}

	rec = srv.do(t, auth(call{method: http.MethodPost, path: "/employees/E1/apply-leave", body: map[string]any{
		"leave_type": "CL",
		"days":       3,
		"start_date": "2024-01-01",
		"reason":     "trip",
	}}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply status = %d, body %s", rec.Code, rec.Body.String())
	}
	applied := decode[wire.ApplyPayload](t, rec)
	if applied.Data.Request.Status != "APPROVED" || applied.Data.Balances["CL"] != 7 {
		t.Fatalf("apply = %+v", applied.Data)
	}

	rec = srv.do(t, auth(call{method: http.MethodPost, path: "/employees/E1/apply-leave", body: map[string]any{
		"leave_type": "ML",
		"days":       1,
		"start_date": "2024-01-03",
	}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overlap status = %d, want 422", rec.Code)
	}
	if code := errorCode(decode[any](t, rec)); code != "OVERLAPPING_REQUEST" {
		t.Fatalf("overlap code = %q", code)
	}

	rec = srv.do(t, auth(call{method: http.MethodPost, path: "/employees/E1/apply-leave", body: map[string]any{
		"leave_type": "OTHER",
		"days":       1,
		"start_date": "2024-02-01",
	}}))
	if code := errorCode(decode[any](t, rec)); code != "INSUFFICIENT_BALANCE" {
		t.Fatalf("insufficient code = %q", code)
	}

	rec = srv.do(t, auth(call{method: http.MethodPost, path: "/employees/E1/credit-leave", body: map[string]any{
		"leave_type": "OTHER",
		"days":       2,
	}}))
	credited := decode[wire.CreditPayload](t, rec)
	if credited.Data.Adjustment.Note != "manual credit" || credited.Data.Adjustment.Type != "CREDIT" || credited.Data.Balances["OTHER"] != 2 {
		t.Fatalf("credit = %+v", credited.Data)
	}

	rec = srv.do(t, auth(call{method: http.MethodGet, path: "/employees/E1/leave-requests"}))
	listed := decode[wire.RequestListPayload](t, rec)
	if listed.Data.Count != 1 || listed.Data.Requests[0].StartDate != "2024-01-01" {
		t.Fatalf("requests = %+v", listed.Data)
	}
}

func TestApplyLeaveBindingValidation(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")

	bodies := []map[string]any{
		{"leave_type": "SL", "days": 1, "start_date": "2024-01-01"},
		{"leave_type": "CL", "days": 0, "start_date": "2024-01-01"},
		{"leave_type": "CL", "days": -2, "start_date": "2024-01-01"},
		{"leave_type": "CL", "days": 1, "start_date": "01/01/2024"},
	}
	for _, body := range bodies {
		rec := srv.do(t, call{method: http.MethodPost, path: "/employees/E1/apply-leave", body: body, username: "alice", password: "pw"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %v status = %d, want 400", body, rec.Code)
		}
		if code := errorCode(decode[any](t, rec)); code != "VALIDATION_ERROR" {
			t.Fatalf("body %v code = %q", body, code)
		}
	}
}

func TestInitializeUsesDefaultsForAbsentFields(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")

	rec := srv.do(t, call{method: http.MethodPost, path: "/employees/E1/initialize", body: map[string]any{"casual": 4}, username: "alice", password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decode[wire.BalancePayload](t, rec)
	want := map[string]float64{"CL": 4, "PL": 15, "ML": 90, "OTHER": 0}
	for code, value := range want {
		if env.Data.Balances[code] != value {
			t.Fatalf("%s = %v, want %v", code, env.Data.Balances[code], value)
		}
	}

	rec = srv.do(t, call{method: http.MethodPost, path: "/employees/E1/initialize", username: "alice", password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("empty body status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decode[wire.BalancePayload](t, rec).Data.Balances["CL"]; got != 10 {
		t.Fatalf("CL after empty initialize = %v, want 10", got)
	}
}

func TestResetPassword(t *testing.T) {
	srv := newTestServer(t)
	srv.seed(t, "E1", "alice", "pw")

	rec := srv.do(t, call{method: http.MethodPost, path: "/employees/E1/reset-password", body: map[string]string{"new_password": "fresh"}, username: "alice", password: "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := srv.do(t, call{method: http.MethodGet, path: "/employees/me", username: "alice", password: "pw"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password status = %d, want 401", rec.Code)
	}
	if rec := srv.do(t, call{method: http.MethodGet, path: "/employees/me", username: "alice", password: "fresh"}); rec.Code != http.StatusOK {
		t.Fatalf("new password status = %d, want 200", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, call{method: http.MethodGet, path: "/nope"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := errorCode(decode[any](t, rec)); code != "NOT_FOUND" {
		t.Fatalf("code = %q, want NOT_FOUND", code)
	}
}
