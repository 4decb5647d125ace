package wire

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
)

func TestOKEnvelopeSerializesNullErrors(t *testing.T) {
	raw, err := json.Marshal(OK(MessagePayload{Message: "done"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":true,"data":{"message":"done"},"error_code":null,"error_message":null}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}
}

func TestFailKeepsDomainMessage(t *testing.T) {
	env := Fail(apperrors.New(apperrors.CodeInsufficientBalance, "Insufficient balance for CL"))

	if env.Success || env.Data != nil {
		t.Fatalf("envelope = %+v, want failure without data", env)
	}
	if env.Code() != "INSUFFICIENT_BALANCE" {
		t.Fatalf("code = %q, want INSUFFICIENT_BALANCE", env.Code())
	}
	if *env.ErrorMessage != "Insufficient balance for CL" {
		t.Fatalf("message = %q", *env.ErrorMessage)
	}
}

func TestFailHidesInternalDetail(t *testing.T) {
	env := Fail(errors.New("sqlite: disk I/O error at /var/lib/leave.db"))

	if env.Code() != "INTERNAL" {
		t.Fatalf("code = %q, want INTERNAL", env.Code())
	}
	if *env.ErrorMessage != internalMessage {
		t.Fatalf("message = %q, want generic", *env.ErrorMessage)
	}
}

func TestBuildRequest(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	dto := BuildRequest(domain.Request{
		ID:         7,
		EmployeeID: "E1",
		Category:   domain.CategoryPrivilege,
		Days:       1.5,
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusApproved,
		CreatedAt:  created,
	})

	if dto.LeaveType != "PL" || dto.StartDate != "2024-01-10" || dto.Status != "APPROVED" {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.CreatedAt != "2024-01-02T03:04:05Z" {
		t.Fatalf("created_at = %q", dto.CreatedAt)
	}
}

func TestBuildEmployeeOmitsEmptyDepartment(t *testing.T) {
	dto := BuildEmployee(domain.Employee{ID: "E1", Username: "alice", Active: true})
	if dto.Department != nil {
		t.Fatalf("department = %v, want nil", *dto.Department)
	}
	if BuildEmployees(nil) == nil {
		t.Fatal("expected empty slice, not nil")
	}
}

func TestBuildBalanceUsesCodes(t *testing.T) {
	dto := BuildBalance(domain.NewBalance("E1", domain.DefaultAllocation()))
	if dto.Balances["CL"] != 10 || dto.Balances["PL"] != 15 || dto.Balances["ML"] != 90 || dto.Balances["OTHER"] != 0 {
		t.Fatalf("balances = %v", dto.Balances)
	}
}
