// Package storage defines persistence contracts for leave ledger state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// EmployeeStore reads and updates directory records.
type EmployeeStore interface {
	GetEmployee(ctx context.Context, id string) (domain.Employee, error)
	GetEmployeeByUsername(ctx context.Context, username string) (domain.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (domain.Employee, error)
	// ListActiveEmployees returns active employees ordered by id.
	ListActiveEmployees(ctx context.Context) ([]domain.Employee, error)
	UpdateEmployeeCredential(ctx context.Context, id string, credentialHash string) error
	SetEmployeeActive(ctx context.Context, id string, active bool) error
}

// BalanceStore persists one balance row per employee.
type BalanceStore interface {
	// GetBalance returns ErrNotFound when the employee has no balance row.
	GetBalance(ctx context.Context, employeeID string) (domain.Balance, error)
	// PutBalance inserts or replaces the balance row.
	PutBalance(ctx context.Context, balance domain.Balance) error
}

// RequestStore persists append-only leave requests.
type RequestStore interface {
	// ListRequests returns the employee's requests, newest first.
	ListRequests(ctx context.Context, employeeID string) ([]domain.Request, error)
	// InsertRequest appends a request and returns its assigned id.
	InsertRequest(ctx context.Context, request domain.Request) (int64, error)
}

// Tx is one transactional storage scope.
type Tx interface {
	EmployeeStore
	BalanceStore
	RequestStore
	// InsertEmployee returns ErrAlreadyExists when any unique column clashes.
	InsertEmployee(ctx context.Context, employee domain.Employee) error
}

// Store opens transactional scopes. The scope commits when fn returns nil
// and rolls back otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
