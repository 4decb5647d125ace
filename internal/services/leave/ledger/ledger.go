// Package ledger owns per-employee leave balances: lazy creation with the
// default allocation, overwrite, credit and debit.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage"
)

// Accounts applies balance operations against one balance store, usually a
// transaction owned by the caller.
type Accounts struct {
	balances storage.BalanceStore
}

// In binds balance operations to balances.
func In(balances storage.BalanceStore) Accounts {
	return Accounts{balances: balances}
}

// GetOrCreate returns the employee's balance, persisting the default
// allocation first when no row exists.
func (a Accounts) GetOrCreate(ctx context.Context, employeeID string) (domain.Balance, error) {
	employeeID, err := requireEmployeeID(employeeID)
	if err != nil {
		return domain.Balance{}, err
	}
	balance, err := a.balances.GetBalance(ctx, employeeID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return domain.Balance{}, fmt.Errorf("load balance: %w", err)
	}
	balance = domain.NewBalance(employeeID, domain.DefaultAllocation())
	if err := a.put(ctx, balance); err != nil {
		return domain.Balance{}, err
	}
	return balance, nil
}

// Initialize overwrites all four categories, creating the row if needed.
func (a Accounts) Initialize(ctx context.Context, employeeID string, alloc domain.Allocation) (domain.Balance, error) {
	employeeID, err := requireEmployeeID(employeeID)
	if err != nil {
		return domain.Balance{}, err
	}
	balance := domain.NewBalance(employeeID, alloc)
	if err := a.put(ctx, balance); err != nil {
		return domain.Balance{}, err
	}
	return balance, nil
}

// Credit adds days to one category.
func (a Accounts) Credit(ctx context.Context, employeeID string, category domain.Category, days float64) (domain.Balance, error) {
	return a.adjust(ctx, employeeID, func(balance *domain.Balance) error {
		return balance.Credit(category, days)
	})
}

// Debit subtracts days from one category without re-checking sufficiency.
func (a Accounts) Debit(ctx context.Context, employeeID string, category domain.Category, days float64) (domain.Balance, error) {
	return a.adjust(ctx, employeeID, func(balance *domain.Balance) error {
		return balance.Debit(category, days)
	})
}

func (a Accounts) adjust(ctx context.Context, employeeID string, apply func(*domain.Balance) error) (domain.Balance, error) {
	balance, err := a.GetOrCreate(ctx, employeeID)
	if err != nil {
		return domain.Balance{}, err
	}
	if err := apply(&balance); err != nil {
		return domain.Balance{}, err
	}
	if err := a.put(ctx, balance); err != nil {
		return domain.Balance{}, err
	}
	return balance, nil
}

func (a Accounts) put(ctx context.Context, balance domain.Balance) error {
	if err := a.balances.PutBalance(ctx, balance); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return employeeNotFound(balance.EmployeeID)
		}
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

func requireEmployeeID(employeeID string) (string, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return "", apperrors.New(apperrors.CodeValidation, "employee id is required")
	}
	return employeeID, nil
}

func employeeNotFound(employeeID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeNotFound,
		fmt.Sprintf("Employee %s not found", employeeID),
		map[string]string{"employee_id": employeeID},
	)
}

// Ledger runs each balance operation in its own transaction.
type Ledger struct {
	store storage.Store
}

// New builds a ledger over store.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// GetOrCreate returns the balance, creating it with defaults when absent.
func (l *Ledger) GetOrCreate(ctx context.Context, employeeID string) (domain.Balance, error) {
	return l.run(ctx, func(accounts Accounts) (domain.Balance, error) {
		return accounts.GetOrCreate(ctx, employeeID)
	})
}

// Initialize overwrites the balance with alloc.
func (l *Ledger) Initialize(ctx context.Context, employeeID string, alloc domain.Allocation) (domain.Balance, error) {
	return l.run(ctx, func(accounts Accounts) (domain.Balance, error) {
		return accounts.Initialize(ctx, employeeID, alloc)
	})
}

// Credit adds days to one category.
func (l *Ledger) Credit(ctx context.Context, employeeID string, category domain.Category, days float64) (domain.Balance, error) {
	return l.run(ctx, func(accounts Accounts) (domain.Balance, error) {
		return accounts.Credit(ctx, employeeID, category, days)
	})
}

// Debit subtracts days from one category.
func (l *Ledger) Debit(ctx context.Context, employeeID string, category domain.Category, days float64) (domain.Balance, error) {
	return l.run(ctx, func(accounts Accounts) (domain.Balance, error) {
		return accounts.Debit(ctx, employeeID, category, days)
	})
}

func (l *Ledger) run(ctx context.Context, fn func(Accounts) (domain.Balance, error)) (domain.Balance, error) {
	if l == nil || l.store == nil {
		return domain.Balance{}, fmt.Errorf("ledger store is not configured")
	}
	var balance domain.Balance
	err := l.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		balance, err = fn(In(tx))
		return err
	})
	if err != nil {
		return domain.Balance{}, err
	}
	return balance, nil
}
