package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage"
)

// GetBalance returns the balance row for one employee.
func (s *scope) GetBalance(ctx context.Context, employeeID string) (domain.Balance, error) {
	if err := ctx.Err(); err != nil {
		return domain.Balance{}, err
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return domain.Balance{}, fmt.Errorf("employee id is required")
	}

	balance := domain.Balance{EmployeeID: employeeID}
	err := s.q.QueryRowContext(
		ctx,
		`SELECT casual, privilege, medical, other FROM leave_balances WHERE employee_id = ?`,
		employeeID,
	).Scan(&balance.Casual, &balance.Privilege, &balance.Medical, &balance.Other)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Balance{}, storage.ErrNotFound
		}
		return domain.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// PutBalance inserts or replaces the balance row. It returns ErrNotFound
// when the employee does not exist.
func (s *scope) PutBalance(ctx context.Context, balance domain.Balance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	employeeID := strings.TrimSpace(balance.EmployeeID)
	if employeeID == "" {
		return fmt.Errorf("employee id is required")
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO leave_balances (employee_id, casual, privilege, medical, other)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id) DO UPDATE SET
		   casual = excluded.casual,
		   privilege = excluded.privilege,
		   medical = excluded.medical,
		   other = excluded.other`,
		employeeID,
		balance.Casual,
		balance.Privilege,
		balance.Medical,
		balance.Other,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put balance: %w", err)
	}
	return nil
}
