package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage"
)

const employeeColumns = `id, username, credential_hash, name, email, department, active, admin, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (domain.Employee, error) {
	var (
		employee   domain.Employee
		department sql.NullString
		active     int
		admin      int
		createdAt  int64
	)
	if err := row.Scan(
		&employee.ID,
		&employee.Username,
		&employee.CredentialHash,
		&employee.Name,
		&employee.Email,
		&department,
		&active,
		&admin,
		&createdAt,
	); err != nil {
		return domain.Employee{}, err
	}
	employee.Department = department.String
	employee.Active = active != 0
	employee.Admin = admin != 0
	employee.CreatedAt = fromMillis(createdAt)
	return employee, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// InsertEmployee adds one directory record.
func (s *scope) InsertEmployee(ctx context.Context, employee domain.Employee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(employee.ID)
	if id == "" {
		return fmt.Errorf("employee id is required")
	}
	if strings.TrimSpace(employee.Username) == "" {
		return fmt.Errorf("username is required")
	}
	createdAt := employee.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var department sql.NullString
	if dept := strings.TrimSpace(employee.Department); dept != "" {
		department = sql.NullString{String: dept, Valid: true}
	}

	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO employees (`+employeeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		employee.Username,
		employee.CredentialHash,
		employee.Name,
		employee.Email,
		department,
		boolToInt(employee.Active),
		boolToInt(employee.Admin),
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetEmployee returns one employee by id.
func (s *scope) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	return s.getEmployeeBy(ctx, "id", strings.TrimSpace(id))
}

// GetEmployeeByUsername returns one employee by username.
func (s *scope) GetEmployeeByUsername(ctx context.Context, username string) (domain.Employee, error) {
	return s.getEmployeeBy(ctx, "username", username)
}

// GetEmployeeByEmail returns one employee by email.
func (s *scope) GetEmployeeByEmail(ctx context.Context, email string) (domain.Employee, error) {
	return s.getEmployeeBy(ctx, "email", email)
}

// column is always a compile-time constant from the callers above.
func (s *scope) getEmployeeBy(ctx context.Context, column string, value string) (domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return domain.Employee{}, err
	}
	if value == "" {
		return domain.Employee{}, storage.ErrNotFound
	}
	row := s.q.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+column+` = ?`, value)
	employee, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Employee{}, storage.ErrNotFound
		}
		return domain.Employee{}, fmt.Errorf("get employee by %s: %w", column, err)
	}
	return employee, nil
}

// ListActiveEmployees returns active employees ordered by id.
func (s *scope) ListActiveEmployees(ctx context.Context) ([]domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]domain.Employee, 0)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return employees, nil
}

// UpdateEmployeeCredential overwrites the stored credential hash.
func (s *scope) UpdateEmployeeCredential(ctx context.Context, id string, credentialHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.updateEmployee(ctx, `UPDATE employees SET credential_hash = ? WHERE id = ?`, credentialHash, strings.TrimSpace(id))
}

// SetEmployeeActive flips the active flag. Employees are never deleted.
func (s *scope) SetEmployeeActive(ctx context.Context, id string, active bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.updateEmployee(ctx, `UPDATE employees SET active = ? WHERE id = ?`, boolToInt(active), strings.TrimSpace(id))
}

func (s *scope) updateEmployee(ctx context.Context, query string, args ...any) error {
	result, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update employee rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
