package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage"
)

// ListRequests returns the employee's requests ordered newest first.
func (s *scope) ListRequests(ctx context.Context, employeeID string) ([]domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("employee id is required")
	}

	rows, err := s.q.QueryContext(
		ctx,
		`SELECT id, employee_id, leave_type, days, start_date, reason, status, created_at
		   FROM leave_requests
		  WHERE employee_id = ?
		  ORDER BY created_at DESC, id DESC`,
		employeeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.Request, 0)
	for rows.Next() {
		var (
			request   domain.Request
			leaveType string
			startDate string
			status    string
			createdAt int64
		)
		if err := rows.Scan(
			&request.ID,
			&request.EmployeeID,
			&leaveType,
			&request.Days,
			&startDate,
			&request.Reason,
			&status,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		category, err := domain.ParseCategory(leaveType)
		if err != nil {
			return nil, fmt.Errorf("leave request %d: %w", request.ID, err)
		}
		start, err := domain.ParseDate(startDate)
		if err != nil {
			return nil, fmt.Errorf("leave request %d start date: %w", request.ID, err)
		}
		request.Category = category
		request.StartDate = start
		request.Status = domain.Status(status)
		request.CreatedAt = fromMillis(createdAt)
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leave requests: %w", err)
	}
	return requests, nil
}

// InsertRequest appends a leave request and returns its assigned id.
func (s *scope) InsertRequest(ctx context.Context, request domain.Request) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	employeeID := strings.TrimSpace(request.EmployeeID)
	if employeeID == "" {
		return 0, fmt.Errorf("employee id is required")
	}
	if !request.Category.Valid() {
		return 0, fmt.Errorf("leave type is required")
	}
	if request.StartDate.IsZero() {
		return 0, fmt.Errorf("start date is required")
	}
	status := request.Status
	if status == "" {
		status = domain.StatusApproved
	}
	createdAt := request.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.q.ExecContext(
		ctx,
		`INSERT INTO leave_requests (employee_id, leave_type, days, start_date, reason, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		employeeID,
		request.Category.Code(),
		request.Days,
		request.StartDate.Format(domain.DateLayout),
		request.Reason,
		string(status),
		toMillis(createdAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("insert leave request: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("leave request id: %w", err)
	}
	return id, nil
}
