package wire

import (
	"time"

	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
)

// EmployeeDTO is the public view of an employee. Credentials never leave
// the directory.
type EmployeeDTO struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department *string `json:"department"`
	IsActive   bool    `json:"is_active"`
	IsAdmin    bool    `json:"is_admin"`
}

// BuildEmployee converts an employee.
func BuildEmployee(employee domain.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:       employee.ID,
		Username: employee.Username,
		Name:     employee.Name,
		Email:    employee.Email,
		IsActive: employee.Active,
		IsAdmin:  employee.Admin,
	}
	if employee.Department != "" {
		department := employee.Department
		dto.Department = &department
	}
	return dto
}

// BuildEmployees converts a slice, never returning nil.
func BuildEmployees(employees []domain.Employee) []EmployeeDTO {
	out := make([]EmployeeDTO, 0, len(employees))
	for _, employee := range employees {
		out = append(out, BuildEmployee(employee))
	}
	return out
}

// BalanceDTO keys remaining days by category code.
type BalanceDTO struct {
	EmployeeID string             `json:"employee_id"`
	Balances   map[string]float64 `json:"balances"`
}

// BuildBalance converts a balance.
func BuildBalance(balance domain.Balance) BalanceDTO {
	return BalanceDTO{EmployeeID: balance.EmployeeID, Balances: balance.ByCode()}
}

// RequestDTO is the public view of a leave request.
type RequestDTO struct {
	ID         int64   `json:"id"`
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type"`
	Days       float64 `json:"days"`
	StartDate  string  `json:"start_date"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

// BuildRequest converts a leave request.
func BuildRequest(request domain.Request) RequestDTO {
	return RequestDTO{
		ID:         request.ID,
		EmployeeID: request.EmployeeID,
		LeaveType:  request.Category.Code(),
		Days:       request.Days,
		StartDate:  request.StartDate.Format(domain.DateLayout),
		Reason:     request.Reason,
		Status:     string(request.Status),
		CreatedAt:  request.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// BuildRequests converts a slice, preserving order.
func BuildRequests(requests []domain.Request) []RequestDTO {
	out := make([]RequestDTO, 0, len(requests))
	for _, request := range requests {
		out = append(out, BuildRequest(request))
	}
	return out
}

// AdjustmentDTO describes a manual credit.
type AdjustmentDTO struct {
	EmployeeID string  `json:"employee_id"`
	LeaveType  string  `json:"leave_type"`
	Days       float64 `json:"days"`
	Note       string  `json:"note"`
	Type       string  `json:"type"`
}

// BuildAdjustment converts an adjustment.
func BuildAdjustment(adjustment domain.Adjustment) AdjustmentDTO {
	return AdjustmentDTO{
		EmployeeID: adjustment.EmployeeID,
		LeaveType:  adjustment.Category.Code(),
		Days:       adjustment.Days,
		Note:       adjustment.Note,
		Type:       string(adjustment.Kind),
	}
}
