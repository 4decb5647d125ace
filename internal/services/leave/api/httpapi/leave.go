package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
)

// initializeBody fields are optional; absent ones take the default
// allocation.
type initializeBody struct {
	Casual    *float64 `json:"casual"`
	Privilege *float64 `json:"privilege"`
	Medical   *float64 `json:"medical"`
	Other     *float64 `json:"other"`
}

func (b initializeBody) allocation() domain.Allocation {
	alloc := domain.DefaultAllocation()
	if b.Casual != nil {
		alloc.Casual = *b.Casual
	}
	if b.Privilege != nil {
		alloc.Privilege = *b.Privilege
	}
	if b.Medical != nil {
		alloc.Medical = *b.Medical
	}
	if b.Other != nil {
		alloc.Other = *b.Other
	}
	return alloc
}

type applyLeaveBody struct {
	LeaveType string  `json:"leave_type" binding:"required,oneof=CL PL ML OTHER"`
	Days      float64 `json:"days" binding:"gt=0"`
	StartDate string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	Reason    string  `json:"reason"`
}

type creditLeaveBody struct {
	LeaveType string  `json:"leave_type" binding:"required,oneof=CL PL ML OTHER"`
	Days      float64 `json:"days" binding:"gt=0"`
	Note      string  `json:"note"`
}

// InitializeBalance overwrites the caller's balance.
func (h *Handler) InitializeBalance(c *gin.Context) {
	var body initializeBody
	if c.Request.ContentLength != 0 && !h.bind(c, &body) {
		return
	}
	balance, err := h.ledger.Initialize(c.Request.Context(), c.Param("id"), body.allocation())
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, balancePayload(balance))
}

// LeaveBalance returns the caller's balance, creating it on first access.
func (h *Handler) LeaveBalance(c *gin.Context) {
	balance, err := h.ledger.GetOrCreate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, balancePayload(balance))
}

// ApplyLeave records an approved leave request for the caller.
func (h *Handler) ApplyLeave(c *gin.Context) {
	var body applyLeaveBody
	if !h.bind(c, &body) {
		return
	}
	category, err := domain.ParseCategory(body.LeaveType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	start, err := domain.ParseDate(body.StartDate)
	if err != nil {
		h.respondError(c, bindingError(err))
		return
	}
	result, err := h.engine.Apply(c.Request.Context(), requests.ApplyInput{
		EmployeeID: c.Param("id"),
		Category:   category,
		Days:       body.Days,
		StartDate:  start,
		Reason:     body.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusCreated, wire.ApplyPayload{
		Request:  wire.BuildRequest(result.Request),
		Balances: result.Balance.ByCode(),
	})
}

// CreditLeave adds days to one of the caller's categories.
func (h *Handler) CreditLeave(c *gin.Context) {
	var body creditLeaveBody
	if !h.bind(c, &body) {
		return
	}
	category, err := domain.ParseCategory(body.LeaveType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	result, err := h.engine.Credit(c.Request.Context(), requests.CreditInput{
		EmployeeID: c.Param("id"),
		Category:   category,
		Days:       body.Days,
		Note:       body.Note,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.ok(c, http.StatusOK, wire.CreditPayload{
		Adjustment: wire.BuildAdjustment(result.Adjustment),
		Balances:   result.Balance.ByCode(),
	})
}

// LeaveRequests lists the caller's requests, newest first.
func (h *Handler) LeaveRequests(c *gin.Context) {
	employeeID := c.Param("id")
	rows, err := h.engine.List(c.Request.Context(), employeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	dtos := wire.BuildRequests(rows)
	h.ok(c, http.StatusOK, wire.RequestListPayload{EmployeeID: employeeID, Count: len(dtos), Requests: dtos})
}

func balancePayload(balance domain.Balance) wire.BalancePayload {
	dto := wire.BuildBalance(balance)
	return wire.BalancePayload{EmployeeID: dto.EmployeeID, Balances: dto.Balances}
}
