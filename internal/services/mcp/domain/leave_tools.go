package domain

import (
	"context"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	leave "github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetLeaveBalanceTool defines the MCP tool schema for reading a balance.
func GetLeaveBalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "get_leave_balance",
		Description: "Returns the caller's remaining days per leave type (CL, PL, ML, OTHER)",
	}
}

// GetLeaveBalanceHandler returns the caller's balance, creating it on
// first access.
func GetLeaveBalanceHandler(deps Deps) mcp.ToolHandlerFor[TokenInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TokenInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("get_leave_balance", nil, err)
		}
		balance, err := deps.Ledger.GetOrCreate(runCtx, employee.ID)
		if err != nil {
			return deps.respond("get_leave_balance", nil, err)
		}
		return deps.respond("get_leave_balance", wire.BalancePayload{Balances: balance.ByCode()}, nil)
	}
}

// ListMyLeaveRequestsTool defines the MCP tool schema for listing requests.
func ListMyLeaveRequestsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "list_my_leave_requests",
		Description: "Lists the caller's leave requests, newest first",
	}
}

// ListMyLeaveRequestsHandler lists the caller's requests.
func ListMyLeaveRequestsHandler(deps Deps) mcp.ToolHandlerFor[TokenInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TokenInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("list_my_leave_requests", nil, err)
		}
		rows, err := deps.Engine.List(runCtx, employee.ID)
		if err != nil {
			return deps.respond("list_my_leave_requests", nil, err)
		}
		dtos := wire.BuildRequests(rows)
		return deps.respond("list_my_leave_requests", wire.RequestListPayload{Count: len(dtos), Requests: dtos}, nil)
	}
}

// ApplyLeaveInput represents the MCP tool input for applying leave.
type ApplyLeaveInput struct {
	Token     string  `json:"token" jsonschema:"session token returned by login"`
	LeaveType string  `json:"leave_type" jsonschema:"leave type: CL, PL, ML or OTHER"`
	Days      float64 `json:"days" jsonschema:"number of days, greater than zero; fractions allowed"`
	StartDate string  `json:"start_date" jsonschema:"first day of leave, YYYY-MM-DD"`
	Reason    string  `json:"reason,omitempty" jsonschema:"optional free-form reason"`
}

// ApplyLeaveTool defines the MCP tool schema for applying leave.
func ApplyLeaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "apply_leave",
		Description: "Applies leave for the caller. Approved immediately when the balance suffices and no existing request overlaps.",
	}
}

// ApplyLeaveHandler applies leave for the caller.
func ApplyLeaveHandler(deps Deps) mcp.ToolHandlerFor[ApplyLeaveInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ApplyLeaveInput) (*mcp.CallToolResult, wire.Envelope, error) {
		if input.Days <= 0 {
			return deps.respond("apply_leave", nil, apperrors.New(apperrors.CodeValidation, "days must be greater than 0"))
		}
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("apply_leave", nil, err)
		}
		category, err := leave.ParseCategory(input.LeaveType)
		if err != nil {
			return deps.respond("apply_leave", nil, err)
		}
		start, err := leave.ParseDate(input.StartDate)
		if err != nil {
			return deps.respond("apply_leave", nil, apperrors.Wrap(apperrors.CodeValidation, "start_date must be formatted as YYYY-MM-DD", err))
		}
		result, err := deps.Engine.Apply(runCtx, requests.ApplyInput{
			EmployeeID: employee.ID,
			Category:   category,
			Days:       input.Days,
			StartDate:  start,
			Reason:     input.Reason,
		})
		if err != nil {
			return deps.respond("apply_leave", nil, err)
		}
		return deps.respond("apply_leave", wire.ApplyPayload{
			Request:  wire.BuildRequest(result.Request),
			Balances: result.Balance.ByCode(),
		}, nil)
	}
}

// CreditLeaveInput represents the MCP tool input for a manual credit.
type CreditLeaveInput struct {
	Token     string  `json:"token" jsonschema:"session token returned by login"`
	LeaveType string  `json:"leave_type" jsonschema:"leave type: CL, PL, ML or OTHER"`
	Days      float64 `json:"days" jsonschema:"number of days to add, greater than zero"`
	Note      string  `json:"note,omitempty" jsonschema:"optional note, defaults to manual credit"`
}

// CreditLeaveTool defines the MCP tool schema for a manual credit.
func CreditLeaveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "credit_leave",
		Description: "Adds days to one of the caller's leave types",
	}
}

// CreditLeaveHandler credits the caller's balance.
func CreditLeaveHandler(deps Deps) mcp.ToolHandlerFor[CreditLeaveInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CreditLeaveInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("credit_leave", nil, err)
		}
		category, err := leave.ParseCategory(input.LeaveType)
		if err != nil {
			return deps.respond("credit_leave", nil, err)
		}
		result, err := deps.Engine.Credit(runCtx, requests.CreditInput{
			EmployeeID: employee.ID,
			Category:   category,
			Days:       input.Days,
			Note:       input.Note,
		})
		if err != nil {
			return deps.respond("credit_leave", nil, err)
		}
		return deps.respond("credit_leave", wire.CreditPayload{
			Adjustment: wire.BuildAdjustment(result.Adjustment),
			Balances:   result.Balance.ByCode(),
		}, nil)
	}
}

// InitializeBalanceInput represents the MCP tool input for overwriting a
// balance. Omitted categories take the default allocation.
type InitializeBalanceInput struct {
	Token     string   `json:"token" jsonschema:"session token returned by login"`
	Casual    *float64 `json:"casual,omitempty" jsonschema:"casual leave (CL) days, default 10"`
	Privilege *float64 `json:"privilege,omitempty" jsonschema:"privilege leave (PL) days, default 15"`
	Medical   *float64 `json:"medical,omitempty" jsonschema:"medical leave (ML) days, default 90"`
	Other     *float64 `json:"other,omitempty" jsonschema:"other leave days, default 0"`
}

func (in InitializeBalanceInput) allocation() leave.Allocation {
	alloc := leave.DefaultAllocation()
	if in.Casual != nil {
		alloc.Casual = *in.Casual
	}
	if in.Privilege != nil {
		alloc.Privilege = *in.Privilege
	}
	if in.Medical != nil {
		alloc.Medical = *in.Medical
	}
	if in.Other != nil {
		alloc.Other = *in.Other
	}
	return alloc
}

// InitializeBalanceTool defines the MCP tool schema for overwriting a
// balance.
func InitializeBalanceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "initialize_balance",
		Description: "Overwrites all of the caller's leave balances; omitted types reset to their defaults",
	}
}

// InitializeBalanceHandler overwrites the caller's balance.
func InitializeBalanceHandler(deps Deps) mcp.ToolHandlerFor[InitializeBalanceInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InitializeBalanceInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("initialize_balance", nil, err)
		}
		balance, err := deps.Ledger.Initialize(runCtx, employee.ID, input.allocation())
		if err != nil {
			return deps.respond("initialize_balance", nil, err)
		}
		return deps.respond("initialize_balance", wire.BalancePayload{Balances: balance.ByCode()}, nil)
	}
}
