package domain

import (
	"context"
	"strings"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AdminListEmployeesTool defines the MCP tool schema for listing employees.
func AdminListEmployeesTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "admin_list_employees",
		Description: "Admin only: lists active employees",
	}
}

// AdminListEmployeesHandler lists active employees for an admin caller.
func AdminListEmployeesHandler(deps Deps) mcp.ToolHandlerFor[TokenInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TokenInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		if _, err := deps.admin(runCtx, input.Token); err != nil {
			return deps.respond("admin_list_employees", nil, err)
		}
		employees, err := deps.Directory.List(runCtx)
		if err != nil {
			return deps.respond("admin_list_employees", nil, err)
		}
		dtos := wire.BuildEmployees(employees)
		return deps.respond("admin_list_employees", wire.EmployeeListPayload{Count: len(dtos), Employees: dtos}, nil)
	}
}

// AdminCreateEmployeeInput represents the MCP tool input for creating an
// employee.
type AdminCreateEmployeeInput struct {
	Token      string `json:"token" jsonschema:"session token of an admin"`
	ID         string `json:"id" jsonschema:"unique employee identifier"`
	Username   string `json:"username" jsonschema:"unique login name"`
	Password   string `json:"password" jsonschema:"initial password"`
	Name       string `json:"name" jsonschema:"display name"`
	Email      string `json:"email" jsonschema:"unique email address"`
	Department string `json:"department,omitempty" jsonschema:"optional department"`
}

// AdminCreateEmployeeTool defines the MCP tool schema for creating an
// employee.
func AdminCreateEmployeeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "admin_create_employee",
		Description: "Admin only: creates a non-admin employee with the default leave balance",
	}
}

// AdminCreateEmployeeHandler creates an employee for an admin caller.
func AdminCreateEmployeeHandler(deps Deps) mcp.ToolHandlerFor[AdminCreateEmployeeInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AdminCreateEmployeeInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		if _, err := deps.admin(runCtx, input.Token); err != nil {
			return deps.respond("admin_create_employee", nil, err)
		}
		employee, err := deps.Directory.Create(runCtx, directory.CreateInput{
			ID:         input.ID,
			Username:   input.Username,
			Credential: input.Password,
			Name:       input.Name,
			Email:      input.Email,
			Department: input.Department,
		})
		if err != nil {
			return deps.respond("admin_create_employee", nil, err)
		}
		return deps.respond("admin_create_employee", wire.EmployeePayload{Employee: wire.BuildEmployee(employee)}, nil)
	}
}

// AdminDeactivateEmployeeInput represents the MCP tool input for
// deactivating an employee.
type AdminDeactivateEmployeeInput struct {
	Token string `json:"token" jsonschema:"session token of an admin"`
	ID    string `json:"id" jsonschema:"employee identifier to deactivate"`
}

// AdminDeactivateEmployeeTool defines the MCP tool schema for deactivating
// an employee.
func AdminDeactivateEmployeeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "admin_deactivate_employee",
		Description: "Admin only: deactivates an employee, hiding them from listings and blocking login",
	}
}

// AdminDeactivateEmployeeHandler deactivates an employee for an admin
// caller. Admins cannot deactivate themselves.
func AdminDeactivateEmployeeHandler(deps Deps) mcp.ToolHandlerFor[AdminDeactivateEmployeeInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AdminDeactivateEmployeeInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		caller, err := deps.admin(runCtx, input.Token)
		if err != nil {
			return deps.respond("admin_deactivate_employee", nil, err)
		}
		id := strings.TrimSpace(input.ID)
		if id == "" {
			return deps.respond("admin_deactivate_employee", nil, apperrors.New(apperrors.CodeValidation, "id is required"))
		}
		if id == caller.ID {
			return deps.respond("admin_deactivate_employee", nil, apperrors.New(apperrors.CodeValidation, "You cannot deactivate your own account"))
		}
		if err := deps.Directory.Deactivate(runCtx, id); err != nil {
			return deps.respond("admin_deactivate_employee", nil, err)
		}
		return deps.respond("admin_deactivate_employee", wire.MessagePayload{Message: "Employee deactivated"}, nil)
	}
}
