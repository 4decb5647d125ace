package service

import (
	"fmt"

	"github.com/louisbranch/leaveledger/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
}

type toolRegistration struct {
	tool    *mcp.Tool
	handler any
}

func registerSessionTools(registrar mcpRegistrationTarget, deps domain.Deps) error {
	return registerTools(registrar, []toolRegistration{
		{tool: domain.LoginTool(), handler: domain.LoginHandler(deps)},
		{tool: domain.LogoutTool(), handler: domain.LogoutHandler(deps)},
		{tool: domain.WhoAmITool(), handler: domain.WhoAmIHandler(deps)},
		{tool: domain.ResetCredentialTool(), handler: domain.ResetCredentialHandler(deps)},
	})
}

func registerAdminTools(registrar mcpRegistrationTarget, deps domain.Deps) error {
	return registerTools(registrar, []toolRegistration{
		{tool: domain.AdminListEmployeesTool(), handler: domain.AdminListEmployeesHandler(deps)},
		{tool: domain.AdminCreateEmployeeTool(), handler: domain.AdminCreateEmployeeHandler(deps)},
		{tool: domain.AdminDeactivateEmployeeTool(), handler: domain.AdminDeactivateEmployeeHandler(deps)},
	})
}

func registerLeaveTools(registrar mcpRegistrationTarget, deps domain.Deps) error {
	return registerTools(registrar, []toolRegistration{
		{tool: domain.GetLeaveBalanceTool(), handler: domain.GetLeaveBalanceHandler(deps)},
		{tool: domain.ListMyLeaveRequestsTool(), handler: domain.ListMyLeaveRequestsHandler(deps)},
		{tool: domain.ApplyLeaveTool(), handler: domain.ApplyLeaveHandler(deps)},
		{tool: domain.CreditLeaveTool(), handler: domain.CreditLeaveHandler(deps)},
		{tool: domain.InitializeBalanceTool(), handler: domain.InitializeBalanceHandler(deps)},
	})
}

func registerTools(registrar mcpRegistrationTarget, registrations []toolRegistration) error {
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}
