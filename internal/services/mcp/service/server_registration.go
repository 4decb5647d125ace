package service

import (
	"fmt"

	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationModule struct {
	name     string
	register func(mcpRegistrationTarget) error
}

const (
	mcpSessionToolsModuleName = "session-tools"
	mcpAdminToolsModuleName   = "admin-tools"
	mcpLeaveToolsModuleName   = "leave-tools"
)

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.LoginInput, wire.Envelope](),
	newMCPToolRegistrar[domain.TokenInput, wire.Envelope](),
	newMCPToolRegistrar[domain.ResetCredentialInput, wire.Envelope](),
	newMCPToolRegistrar[domain.AdminCreateEmployeeInput, wire.Envelope](),
	newMCPToolRegistrar[domain.AdminDeactivateEmployeeInput, wire.Envelope](),
	newMCPToolRegistrar[domain.ApplyLeaveInput, wire.Envelope](),
	newMCPToolRegistrar[domain.CreditLeaveInput, wire.Envelope](),
	newMCPToolRegistrar[domain.InitializeBalanceInput, wire.Envelope](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(deps domain.Deps) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpSessionToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerSessionTools(registrar, deps)
			},
		},
		{
			name: mcpAdminToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerAdminTools(registrar, deps)
			},
		},
		{
			name: mcpLeaveToolsModuleName,
			register: func(registrar mcpRegistrationTarget) error {
				return registerLeaveTools(registrar, deps)
			},
		},
	}
}
