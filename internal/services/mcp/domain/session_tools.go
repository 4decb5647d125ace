package domain

import (
	"context"

	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoginInput represents the MCP tool input for logging in.
type LoginInput struct {
	Username string `json:"username" jsonschema:"employee username"`
	Password string `json:"password" jsonschema:"employee password"`
}

// LoginTool defines the MCP tool schema for logging in.
func LoginTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "login",
		Description: "Authenticates an employee and returns a session token for the other tools",
	}
}

// LoginHandler verifies credentials and issues a session token.
func LoginHandler(deps Deps) mcp.ToolHandlerFor[LoginInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LoginInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.Directory.Authenticate(runCtx, input.Username, input.Password)
		if err != nil {
			return deps.respond("login", nil, err)
		}
		token := deps.Sessions.Issue(employee.ID)
		return deps.respond("login", wire.LoginPayload{
			Token:      token,
			EmployeeID: employee.ID,
			IsAdmin:    employee.Admin,
			Name:       employee.Name,
		}, nil)
	}
}

// TokenInput is the input of tools that need only the session token.
type TokenInput struct {
	Token string `json:"token" jsonschema:"session token returned by login"`
}

// LogoutTool defines the MCP tool schema for logging out.
func LogoutTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "logout",
		Description: "Invalidates a session token",
	}
}

// LogoutHandler revokes the session token.
func LogoutHandler(deps Deps) mcp.ToolHandlerFor[TokenInput, wire.Envelope] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input TokenInput) (*mcp.CallToolResult, wire.Envelope, error) {
		if err := deps.Sessions.Revoke(input.Token); err != nil {
			return deps.respond("logout", nil, err)
		}
		return deps.respond("logout", wire.MessagePayload{Message: "Logout successful"}, nil)
	}
}

// WhoAmITool defines the MCP tool schema for identity lookup.
func WhoAmITool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "who_am_i",
		Description: "Returns the employee bound to the session token",
	}
}

// WhoAmIHandler returns the caller's profile.
func WhoAmIHandler(deps Deps) mcp.ToolHandlerFor[TokenInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TokenInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("who_am_i", nil, err)
		}
		return deps.respond("who_am_i", wire.EmployeePayload{Employee: wire.BuildEmployee(employee)}, nil)
	}
}

// ResetCredentialInput represents the MCP tool input for a password reset.
type ResetCredentialInput struct {
	Token       string `json:"token" jsonschema:"session token returned by login"`
	NewPassword string `json:"new_password" jsonschema:"replacement password"`
}

// ResetCredentialTool defines the MCP tool schema for a password reset.
func ResetCredentialTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "reset_credential",
		Description: "Replaces the caller's password. Existing session tokens stay valid.",
	}
}

// ResetCredentialHandler overwrites the caller's credential.
func ResetCredentialHandler(deps Deps) mcp.ToolHandlerFor[ResetCredentialInput, wire.Envelope] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResetCredentialInput) (*mcp.CallToolResult, wire.Envelope, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
		defer cancel()

		employee, err := deps.caller(runCtx, input.Token)
		if err != nil {
			return deps.respond("reset_credential", nil, err)
		}
		if err := deps.Directory.ResetCredential(runCtx, employee.ID, input.NewPassword); err != nil {
			return deps.respond("reset_credential", nil, err)
		}
		return deps.respond("reset_credential", wire.MessagePayload{Message: "Password updated successfully"}, nil)
	}
}
