package domain

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/platform/timeouts"
	"github.com/louisbranch/leaveledger/internal/services/leave/api/wire"
	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	leave "github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// toolCallTimeout caps a single tool invocation.
const toolCallTimeout = timeouts.ToolCall

// Sessions issues and resolves caller tokens.
type Sessions interface {
	Issue(employeeID string) string
	Validate(token string) (string, error)
	Revoke(token string) error
}

// Directory is the identity surface used by the tools.
type Directory interface {
	Create(ctx context.Context, in directory.CreateInput) (leave.Employee, error)
	Get(ctx context.Context, id string) (leave.Employee, error)
	List(ctx context.Context) ([]leave.Employee, error)
	ResetCredential(ctx context.Context, id string, credential string) error
	Deactivate(ctx context.Context, id string) error
	Authenticate(ctx context.Context, username string, credential string) (leave.Employee, error)
}

// Ledger is the balance surface used by the tools.
type Ledger interface {
	GetOrCreate(ctx context.Context, employeeID string) (leave.Balance, error)
	Initialize(ctx context.Context, employeeID string, alloc leave.Allocation) (leave.Balance, error)
}

// Engine is the leave request surface used by the tools.
type Engine interface {
	Apply(ctx context.Context, in requests.ApplyInput) (requests.ApplyResult, error)
	Credit(ctx context.Context, in requests.CreditInput) (requests.CreditResult, error)
	List(ctx context.Context, employeeID string) ([]leave.Request, error)
}

// Deps groups the collaborators every tool handler draws from.
type Deps struct {
	Sessions  Sessions
	Directory Directory
	Ledger    Ledger
	Engine    Engine
	Logger    *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// caller resolves the active employee bound to token.
func (d Deps) caller(ctx context.Context, token string) (leave.Employee, error) {
	employeeID, err := d.Sessions.Validate(token)
	if err != nil {
		return leave.Employee{}, err
	}
	employee, err := d.Directory.Get(ctx, employeeID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return leave.Employee{}, apperrors.New(apperrors.CodeAuthFailed, "Employee not found")
		}
		return leave.Employee{}, err
	}
	if !employee.Active {
		return leave.Employee{}, apperrors.New(apperrors.CodeAuthFailed, "Employee is inactive")
	}
	return employee, nil
}

// admin resolves the caller and requires the admin flag.
func (d Deps) admin(ctx context.Context, token string) (leave.Employee, error) {
	employee, err := d.caller(ctx, token)
	if err != nil {
		return leave.Employee{}, err
	}
	if !employee.Admin {
		return leave.Employee{}, apperrors.New(apperrors.CodeForbidden, "Admin only feature")
	}
	return employee, nil
}

// respond turns an operation outcome into the tool result. Unclassified
// errors are logged here since the envelope hides their detail.
func (d Deps) respond(tool string, data any, err error) (*mcp.CallToolResult, wire.Envelope, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = apperrors.Wrap(apperrors.CodeInternal, "tool call timed out", err)
		}
		code := apperrors.CodeOf(err)
		if code == apperrors.CodeInternal {
			d.logger().Error("mcp tool failed", zap.String("tool", tool), zap.Error(err))
		} else {
			d.logger().Info("mcp tool rejected", zap.String("tool", tool), zap.String("error_code", string(code)))
		}
		return &mcp.CallToolResult{IsError: true}, wire.Fail(err), nil
	}
	return &mcp.CallToolResult{}, wire.OK(data), nil
}
