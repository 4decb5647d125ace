// Package httpapi exposes the leave ledger over REST using gin. Every
// response is a wire.Envelope; the HTTP status follows the error code.
package httpapi

import (
	"context"

	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"go.uber.org/zap"
)

// Directory is the identity surface used by the REST handlers.
type Directory interface {
	Create(ctx context.Context, in directory.CreateInput) (domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	ResetCredential(ctx context.Context, id string, credential string) error
	Authenticate(ctx context.Context, username string, credential string) (domain.Employee, error)
}

// Ledger is the balance surface used by the REST handlers.
type Ledger interface {
	GetOrCreate(ctx context.Context, employeeID string) (domain.Balance, error)
	Initialize(ctx context.Context, employeeID string, alloc domain.Allocation) (domain.Balance, error)
}

// Engine is the leave request surface used by the REST handlers.
type Engine interface {
	Apply(ctx context.Context, in requests.ApplyInput) (requests.ApplyResult, error)
	Credit(ctx context.Context, in requests.CreditInput) (requests.CreditResult, error)
	List(ctx context.Context, employeeID string) ([]domain.Request, error)
}

// Deps groups the handler collaborators.
type Deps struct {
	Directory Directory
	Ledger    Ledger
	Engine    Engine
	Logger    *zap.Logger
}

// Handler serves the REST routes.
type Handler struct {
	directory Directory
	ledger    Ledger
	engine    Engine
	logger    *zap.Logger
}

// NewHandler builds a handler from deps.
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		directory: deps.Directory,
		ledger:    deps.Ledger,
		engine:    deps.Engine,
		logger:    logger,
	}
}
