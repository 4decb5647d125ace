// Package requests applies leave requests and manual credits against the
// ledger, enforcing balance sufficiency and date non-overlap.
package requests

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/ledger"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/louisbranch/leaveledger/internal/services/leave/requests"

// Engine validates and records leave requests.
type Engine struct {
	store  storage.Store
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
	locks  keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine over store.
func NewEngine(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyInput is one leave application.
type ApplyInput struct {
	EmployeeID string
	Category   domain.Category
	Days       float64
	StartDate  time.Time
	Reason     string
}

// ApplyResult is the recorded request and the balance after the debit.
type ApplyResult struct {
	Request domain.Request
	Balance domain.Balance
}

// Apply debits the balance and records an approved request. Balance read,
// checks, debit and insert share one transaction, serialized per employee;
// any failure leaves no trace.
func (e *Engine) Apply(ctx context.Context, in ApplyInput) (ApplyResult, error) {
	if err := e.ready(); err != nil {
		return ApplyResult{}, err
	}
	employeeID := strings.TrimSpace(in.EmployeeID)
	if err := validateApply(employeeID, in); err != nil {
		return ApplyResult{}, err
	}
	start := domain.DateOnly(in.StartDate)
	candidate := domain.RequestInterval(start, in.Days)

	ctx, span := e.tracer.Start(ctx, "requests.Apply", trace.WithAttributes(
		attribute.String("employee.id", employeeID),
		attribute.String("leave.type", in.Category.Code()),
		attribute.Float64("leave.days", in.Days),
	))
	defer span.End()

	unlock := e.locks.Lock(employeeID)
	defer unlock()

	var result ApplyResult
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		accounts := ledger.In(tx)
		balance, err := accounts.GetOrCreate(ctx, employeeID)
		if err != nil {
			return err
		}
		available, err := balance.Available(in.Category)
		if err != nil {
			return err
		}
		if in.Days > available {
			return insufficientBalance(in.Category, available, in.Days)
		}

		existing, err := tx.ListRequests(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("list leave requests: %w", err)
		}
		if conflict, found := domain.FindConflict(candidate, existing); found {
			return overlapping(conflict)
		}

		balance, err = accounts.Debit(ctx, employeeID, in.Category, in.Days)
		if err != nil {
			return err
		}
		request := domain.Request{
			EmployeeID: employeeID,
			Category:   in.Category,
			Days:       in.Days,
			StartDate:  start,
			Reason:     in.Reason,
			Status:     domain.StatusApproved,
			CreatedAt:  e.now().UTC(),
		}
		request.ID, err = tx.InsertRequest(ctx, request)
		if err != nil {
			return fmt.Errorf("insert leave request: %w", err)
		}
		result = ApplyResult{Request: request, Balance: balance}
		return nil
	})
	if err != nil {
		e.fail(span, "apply leave rejected", err,
			zap.String("employee_id", employeeID),
			zap.String("leave_type", in.Category.Code()),
			zap.Float64("days", in.Days),
		)
		return ApplyResult{}, err
	}

	span.SetAttributes(attribute.Int64("leave.request_id", result.Request.ID))
	e.logger.Info("leave applied",
		zap.String("employee_id", employeeID),
		zap.Int64("request_id", result.Request.ID),
		zap.String("leave_type", in.Category.Code()),
		zap.Float64("days", in.Days),
		zap.String("start_date", start.Format(domain.DateLayout)),
	)
	return result, nil
}

// CreditInput is one manual credit.
type CreditInput struct {
	EmployeeID string
	Category   domain.Category
	Days       float64
	Note       string
}

// CreditResult is the adjustment record and the updated balance.
type CreditResult struct {
	Adjustment domain.Adjustment
	Balance    domain.Balance
}

// Credit adds days to a category and reports the adjustment. The
// adjustment itself is not stored.
func (e *Engine) Credit(ctx context.Context, in CreditInput) (CreditResult, error) {
	if err := e.ready(); err != nil {
		return CreditResult{}, err
	}
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return CreditResult{}, apperrors.New(apperrors.CodeValidation, "employee id is required")
	}
	if err := validateDays(in.Days); err != nil {
		return CreditResult{}, err
	}
	if err := in.Category.Validate(); err != nil {
		return CreditResult{}, err
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = domain.DefaultCreditNote
	}

	ctx, span := e.tracer.Start(ctx, "requests.Credit", trace.WithAttributes(
		attribute.String("employee.id", employeeID),
		attribute.String("leave.type", in.Category.Code()),
		attribute.Float64("leave.days", in.Days),
	))
	defer span.End()

	unlock := e.locks.Lock(employeeID)
	defer unlock()

	var balance domain.Balance
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		balance, err = ledger.In(tx).Credit(ctx, employeeID, in.Category, in.Days)
		return err
	})
	if err != nil {
		e.fail(span, "credit leave failed", err, zap.String("employee_id", employeeID))
		return CreditResult{}, err
	}

	e.logger.Info("leave credited",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", in.Category.Code()),
		zap.Float64("days", in.Days),
	)
	return CreditResult{
		Adjustment: domain.Adjustment{
			EmployeeID: employeeID,
			Category:   in.Category,
			Days:       in.Days,
			Note:       note,
			Kind:       domain.AdjustmentCredit,
		},
		Balance: balance,
	}, nil
}

// List returns the employee's requests, newest first.
func (e *Engine) List(ctx context.Context, employeeID string) ([]domain.Request, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "employee id is required")
	}
	var requests []domain.Request
	err := e.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		requests, err = tx.ListRequests(ctx, employeeID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return requests, nil
}

func (e *Engine) ready() error {
	if e == nil || e.store == nil {
		return fmt.Errorf("request engine store is not configured")
	}
	return nil
}

// fail records err on the span. Expected business rejections log at info;
// anything unclassified is an internal failure.
func (e *Engine) fail(span trace.Span, msg string, err error, fields ...zap.Field) {
	code := apperrors.CodeOf(err)
	span.SetAttributes(attribute.String("error.code", string(code)))
	fields = append(fields, zap.String("error_code", string(code)), zap.Error(err))
	if code == apperrors.CodeInternal {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error(msg, fields...)
		return
	}
	e.logger.Info(msg, fields...)
}

func validateApply(employeeID string, in ApplyInput) error {
	if employeeID == "" {
		return apperrors.New(apperrors.CodeValidation, "employee id is required")
	}
	if err := validateDays(in.Days); err != nil {
		return err
	}
	if err := in.Category.Validate(); err != nil {
		return err
	}
	if in.StartDate.IsZero() {
		return apperrors.New(apperrors.CodeValidation, "start date is required")
	}
	return nil
}

func validateDays(days float64) error {
	if math.IsNaN(days) || math.IsInf(days, 0) || days <= 0 {
		return apperrors.WithMetadata(
			apperrors.CodeValidation,
			"days must be a positive number",
			map[string]string{"days": formatDays(days)},
		)
	}
	if days > domain.MaxDays {
		return apperrors.WithMetadata(
			apperrors.CodeValidation,
			fmt.Sprintf("days must not exceed %d", domain.MaxDays),
			map[string]string{"days": formatDays(days)},
		)
	}
	return nil
}

func insufficientBalance(category domain.Category, available, requested float64) error {
	return apperrors.WithMetadata(
		apperrors.CodeInsufficientBalance,
		fmt.Sprintf("Insufficient balance for %s. available=%s, requested=%s",
			category.Code(), formatDays(available), formatDays(requested)),
		map[string]string{
			"leave_type": category.Code(),
			"available":  formatDays(available),
			"requested":  formatDays(requested),
		},
	)
}

func overlapping(conflict domain.Conflict) error {
	return apperrors.WithMetadata(
		apperrors.CodeOverlappingRequest,
		fmt.Sprintf("Leave request overlaps with an existing request. Existing: %s, New: %s",
			conflict.ExistingInterval, conflict.Candidate),
		map[string]string{
			"existing_request_id": strconv.FormatInt(conflict.Existing.ID, 10),
			"existing_start":      conflict.ExistingInterval.Start.Format(domain.DateLayout),
			"existing_end":        conflict.ExistingInterval.End.Format(domain.DateLayout),
			"new_start":           conflict.Candidate.Start.Format(domain.DateLayout),
			"new_end":             conflict.Candidate.End.Format(domain.DateLayout),
		},
	)
}

func formatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', -1, 64)
}
