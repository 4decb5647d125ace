// Package directory manages employee identity records: creation with a
// default balance, listing, credential reset, deactivation and credential
// verification.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
	"github.com/louisbranch/leaveledger/internal/services/leave/domain"
	"github.com/louisbranch/leaveledger/internal/services/leave/ledger"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

const tracerName = "github.com/louisbranch/leaveledger/internal/services/leave/directory"

// authFailedMessage is shared by every authentication failure so unknown
// usernames and wrong credentials cannot be told apart.
const authFailedMessage = "Invalid username or password"

// compareCredential is swapped in tests to observe verification calls.
var compareCredential = bcrypt.CompareHashAndPassword

// Directory is the employee identity component.
type Directory struct {
	store      storage.Store
	bcryptCost int
	// dummyHash is compared when no usable record exists so failed
	// lookups cost the same as wrong credentials.
	dummyHash []byte
	logger     *zap.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// Option configures a Directory.
type Option func(*Directory)

// WithBcryptCost sets the hashing cost for stored credentials.
func WithBcryptCost(cost int) Option {
	return func(d *Directory) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			d.bcryptCost = cost
		}
	}
}

// WithLogger sets the directory logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the created_at source.
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// New builds a directory over store.
func New(store storage.Store, opts ...Option) *Directory {
	d := &Directory{
		store:      store,
		bcryptCost: bcrypt.DefaultCost,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("leaveledger:no-such-employee"), d.bcryptCost)
	return d
}

// CreateInput describes a new employee.
type CreateInput struct {
	ID         string
	Username   string
	Credential string
	Name       string
	Email      string
	Department string
	Admin      bool
}

// Create adds an employee and its default balance in one transaction.
// Identity clashes are checked by id, then username, then email.
func (d *Directory) Create(ctx context.Context, in CreateInput) (domain.Employee, error) {
	if err := d.ready(); err != nil {
		return domain.Employee{}, err
	}
	employee, err := d.newEmployee(in)
	if err != nil {
		return domain.Employee{}, err
	}

	ctx, span := d.tracer.Start(ctx, "directory.Create", trace.WithAttributes(
		attribute.String("employee.id", employee.ID),
	))
	defer span.End()

	err = d.store.InTx(ctx, func(tx storage.Tx) error {
		if err := checkIdentityFree(ctx, tx, employee); err != nil {
			return err
		}
		if err := tx.InsertEmployee(ctx, employee); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return duplicate("Employee identity already exists", "employee", employee.ID)
			}
			return fmt.Errorf("insert employee: %w", err)
		}
		_, err := ledger.In(tx).Initialize(ctx, employee.ID, domain.DefaultAllocation())
		return err
	})
	if err != nil {
		span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
		return domain.Employee{}, err
	}

	d.logger.Info("employee created",
		zap.String("employee_id", employee.ID),
		zap.String("username", employee.Username),
		zap.Bool("admin", employee.Admin),
	)
	return employee, nil
}

func checkIdentityFree(ctx context.Context, tx storage.EmployeeStore, employee domain.Employee) error {
	checks := []struct {
		field   string
		value   string
		message string
		lookup  func(context.Context, string) (domain.Employee, error)
	}{
		{field: "id", value: employee.ID, message: "Employee with this id already exists", lookup: tx.GetEmployee},
		{field: "username", value: employee.Username, message: "Username already in use", lookup: tx.GetEmployeeByUsername},
		{field: "email", value: employee.Email, message: "Email already in use", lookup: tx.GetEmployeeByEmail},
	}
	for _, check := range checks {
		_, err := check.lookup(ctx, check.value)
		if err == nil {
			return duplicate(check.message, check.field, check.value)
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check %s: %w", check.field, err)
		}
	}
	return nil
}

func (d *Directory) newEmployee(in CreateInput) (domain.Employee, error) {
	employee := domain.Employee{
		ID:         strings.TrimSpace(in.ID),
		Username:   normalizeUsername(in.Username),
		Name:       strings.TrimSpace(in.Name),
		Email:      normalizeEmail(in.Email),
		Department: strings.TrimSpace(in.Department),
		Active:     true,
		Admin:      in.Admin,
		CreatedAt:  d.now().UTC(),
	}
	required := []struct {
		field string
		value string
	}{
		{"id", employee.ID},
		{"username", employee.Username},
		{"password", in.Credential},
		{"name", employee.Name},
		{"email", employee.Email},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.Employee{}, apperrors.WithMetadata(
				apperrors.CodeValidation,
				r.field+" is required",
				map[string]string{"field": r.field},
			)
		}
	}
	if !strings.Contains(employee.Email, "@") {
		return domain.Employee{}, apperrors.WithMetadata(
			apperrors.CodeValidation,
			"email is invalid",
			map[string]string{"field": "email"},
		)
	}
	hash, err := d.hash(in.Credential)
	if err != nil {
		return domain.Employee{}, err
	}
	employee.CredentialHash = hash
	return employee, nil
}

// Get returns one employee by id.
func (d *Directory) Get(ctx context.Context, id string) (domain.Employee, error) {
	if err := d.ready(); err != nil {
		return domain.Employee{}, err
	}
	id = strings.TrimSpace(id)
	var employee domain.Employee
	err := d.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		employee, err = tx.GetEmployee(ctx, id)
		return err
	})
	if err != nil {
		return domain.Employee{}, translateNotFound(err, id)
	}
	return employee, nil
}

// List returns active employees.
func (d *Directory) List(ctx context.Context) ([]domain.Employee, error) {
	if err := d.ready(); err != nil {
		return nil, err
	}
	var employees []domain.Employee
	err := d.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		employees, err = tx.ListActiveEmployees(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// ResetCredential overwrites the employee's credential unconditionally.
func (d *Directory) ResetCredential(ctx context.Context, id string, credential string) error {
	if err := d.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if credential == "" {
		return apperrors.WithMetadata(apperrors.CodeValidation, "new password is required", map[string]string{"field": "new_password"})
	}
	hash, err := d.hash(credential)
	if err != nil {
		return err
	}
	err = d.store.InTx(ctx, func(tx storage.Tx) error {
		return tx.UpdateEmployeeCredential(ctx, id, hash)
	})
	if err != nil {
		return translateNotFound(err, id)
	}
	d.logger.Info("employee credential reset", zap.String("employee_id", id))
	return nil
}

// Deactivate hides the employee from listings and blocks authentication.
// The record and its history are kept.
func (d *Directory) Deactivate(ctx context.Context, id string) error {
	if err := d.ready(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	err := d.store.InTx(ctx, func(tx storage.Tx) error {
		return tx.SetEmployeeActive(ctx, id, false)
	})
	if err != nil {
		return translateNotFound(err, id)
	}
	d.logger.Info("employee deactivated", zap.String("employee_id", id))
	return nil
}

// Authenticate returns the active employee owning username when credential
// matches.
func (d *Directory) Authenticate(ctx context.Context, username string, credential string) (domain.Employee, error) {
	if err := d.ready(); err != nil {
		return domain.Employee{}, err
	}
	username = normalizeUsername(username)
	var employee domain.Employee
	err := d.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		employee, err = tx.GetEmployeeByUsername(ctx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = compareCredential(d.dummyHash, []byte(credential))
			return domain.Employee{}, apperrors.New(apperrors.CodeAuthFailed, authFailedMessage)
		}
		return domain.Employee{}, fmt.Errorf("lookup employee: %w", err)
	}
	if !employee.Active {
		_ = compareCredential(d.dummyHash, []byte(credential))
		return domain.Employee{}, apperrors.New(apperrors.CodeAuthFailed, authFailedMessage)
	}
	if err := compareCredential([]byte(employee.CredentialHash), []byte(credential)); err != nil {
		return domain.Employee{}, apperrors.New(apperrors.CodeAuthFailed, authFailedMessage)
	}
	return employee, nil
}

// AdminSeed describes the administrator created at startup.
type AdminSeed struct {
	ID         string
	Username   string
	Credential string
	Name       string
	Email      string
	Department string
}

// DefaultAdminSeed mirrors the built-in administrator account.
func DefaultAdminSeed() AdminSeed {
	return AdminSeed{
		ID:         "admin",
		Username:   "admin",
		Credential: "admin",
		Name:       "Administrator",
		Email:      "admin@company.com",
		Department: "management",
	}
}

// EnsureAdmin creates the administrator when no employee holds its
// username. It reports whether a record was created. A concurrent seeder
// winning the insert counts as already seeded.
func (d *Directory) EnsureAdmin(ctx context.Context, seed AdminSeed) (domain.Employee, bool, error) {
	if err := d.ready(); err != nil {
		return domain.Employee{}, false, err
	}
	username := normalizeUsername(seed.Username)
	var existing domain.Employee
	err := d.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		existing, err = tx.GetEmployeeByUsername(ctx, username)
		return err
	})
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return domain.Employee{}, false, fmt.Errorf("lookup admin: %w", err)
	}

	id := strings.TrimSpace(seed.ID)
	if id == "" {
		id = username
	}
	employee, err := d.Create(ctx, CreateInput{
		ID:         id,
		Username:   username,
		Credential: seed.Credential,
		Name:       seed.Name,
		Email:      seed.Email,
		Department: seed.Department,
		Admin:      true,
	})
	if apperrors.IsCode(err, apperrors.CodeDuplicateIdentity) {
		var seeded domain.Employee
		lookupErr := d.store.InTx(ctx, func(tx storage.Tx) error {
			var err error
			seeded, err = tx.GetEmployeeByUsername(ctx, username)
			return err
		})
		if lookupErr == nil {
			return seeded, false, nil
		}
	}
	if err != nil {
		return domain.Employee{}, false, err
	}
	d.logger.Warn("default admin created; change its password", zap.String("username", employee.Username))
	return employee, true, nil
}

func (d *Directory) ready() error {
	if d == nil || d.store == nil {
		return fmt.Errorf("directory store is not configured")
	}
	return nil
}

func (d *Directory) hash(credential string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), d.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.New(apperrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hash), nil
}

func normalizeUsername(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

func normalizeEmail(value string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(value)))
}

func duplicate(message, field, value string) error {
	return apperrors.WithMetadata(
		apperrors.CodeDuplicateIdentity,
		message,
		map[string]string{"field": field, "value": value},
	)
}

func translateNotFound(err error, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WithMetadata(
			apperrors.CodeNotFound,
			fmt.Sprintf("Employee %s not found", id),
			map[string]string{"employee_id": id},
		)
	}
	return err
}
