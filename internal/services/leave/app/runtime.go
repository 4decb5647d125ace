// Package app composes the leave runtime and serves its HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/leaveledger/internal/services/leave/directory"
	"github.com/louisbranch/leaveledger/internal/services/leave/ledger"
	"github.com/louisbranch/leaveledger/internal/services/leave/requests"
	"github.com/louisbranch/leaveledger/internal/services/leave/session"
	"github.com/louisbranch/leaveledger/internal/services/leave/storage/sqlite"
	"go.uber.org/zap"
)

// Config configures the leave runtime.
type Config struct {
	DBPath     string
	BcryptCost int
	// SessionTTL bounds MCP session tokens. Zero keeps them for the process
	// lifetime.
	SessionTTL time.Duration
	// MaxConnections caps concurrent REST connections. Zero means no cap.
	MaxConnections int
	Admin          directory.AdminSeed
}

// Runtime holds the components shared by the REST and MCP front ends.
type Runtime struct {
	Store     *sqlite.Store
	Directory *directory.Directory
	Ledger    *ledger.Ledger
	Engine    *requests.Engine
	Sessions  *session.Store
	Logger    *zap.Logger

	maxConnections int
}

// Open opens the store, builds every component and seeds the admin account
// when it is missing.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := openStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	dirOpts := []directory.Option{directory.WithLogger(logger)}
	if cfg.BcryptCost > 0 {
		dirOpts = append(dirOpts, directory.WithBcryptCost(cfg.BcryptCost))
	}
	sessionOpts := []session.Option{}
	if cfg.SessionTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithTTL(cfg.SessionTTL))
	}

	rt := &Runtime{
		Store:     store,
		Directory: directory.New(store, dirOpts...),
		Ledger:    ledger.New(store),
		Engine:    requests.NewEngine(store, requests.WithLogger(logger)),
		Sessions:  session.NewStore(sessionOpts...),
		Logger:    logger,

		maxConnections: cfg.MaxConnections,
	}

	seed := cfg.Admin
	if strings.TrimSpace(seed.ID) == "" {
		seed = directory.DefaultAdminSeed()
	}
	admin, created, err := rt.Directory.EnsureAdmin(ctx, seed)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("seeded admin account", zap.String("employee_id", admin.ID), zap.String("username", admin.Username))
	}
	return rt, nil
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r == nil || r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

func openStore(path string) (*sqlite.Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open leave sqlite store: %w", err)
	}
	return store, nil
}

// Settings is the environment form of Config shared by the commands.
type Settings struct {
	DBPath        string        `env:"LEAVELEDGER_DB_PATH"        envDefault:"data/leaveledger.db"`
	BcryptCost    int           `env:"LEAVELEDGER_BCRYPT_COST"    envDefault:"10"`
	SessionTTL    time.Duration `env:"LEAVELEDGER_SESSION_TTL"`
	MaxConns      int           `env:"LEAVELEDGER_HTTP_MAX_CONNS" envDefault:"256"`
	AdminUsername string        `env:"LEAVELEDGER_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string        `env:"LEAVELEDGER_ADMIN_PASSWORD" envDefault:"admin"`
	AdminEmail    string        `env:"LEAVELEDGER_ADMIN_EMAIL"    envDefault:"admin@company.com"`
}

// Config converts settings into a runtime Config. The admin keeps the
// built-in id, name and department.
func (s Settings) Config() Config {
	seed := directory.DefaultAdminSeed()
	if v := strings.TrimSpace(s.AdminUsername); v != "" {
		seed.Username = v
	}
	if s.AdminPassword != "" {
		seed.Credential = s.AdminPassword
	}
	if v := strings.TrimSpace(s.AdminEmail); v != "" {
		seed.Email = v
	}
	return Config{
		DBPath:         s.DBPath,
		BcryptCost:     s.BcryptCost,
		SessionTTL:     s.SessionTTL,
		MaxConnections: s.MaxConns,
		Admin:          seed,
	}
}
