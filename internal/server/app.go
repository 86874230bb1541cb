// Package server initializes and runs the SessionKeeper server: storage,
// migrations, token services and the HTTP API, with graceful shutdown on
// SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/auth"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/config"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
)

// MemoryDSN selects the process-local store instead of PostgreSQL.
const MemoryDSN = "memory://"

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpserver.HTTPServer
}

// NewApp connects storage, applies migrations and wires the services.
func NewApp(ctx context.Context, cfg *config.Config, w io.Writer) (*App, error) {
	logger := logging.NewSlogLogger(logging.NewSlog(cfg.Env, w))

	var (
		db *sql.DB
		tx dbx.Transactor
		rm repomanager.RepositoryManager
	)
	if strings.HasPrefix(cfg.DatabaseDSN, MemoryDSN) {
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		store := memory.NewStore(nil)
		tx, rm = store, memory.NewInMemoryRepositoryManager(store)
	} else {
		var err error
		db, err = repomanager.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pg := repomanager.NewPostgresRepositoryManager()
		if err := pg.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		tx, rm = dbx.NewSQLTransactor(db, nil), pg
	}

	m := metrics.New()
	issuer := auth.NewTokenIssuer(cfg, nil)
	as := services.NewAuthService(tx, rm, issuer, cfg, logger.With("module", "auth_service"), m)
	us := services.NewUserService(tx.Conn(), rm)
	gate := services.NewAccessGate(issuer, m)

	hs := httpserver.NewHTTPServer(cfg.EndpointAddrHTTP, cfg.RequestTimeout, logger, as, us, gate, m)

	return &App{config: cfg, logger: logger, db: db, http: hs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is canceled or a signal arrives, then closes
// the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Env, "login_policy", app.config.LoginPolicy)
	app.initSignalHandler(cancelFunc)

	err := app.http.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "http server error", "error", err.Error())
	}

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close error", "error", cerr.Error())
		}
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
