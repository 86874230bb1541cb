// Command useradd creates a SessionKeeper account directly in the database.
//
//	useradd -d postgres://... -l root -r admin
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/admin/cli"
	"github.com/dmitrijs2005/sessionkeeper/internal/dbx"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/server"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sessionkeeper/internal/server/services"
)

func main() {
	ctx := context.Background()

	cfg, err := cli.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewSlogLogger(logging.NewSlog(cfg.Env, os.Stderr))

	var users *services.UserService
	if strings.HasPrefix(cfg.DatabaseDSN, server.MemoryDSN) {
		store := memory.NewStore(nil)
		users = services.NewUserService(store.Conn(), memory.NewInMemoryRepositoryManager(store))
	} else {
		db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("db init error: %v", err)
		}
		defer db.Close()

		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			log.Fatalf("migrations error: %v", err)
		}
		users = services.NewUserService(dbx.NewSQLTransactor(db, nil).Conn(), rm)
	}

	if _, err := cli.NewApp(users, os.Stdin, os.Stdout, logger).Run(ctx, cfg); err != nil {
		logger.Error(ctx, "useradd failed", "error", err.Error())
		os.Exit(1)
	}
}
