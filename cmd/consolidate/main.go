// Command consolidate applies normalized amendment batch files to their
// legal codes. It scans the configured input directory for *.json batches,
// registers codes the database does not know yet, then consolidates each
// code's amendments in sequence order, different codes in parallel.
//
// Flags:
//
//	--migrate  apply pending schema migrations before processing
//
// Exit codes: 0 = success, 1 = configuration or infrastructure error, or at
// least one batch left unapplied by an infrastructure failure.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres"
	applicationrepo "github.com/kodekslab/kodeks-backend/internal/adapter/postgres/application"
	coderepo "github.com/kodekslab/kodeks-backend/internal/adapter/postgres/code"
	versionrepo "github.com/kodekslab/kodeks-backend/internal/adapter/postgres/version"
	"github.com/kodekslab/kodeks-backend/internal/app"
	"github.com/kodekslab/kodeks-backend/internal/app/consolidator"
	"github.com/kodekslab/kodeks-backend/internal/config"
	"github.com/kodekslab/kodeks-backend/internal/service/consolidation"
	"github.com/kodekslab/kodeks-backend/migrations"
)

// pgLocker adapts the concrete advisory lock handle to the engine's
// Unlocker interface.
type pgLocker struct {
	inner *postgres.CodeLocker
}

func (l *pgLocker) Lock(ctx context.Context, codeID string) (consolidation.Unlocker, error) {
	return l.inner.Lock(ctx, codeID)
}

func main() {
	migrate := flag.Bool("migrate", false, "apply pending schema migrations before processing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting consolidation run", slog.String("version", app.BuildVersion()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if *migrate || cfg.Consolidation.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, migrations.FS); err != nil {
			logger.Error("apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	codes := coderepo.New(pool)
	engine := consolidation.NewService(
		logger,
		codes,
		versionrepo.New(pool),
		applicationrepo.New(pool),
		postgres.NewTxManager(pool),
		&pgLocker{inner: postgres.NewCodeLocker(pool)},
	)

	result, err := consolidator.Run(ctx, cfg.Consolidation, engine, codes, logger)
	if err != nil {
		logger.Error("consolidation run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if result.Failed > 0 {
		logger.Error("run finished with failures", slog.Int("failed", result.Failed))
		os.Exit(1)
	}
}
