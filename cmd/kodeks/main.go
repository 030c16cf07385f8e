// Command kodeks is the operator CLI for the consolidation store: register
// and list legal codes, inspect a code's current structure, and answer
// point-in-time article queries.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/kodekslab/kodeks-backend/internal/adapter/postgres"
	applicationrepo "github.com/kodekslab/kodeks-backend/internal/adapter/postgres/application"
	coderepo "github.com/kodekslab/kodeks-backend/internal/adapter/postgres/code"
	versionrepo "github.com/kodekslab/kodeks-backend/internal/adapter/postgres/version"
	"github.com/kodekslab/kodeks-backend/internal/app"
	"github.com/kodekslab/kodeks-backend/internal/config"
	"github.com/kodekslab/kodeks-backend/internal/service/tempquery"
)

var rootCmd = &cobra.Command{
	Use:   "kodeks",
	Short: "Inspect and query consolidated legal codes",
	Long: `kodeks answers questions against the consolidation store: which codes
are registered, what a code's current structure looks like, which version
of an article was in force on a given date, and the full amendment chain
of an article.`,
	Version:      app.BuildVersion(),
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// queryContext bounds one CLI query.
func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// cli bundles everything a command needs. Commands are one-shot, so
// connection failures terminate directly.
type cli struct {
	query *tempquery.Service
	codes *coderepo.Repo
	pool  *pgxpool.Pool
}

func connect(ctx context.Context) *cli {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	codes := coderepo.New(pool)
	return &cli{
		query: tempquery.NewService(logger, codes, versionrepo.New(pool), applicationrepo.New(pool)),
		codes: codes,
		pool:  pool,
	}
}
