package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"stockwatch/internal/app/db"
	"stockwatch/internal/pkg/logx"
)

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate

Applies every pending migration to DATABASE_URL and exits.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg, ok := loadConfig()
	if !ok {
		return subcommands.ExitFailure
	}

	pool, err := db.NewPool(ctx, cfg.Database.DSN)
	if err != nil {
		logx.Error(err, "Failed to connect to database")
		return subcommands.ExitFailure
	}
	defer pool.Close()

	sqlDB := db.OpenDB(pool)
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		logx.Error(err, "Migration failed")
		return subcommands.ExitFailure
	}

	logx.Info("Migrations applied")
	return subcommands.ExitSuccess
}
