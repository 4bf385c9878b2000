package migrate

import (
	"context"
	"fmt"

	"github.com/gestfood/digital-menu/pkg/config"
	"github.com/gestfood/digital-menu/pkg/db"
	"github.com/gestfood/digital-menu/pkg/logger"
)

// MaybeRun applies pending migrations at start-up when the SQL store is active
// and auto-migration is enabled.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.Store.UsesSQL() || !cfg.Store.AutoMigrate {
		return nil
	}

	if err := LintEmbedded(); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Dialect()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Dialect(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
