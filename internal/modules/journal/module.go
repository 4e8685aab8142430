package journal

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/journal/service"
	"signal_bot/internal/runner"
	"signal_bot/pkg/db"
	"signal_bot/pkg/logger"
)

// newJournal: postgres при заданном DSN, иначе no-op.
func newJournal(lc fx.Lifecycle, cfg *config.Config) (runner.Journal, error) {
	if cfg.Journal.DSN == "" {
		logger.Info("journal dsn is empty, signal history will not be persisted")
		return service.NopJournal{}, nil
	}

	pool, err := db.NewPool(context.Background(), db.PoolConfig{DSN: cfg.Journal.DSN})
	if err != nil {
		return nil, err
	}
	manager := db.NewPgTxManager(pool)
	j := service.NewPgJournal(manager)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return j.Migrate(ctx)
		},
		OnStop: func(ctx context.Context) error {
			manager.Close()
			return nil
		},
	})
	return j, nil
}

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(newJournal),
	)
}
