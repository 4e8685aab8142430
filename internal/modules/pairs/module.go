package pairs

import (
	"context"
	"time"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/pairs/service"
	"signal_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("pairs",
		fx.Provide(
			service.NewUniverse, // *service.Universe
		),
		fx.Invoke(func(lc fx.Lifecycle, u *service.Universe, cfg *config.Config, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(startCtx context.Context) error {
					// первый фетч синхронно: без вселенной пар фильтры слепые
					if err := u.Init(startCtx); err != nil {
						return err
					}
					go refreshLoop(ctx, u, cfg.Pairs.RefreshInterval)
					return nil
				},
			})
		}),
	)
}

func refreshLoop(ctx context.Context, u *service.Universe, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := u.Refresh(ctx); err != nil {
				logger.Error("pairs refresh: %v", err)
			}
		}
	}
}
