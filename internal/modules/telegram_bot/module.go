package telegram

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/internal/runner"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewFeed,
		),

		// Адаптеры: *service.Feed -> интерфейсы раннера
		fx.Provide(
			func(f *service.Feed) runner.Notifier { return f },
			func(f *service.Feed) runner.RankedRequester { return f },
		),

		// Long-poll цикл нужен только когда телега — источник сигналов
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, f *service.Feed) {
				if cfg.SignalSource != "telegram" {
					return
				}
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						f.Start()
						return nil
					},
					OnStop: func(ctx context.Context) error {
						f.Stop()
						return nil
					},
				})
			},
		),
	)
}
