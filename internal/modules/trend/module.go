package trend

import (
	"context"

	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	"signal_bot/internal/modules/trend/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("trend",
		fx.Provide(
			func() service.CandleSource { return service.NewBinanceSource() },
			func(src service.CandleSource, state *gate.State, cfg *config.Config) *service.Detector {
				return service.NewDetector(src, state, cfg.Gate.BenchmarkSymbol, cfg.Gate.PollInterval)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, d *service.Detector, cfg *config.Config, ctx context.Context) {
			if !cfg.Gate.BTCPulse {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go d.Run(ctx)
					return nil
				},
			})
		}),
	)
}
