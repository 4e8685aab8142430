package sentiment

import (
	"context"

	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	"signal_bot/internal/modules/sentiment/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("sentiment",
		fx.Provide(
			func() service.Feed { return service.NewHTTPFeed() },
			func(feed service.Feed, state *gate.State, cfg *config.Config) *service.Tracker {
				return service.NewTracker(feed, state, cfg.Gate.EMAFast, cfg.Gate.EMASlow)
			},
			service.NewSelector, // *service.Selector
		),
		fx.Invoke(func(lc fx.Lifecycle, t *service.Tracker, sel *service.Selector, cfg *config.Config, ctx context.Context) {
			if !cfg.Gate.Sentiment {
				return
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go t.Run(ctx)
					go sel.Run(ctx, cfg.Gate.ProfileInterval)
					return nil
				},
			})
		}),
	)
}
