package runner

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	marketdata "signal_bot/internal/modules/marketdata/service"
	pairs "signal_bot/internal/modules/pairs/service"
	signals "signal_bot/internal/modules/signals/service"
	threecommas "signal_bot/internal/modules/threecommas/service"
	"signal_bot/pkg/logger"
)

// newCoordinator выбирает реализацию один раз на старте процесса.
func newCoordinator(
	cfg *config.Config,
	api *threecommas.Client,
	universe *pairs.Universe,
	topcoin *marketdata.Topcoin,
	state *gate.State,
	notify Notifier,
) Coordinator {
	if cfg.Trading.SingleMode {
		logger.Info("running in single-pair bot mode")
		return NewSingleBot(cfg, api, universe, topcoin, state, notify)
	}
	logger.Info("running in multi-pair bot mode")
	return NewMultiBot(cfg, api, universe, topcoin, state, notify)
}

type runParams struct {
	fx.In

	Cfg       *config.Config
	Runner    *Runner
	Switcher  *Switcher
	Coord     Coordinator
	Requester RankedRequester
}

func run(lc fx.Lifecycle, p runParams) {
	loopCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// идентификация бота до запуска циклов: ошибки конфигурации
			// (botid не найден, кривой deal_mode) валят процесс здесь
			if err := p.Coord.Identify(ctx); err != nil {
				return err
			}

			go p.Runner.Run(loopCtx)
			if p.Cfg.Gate.BTCPulse || p.Cfg.Gate.Sentiment {
				go p.Switcher.Run(loopCtx)
			}
			// в авто-режиме сделок multi-pair бот не может жить без
			// ранкед-листа: состав пар берётся только из него
			if !p.Cfg.Trading.SingleMode && !dealModeSignal(p.Cfg.DCA.Default) {
				go requestRankedLoop(loopCtx, p.Runner, p.Requester)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			newCoordinator,
			func(p *signals.Pipeline) Acceptor { return p },
			NewRunner,
			NewSwitcher,
		),
		fx.Invoke(run),
	)
}
