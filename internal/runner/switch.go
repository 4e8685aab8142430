package runner

import (
	"context"
	"time"

	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	health "signal_bot/internal/modules/health/service"
	"signal_bot/pkg/logger"
)

// Switcher периодически сводит снимок гейта в одно решение
// «торговать/не торговать» и применяет переходы к ботам.
type Switcher struct {
	cfg     *config.Config
	gate    *gate.State
	coord   Coordinator
	journal Journal
	metrics *health.Metrics
	notify  Notifier
}

func NewSwitcher(cfg *config.Config, state *gate.State, coord Coordinator, journal Journal, metrics *health.Metrics, notify Notifier) *Switcher {
	return &Switcher{
		cfg:     cfg,
		gate:    state,
		coord:   coord,
		journal: journal,
		metrics: metrics,
		notify:  notify,
	}
}

func (s *Switcher) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Gate.SwitchInterval)
	defer ticker.Stop()

	prev := s.gate.Snapshot().TradingAllowed
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prev = s.tick(ctx, prev)
		}
	}
}

func (s *Switcher) tick(ctx context.Context, prev bool) bool {
	snap := s.gate.Snapshot()
	allowed := gate.ComputeAllowed(snap, s.cfg.Gate.Sentiment, s.cfg.Gate.TradeRangeMin, s.cfg.Gate.TradeRangeMax)
	s.gate.SetTradingAllowed(allowed)

	if allowed {
		s.metrics.GateAllowed.Set(1)
	} else {
		s.metrics.GateAllowed.Set(0)
	}
	s.metrics.SentimentValue.Set(float64(snap.SentimentValue))

	if allowed == prev {
		return prev
	}

	logger.Info("gate flipped: trading allowed=%t (benchmark downtrend=%t, sentiment=%d downtrend=%t sharp drop=%t)",
		allowed, snap.BenchmarkDowntrend, snap.SentimentValue, snap.SentimentDowntrend, snap.SentimentSharpDrop)
	s.journal.RecordGate(ctx, allowed, snap.ActiveProfile)

	if s.cfg.Trading.ExtBotSwitch {
		// включением ботов управляет внешний сигнал, мы только сообщаем
		s.notify.Sendf(ctx, "Gate: trading allowed=%t (external bot switching active)", allowed)
		return allowed
	}

	var err error
	if allowed {
		s.notify.Sendf(ctx, "Gate open: resuming trading")
		err = s.coord.Enable(ctx)
	} else {
		s.notify.Sendf(ctx, "Gate closed: pausing trading, open deals finish on their own")
		err = s.coord.Disable(ctx)
	}
	if err != nil {
		logger.Error("applying gate transition: %s", err)
	}
	return allowed
}
