package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	health "signal_bot/internal/modules/health/service"
	signals "signal_bot/internal/modules/signals/service"
	threecommas "signal_bot/internal/modules/threecommas/service"
	"signal_bot/pkg/logger"
)

// Acceptor — фильтр-пайплайн с точки зрения раннера.
type Acceptor interface {
	Accept(ctx context.Context, sig *models.Signal) (bool, error)
}

// Runner — единственный потребитель сырого фида. События обрабатываются
// строго по одному в порядке прихода: порядок START/STOP по паре
// определяет итоговое состояние бота.
type Runner struct {
	cfg      *config.Config
	raw      <-chan string
	parser   *signals.Parser
	pipeline Acceptor
	coord    Coordinator
	gate     *gate.State
	journal  Journal
	metrics  *health.Metrics

	rankedSeen atomic.Bool

	// подменяется в тестах; в проде это logger.Fatal
	fatal func(format string, args ...interface{})
}

// Неверный аккаунт и невалидный payload сами не исправятся,
// повторять такие запросы бессмысленно: останавливаем процесс.
func isFatalAPIError(err error) bool {
	return threecommas.IsAccountNotFound(err) || threecommas.IsMandatoryMissing(err)
}

func NewRunner(
	cfg *config.Config,
	raw <-chan string,
	parser *signals.Parser,
	pipeline Acceptor,
	coord Coordinator,
	state *gate.State,
	journal Journal,
	metrics *health.Metrics,
) *Runner {
	return &Runner{
		cfg:      cfg,
		raw:      raw,
		parser:   parser,
		pipeline: pipeline,
		coord:    coord,
		gate:     state,
		journal:  journal,
		metrics:  metrics,
		fatal:    logger.Fatal,
	}
}

// RankedSeen — применён ли хотя бы один ранкед-лист с момента старта.
func (r *Runner) RankedSeen() bool { return r.rankedSeen.Load() }

func (r *Runner) Run(ctx context.Context) {
	logger.Info("signal runner started")
	for {
		select {
		case <-ctx.Done():
			logger.Info("signal runner stopped")
			return
		case raw := <-r.raw:
			r.handle(ctx, raw)
		}
	}
}

func (r *Runner) handle(ctx context.Context, raw string) {
	event := r.parser.Parse(raw)
	if event.IsZero() {
		return
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "signal_event")
	defer span.Finish()

	r.gate.TouchSignal(time.Now())
	r.metrics.SignalsReceived.Inc()

	if len(event.Ranked) > 0 {
		span.SetTag("kind", "ranked")
		// составу пар можно обновляться и при закрытом гейте:
		// апдейт бота сделок не стартует
		if err := r.coord.ApplyRanked(ctx, event.Ranked); err != nil {
			r.metrics.SignalsFailed.Inc()
			if isFatalAPIError(err) {
				r.fatal("ranked list not applied: %s", err)
				return
			}
			logger.Error("ranked list not applied: %s", err)
			return
		}
		r.rankedSeen.Store(true)
		r.metrics.RankedApplied.Inc()
		return
	}

	sig := event.Signal
	span.SetTag("kind", "signal")
	span.SetTag("pair", sig.Pair)
	span.SetTag("action", string(sig.Action))

	if !r.gate.Snapshot().TradingAllowed && !r.cfg.Trading.ContinuousUpdate {
		logger.Info("trading is gated off, %s for %s skipped", sig.Action, sig.Pair)
		r.journal.RecordSignal(ctx, sig, false, "gate closed")
		return
	}

	ok, err := r.pipeline.Accept(ctx, sig)
	if err != nil {
		r.metrics.SignalsFailed.Inc()
		r.journal.RecordSignal(ctx, sig, false, "filter error: "+err.Error())
		logger.Error("filtering %s for %s: %s", sig.Action, sig.Pair, err)
		return
	}
	if !ok {
		r.metrics.SignalsRejected.Inc()
		r.journal.RecordSignal(ctx, sig, false, "filtered out")
		return
	}

	r.metrics.SignalsAccepted.Inc()
	r.journal.RecordSignal(ctx, sig, true, "")

	if err := r.coord.Trigger(ctx, sig); err != nil {
		r.metrics.SignalsFailed.Inc()
		if isFatalAPIError(err) {
			r.fatal("applying %s for %s: %s", sig.Action, sig.Pair, err)
			return
		}
		logger.Error("applying %s for %s: %s", sig.Action, sig.Pair, err)
	}
}
