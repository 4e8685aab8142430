package service

import (
	"context"
	"fmt"
	"strings"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	marketdata "signal_bot/internal/modules/marketdata/service"
	pairs "signal_bot/internal/modules/pairs/service"
	"signal_bot/pkg/logger"
)

// Filter — чистый предикат над сигналом. Причину отказа логирует сам.
type Filter interface {
	Name() string
	Accept(ctx context.Context, sig *models.Signal) (bool, error)
}

// Pipeline — И-композиция фильтров с обрывом на первом отказе.
// Состояние нигде не мутируется, пайплайн можно гонять конкурентно.
type Pipeline struct {
	filters []Filter
}

func NewPipeline(cfg *config.Config, universe *pairs.Universe, topcoin *marketdata.Topcoin) *Pipeline {
	return &Pipeline{filters: []Filter{
		&kindFilter{allowed: cfg.AllowedKinds()},
		&whitelistFilter{whitelist: cfg.Filters.Whitelist},
		&denylistFilter{denylist: cfg.Filters.Denylist},
		&tradabilityFilter{universe: universe, account: cfg.ThreeCommas.AccountName},
		&rangeFilter{cfg: cfg},
		&topcoinFilter{topcoin: topcoin},
	}}
}

func (p *Pipeline) Accept(ctx context.Context, sig *models.Signal) (bool, error) {
	for _, f := range p.filters {
		ok, err := f.Accept(ctx, sig)
		if err != nil {
			return false, fmt.Errorf("%s filter: %w", f.Name(), err)
		}
		if !ok {
			logger.Debug("%s filter dropped %s for %s", f.Name(), sig.Action, sig.Pair)
			return false, nil
		}
	}
	return true, nil
}

type kindFilter struct {
	allowed []string // nil = "all"
}

func (f *kindFilter) Name() string { return "signal-type" }

func (f *kindFilter) Accept(_ context.Context, sig *models.Signal) (bool, error) {
	if len(f.allowed) == 0 {
		return true, nil
	}
	for _, k := range f.allowed {
		if k == sig.Kind {
			return true, nil
		}
	}
	logger.Info("signal ignored: kind %q isn't configured", sig.Kind)
	return false, nil
}

type whitelistFilter struct {
	whitelist []string
}

func (f *whitelistFilter) Name() string { return "whitelist" }

func (f *whitelistFilter) Accept(_ context.Context, sig *models.Signal) (bool, error) {
	if len(f.whitelist) == 0 {
		return true, nil
	}
	for _, p := range f.whitelist {
		if p == sig.Pair {
			return true, nil
		}
	}
	logger.Info("signal ignored: pair %q is not whitelisted", sig.Pair)
	return false, nil
}

type denylistFilter struct {
	denylist []string
}

func (f *denylistFilter) Name() string { return "denylist" }

func (f *denylistFilter) Accept(_ context.Context, sig *models.Signal) (bool, error) {
	for _, p := range f.denylist {
		if p == sig.Pair {
			logger.Info("signal ignored: pair %q is on denylist", sig.Pair)
			return false, nil
		}
	}
	return true, nil
}

type tradabilityFilter struct {
	universe *pairs.Universe
	account  string
}

func (f *tradabilityFilter) Name() string { return "exchange-tradability" }

func (f *tradabilityFilter) Accept(_ context.Context, sig *models.Signal) (bool, error) {
	if f.universe.Tradable(sig.Pair) {
		return true, nil
	}
	logger.Info("signal ignored: %q is not traded on %q", sig.Pair, f.account)
	return false, nil
}

type rangeFilter struct {
	cfg *config.Config
}

func (f *rangeFilter) Name() string { return "numeric-range" }

// Accept проверяет диапазоны только для START с ненулевой волатильностью:
// ноль у провайдера значит "оценка неприменима", диапазоны пропускаются.
func (f *rangeFilter) Accept(_ context.Context, sig *models.Signal) (bool, error) {
	if sig.Action != models.ActionStart || sig.Volatility == 0 {
		return true, nil
	}

	fl := f.cfg.Filters
	ok := sig.Volatility >= fl.VolatilityMin && sig.Volatility <= fl.VolatilityMax &&
		sig.PriceAction >= fl.PriceActionMin && sig.PriceAction <= fl.PriceActionMax &&
		sig.Rank >= fl.RankMin && sig.Rank <= fl.RankMax

	if !ok {
		logger.Info("signal ignored: %s rank=%d volatility=%.1f price_action=%.1f outside configured limits",
			sig.Pair, sig.Rank, sig.Volatility, sig.PriceAction)
	}
	return ok, nil
}

type topcoinFilter struct {
	topcoin *marketdata.Topcoin
}

func (f *topcoinFilter) Name() string { return "topcoin" }

func (f *topcoinFilter) Accept(ctx context.Context, sig *models.Signal) (bool, error) {
	if !f.topcoin.Enabled() {
		return true, nil
	}
	base := sig.Pair
	if i := strings.Index(base, "_"); i >= 0 {
		base = base[i+1:]
	}
	ok, err := f.topcoin.Check(ctx, base)
	if err != nil {
		return false, err
	}
	if !ok {
		logger.Info("signal ignored: %s not matching the topcoin criteria", sig.Pair)
	}
	return ok, nil
}
