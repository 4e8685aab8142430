package service

import (
	"context"
	"strings"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// Topcoin — допуск пары по рангу капитализации и суточному объёму.
type Topcoin struct {
	gecko *Gecko

	enabled   bool
	rankLimit int
	minVolume float64 // в BTC
	exchange  string
	market    string // котируемая валюта, цель тикера
}

func NewTopcoin(cfg *config.Config, gecko *Gecko) *Topcoin {
	return &Topcoin{
		gecko:     gecko,
		enabled:   cfg.Filters.TopcoinEnabled,
		rankLimit: cfg.Filters.TopcoinLimit,
		minVolume: ConvertVolume(cfg.Filters.TopcoinVolume),
		exchange:  cfg.Filters.TopcoinExchange,
		market:    cfg.Trading.Market,
	}
}

func (t *Topcoin) Enabled() bool { return t.enabled }

// Check — допуск одного базового символа. Выключенный фильтр пропускает всё.
func (t *Topcoin) Check(ctx context.Context, base string) (bool, error) {
	if !t.enabled {
		return true, nil
	}

	markets, err := t.gecko.CoinsMarkets(ctx, t.rankLimit)
	if err != nil {
		return false, err
	}

	for _, m := range markets {
		if !strings.EqualFold(m.Symbol, base) {
			continue
		}
		if m.MarketCapRank <= 0 || m.MarketCapRank > t.rankLimit {
			logger.Info("%s is ranked #%d, over the marketcap limit of top #%d", base, m.MarketCapRank, t.rankLimit)
			return false, nil
		}
		logger.Info("%s is ranked #%d, passed marketcap limit of top #%d", base, m.MarketCapRank, t.rankLimit)
		return t.checkVolume(ctx, m.ID, base)
	}

	logger.Info("%s not found in top #%d markets", base, t.rankLimit)
	return false, nil
}

// FilterList фильтрует список базовых символов, сохраняя порядок.
func (t *Topcoin) FilterList(ctx context.Context, bases []string) ([]string, error) {
	if !t.enabled {
		return bases, nil
	}

	logger.Info("%d pair(s) BEFORE top coin filter: %v", len(bases), bases)
	out := make([]string, 0, len(bases))
	for _, base := range bases {
		ok, err := t.Check(ctx, base)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, base)
		}
	}
	logger.Info("%d pair(s) AFTER top coin filter: %v", len(out), out)
	return out, nil
}

func (t *Topcoin) checkVolume(ctx context.Context, coinID, base string) (bool, error) {
	if t.minVolume <= 0 {
		return true, nil
	}

	tickers, err := t.gecko.ExchangeTickers(ctx, t.exchange, coinID)
	if err != nil {
		return false, err
	}

	for _, tk := range tickers {
		if !strings.EqualFold(tk.Target, t.market) {
			continue
		}
		if tk.ConvertedVolume.BTC >= t.minVolume {
			logger.Info("%s daily volume is %.2f BTC, over the configured %.2f BTC", base, tk.ConvertedVolume.BTC, t.minVolume)
			return true, nil
		}
		logger.Info("%s daily volume is %.2f BTC, NOT passing the minimum of %.2f BTC", base, tk.ConvertedVolume.BTC, t.minVolume)
		return false, nil
	}

	logger.Info("%s is not traded against %s on %s", base, t.market, t.exchange)
	return false, nil
}
