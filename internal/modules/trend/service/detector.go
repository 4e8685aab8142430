package service

import (
	"context"
	"errors"
	"math"
	"time"

	"signal_bot/internal/indicator"
	gate "signal_bot/internal/modules/gate/service"
	"signal_bot/pkg/logger"
)

const (
	candleInterval = "5m"
	candleWindow   = 72 // 6 часов пятиминуток, хватает на прогрев EMA50
)

// Detector — btc-pulse: два состояния (up/down), переоценка каждый тик.
// Подтверждение разворота требует golden cross на следующем тике,
// одиночная шумовая свеча состояние не меняет.
type Detector struct {
	source CandleSource
	state  *gate.State
	symbol string

	// пауза между тиками; подменяется в тестах
	wait func(ctx context.Context) error
}

func NewDetector(source CandleSource, state *gate.State, symbol string, tick time.Duration) *Detector {
	return &Detector{
		source: source,
		state:  state,
		symbol: symbol,
		wait: func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(tick):
				return nil
			}
		},
	}
}

type reading struct {
	emaFastLast, emaFastPrev float64
	emaSlowLast, emaSlowPrev float64
	pct15m                   float64
	lastClose                float64
}

func (d *Detector) read(ctx context.Context) (reading, error) {
	candles, err := d.source.Candles(ctx, d.symbol, candleInterval, candleWindow)
	if err != nil {
		return reading{}, err
	}
	if len(candles) < 51 {
		return reading{}, errors.New("not enough candles for EMA50")
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	emaFast := indicator.EMA(closes, 9)
	emaSlow := indicator.EMA(closes, 50)
	pct := indicator.LogPctChange(closes, 3)

	return reading{
		emaFastLast: emaFast[len(emaFast)-1],
		emaFastPrev: emaFast[len(emaFast)-2],
		emaSlowLast: emaSlow[len(emaSlow)-1],
		emaSlowPrev: emaSlow[len(emaSlow)-2],
		pct15m:      indicator.Last(pct),
		lastClose:   indicator.Last(closes),
	}, nil
}

// Evaluate — один тик автомата. Возвращает признак даунтренда.
func (d *Detector) Evaluate(ctx context.Context) (bool, error) {
	r, err := d.read(ctx)
	if err != nil {
		return d.state.Snapshot().BenchmarkDowntrend, err
	}

	if (!math.IsNaN(r.pct15m) && r.pct15m < -1) || r.emaFastLast < r.emaSlowLast {
		logger.Info("btc-pulse: drop >1%%/15m or EMA9 < EMA50, waiting one tick for confirmation (price %.2f)", r.lastClose)

		if err := d.wait(ctx); err != nil {
			return d.state.Snapshot().BenchmarkDowntrend, err
		}
		r, err = d.read(ctx)
		if err != nil {
			return d.state.Snapshot().BenchmarkDowntrend, err
		}

		// разворот подтверждён только золотым крестом
		if r.emaFastLast > r.emaSlowLast && r.emaFastPrev < r.emaSlowPrev {
			logger.Info("btc-pulse: UPtrend confirmed by golden cross (EMA9 %.2f > EMA50 %.2f)", r.emaFastLast, r.emaSlowLast)
			return false, nil
		}
		logger.Info("btc-pulse: DOWNtrend (EMA9 %.2f, EMA50 %.2f)", r.emaFastLast, r.emaSlowLast)
		return true, nil
	}

	logger.Info("btc-pulse: UPtrend (EMA9 %.2f > EMA50 %.2f)", r.emaFastLast, r.emaSlowLast)
	return false, nil
}

// Run — вечный цикл опроса. Ошибка тика не останавливает цикл.
func (d *Detector) Run(ctx context.Context) {
	logger.Info("starting btc-pulse for %s", d.symbol)

	for {
		downtrend, err := d.Evaluate(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("btc-pulse tick: %v", err)
		} else {
			d.state.SetBenchmarkDowntrend(downtrend)
		}

		if err := d.wait(ctx); err != nil {
			return
		}
	}
}
