package service

import (
	"context"
	"time"

	"signal_bot/internal/indicator"
	gate "signal_bot/internal/modules/gate/service"
	"signal_bot/pkg/logger"
)

const (
	fetchLimit = 100
	// ответ фида иногда запаздывает: хинт <= 10s значит "данные ещё вчерашние"
	lagThreshold = 10 * time.Second
	lagRetry     = 10 * time.Second
)

// Tracker опрашивает индекс настроения раз в сутки (по хинту фида)
// и публикует downtrend/sharp-drop в гейт.
type Tracker struct {
	feed    Feed
	state   *gate.State
	emaFast int
	emaSlow int
}

func NewTracker(feed Feed, state *gate.State, emaFast, emaSlow int) *Tracker {
	return &Tracker{feed: feed, state: state, emaFast: emaFast, emaSlow: emaSlow}
}

// Analyze разбирает серию значений (старые -> новые).
func Analyze(values []float64, emaFast, emaSlow int) (downtrend, sharpDrop bool) {
	fast := indicator.EMA(values, emaFast)
	slow := indicator.EMA(values, emaSlow)
	downtrend = indicator.Last(fast) < indicator.Last(slow)

	// защита от резкого обвала независимо от пересечения EMA:
	// падение >=10 за день либо >=15 за два дня
	n := len(values)
	if n >= 2 && values[n-2]-values[n-1] >= 10 {
		sharpDrop = true
	}
	if n >= 3 && values[n-3]-values[n-1] >= 15 {
		sharpDrop = true
	}
	return downtrend, sharpDrop
}

// Tick — один опрос. Возвращает паузу до следующего.
func (t *Tracker) Tick(ctx context.Context) (time.Duration, error) {
	points, err := t.feed.Fetch(ctx, fetchLimit)
	if err != nil {
		return lagRetry, err
	}
	if len(points) == 0 {
		return lagRetry, nil
	}

	untilUpdate := time.Duration(points[0].TimeUntilUpdate) * time.Second
	if untilUpdate < 0 {
		untilUpdate = lagRetry
	}
	if untilUpdate <= lagThreshold {
		// фид ещё не опубликовал свежую точку, короткий повтор
		return untilUpdate, nil
	}

	// API отдаёт свежие первыми, разворачиваем в хронологию
	values := make([]float64, len(points))
	for i, p := range points {
		values[len(points)-1-i] = float64(p.Value)
	}

	downtrend, sharpDrop := Analyze(values, t.emaFast, t.emaSlow)
	current := points[0].Value

	t.state.SetSentiment(current, downtrend, sharpDrop)
	logger.Info("sentiment index %d, downtrend=%v sharp_drop=%v, next update in %s",
		current, downtrend, sharpDrop, untilUpdate)

	return untilUpdate, nil
}

// Run — вечный цикл; индекс пересчитывается фидом раз в сутки.
func (t *Tracker) Run(ctx context.Context) {
	logger.Info("starting sentiment tracker (EMA%d/EMA%d)", t.emaFast, t.emaSlow)

	for {
		sleep, err := t.Tick(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("sentiment tick: %v", err)
		}
		if sleep <= 0 {
			sleep = lagRetry
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}
