package service

import (
	"context"
	"testing"

	"signal_bot/internal/models"
	gate "signal_bot/internal/modules/gate/service"
)

// fakeSource отдаёт заранее подготовленные серии закрытий, по одной на вызов.
type fakeSource struct {
	series [][]float64
	calls  int
}

func (f *fakeSource) Candles(_ context.Context, _, _ string, _ int) ([]models.Candle, error) {
	closes := f.series[f.calls]
	if f.calls < len(f.series)-1 {
		f.calls++
	}
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Open: c, High: c, Low: c, Close: c}
	}
	return out, nil
}

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// rising: стабильный рост, EMA9 > EMA50
func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

// falling: стабильное падение, EMA9 < EMA50
func falling(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 200 - float64(i)
	}
	return out
}

func newTestDetector(src CandleSource) *Detector {
	d := NewDetector(src, gate.NewState(), "BTCUSDT", 0)
	d.wait = func(ctx context.Context) error { return nil }
	return d
}

func TestEvaluateUptrend(t *testing.T) {
	d := newTestDetector(&fakeSource{series: [][]float64{rising(72)}})

	down, err := d.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if down {
		t.Error("rising series must be an uptrend")
	}
}

func TestEvaluateDowntrendConfirmedAfterWait(t *testing.T) {
	// оба чтения падающие: даунтренд подтверждается вторым тиком
	d := newTestDetector(&fakeSource{series: [][]float64{falling(72), falling(72)}})

	down, err := d.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !down {
		t.Error("falling series on both reads must confirm the downtrend")
	}
}

func TestEvaluateRecoveryWithoutCrossStaysDown(t *testing.T) {
	// второе чтение целиком растущее, но золотого креста на последней
	// свече нет (EMA9 была выше EMA50 уже на предыдущей) — разворот
	// не подтверждён, остаёмся в даунтренде
	d := newTestDetector(&fakeSource{series: [][]float64{falling(72), rising(72)}})

	down, err := d.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !down {
		t.Error("without a fresh golden cross the downtrend must stand")
	}
}

func TestEvaluateGoldenCrossCancelsDowntrend(t *testing.T) {
	// долгое падение и резкий двухсвечный хвост вверх: EMA9 пересекает
	// EMA50 ровно между предпоследней и последней свечой
	recovery := append(falling(70), 200, 300)

	d := newTestDetector(&fakeSource{series: [][]float64{falling(72), recovery}})

	down, err := d.Evaluate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if down {
		t.Error("golden cross on the confirmation read must cancel the downtrend")
	}
}

func TestEvaluateInsufficientCandles(t *testing.T) {
	d := newTestDetector(&fakeSource{series: [][]float64{flat(10, 100)}})

	if _, err := d.Evaluate(context.Background()); err == nil {
		t.Error("short candle window must be an error")
	}
}
