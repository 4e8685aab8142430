package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"signal_bot/internal/models"
	gate "signal_bot/internal/modules/gate/service"
	health "signal_bot/internal/modules/health/service"
	signals "signal_bot/internal/modules/signals/service"
	threecommas "signal_bot/internal/modules/threecommas/service"
)

// testMetrics один на пакет: promauto регистрирует коллекторы глобально.
var (
	testMetrics     *health.Metrics
	testMetricsOnce sync.Once
)

func metricsForTest() *health.Metrics {
	testMetricsOnce.Do(func() { testMetrics = health.NewMetrics() })
	return testMetrics
}

type acceptAll struct{}

func (acceptAll) Accept(context.Context, *models.Signal) (bool, error) { return true, nil }

type recordingCoordinator struct {
	mu       sync.Mutex
	triggers []string
	ranked   []models.RankedPairList
}

func (r *recordingCoordinator) Identify(context.Context) error { return nil }

func (r *recordingCoordinator) Trigger(_ context.Context, sig *models.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.triggers = append(r.triggers, string(sig.Action)+" "+sig.Pair)
	return nil
}

func (r *recordingCoordinator) ApplyRanked(_ context.Context, list models.RankedPairList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranked = append(r.ranked, list)
	return nil
}

func (r *recordingCoordinator) Enable(context.Context) error  { return nil }
func (r *recordingCoordinator) Disable(context.Context) error { return nil }

type nopJournal struct{}

func (nopJournal) RecordSignal(context.Context, *models.Signal, bool, string) {}
func (nopJournal) RecordGate(context.Context, bool, models.DCAProfile)        {}

func signalText(pair, action string) string {
	return "New 3CQS Signal\n" +
		"SymRank Top 30\n" +
		"#" + pair + "\n" +
		"BOT_" + action + "\n" +
		"Volatility Score 5.0\n" +
		"Price Action Score 3.0\n" +
		"SymRank #12"
}

func TestRunnerProcessesInArrivalOrder(t *testing.T) {
	cfg := multiConfig()
	raw := make(chan string, 16)
	coord := &recordingCoordinator{}
	state := gate.NewState()

	r := NewRunner(cfg, raw, signals.NewParser("USDT"), acceptAll{}, coord, state, nopJournal{}, metricsForTest())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	raw <- signalText("AAA", "START")
	raw <- signalText("BBB", "START")
	raw <- signalText("AAA", "STOP")

	deadline := time.After(2 * time.Second)
	for {
		coord.mu.Lock()
		n := len(coord.triggers)
		coord.mu.Unlock()
		if n == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("processed %d of 3 signals", n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	want := []string{"START USDT_AAA", "START USDT_BBB", "STOP USDT_AAA"}
	coord.mu.Lock()
	defer coord.mu.Unlock()
	for i, w := range want {
		if coord.triggers[i] != w {
			t.Errorf("triggers[%d] = %q, want %q", i, coord.triggers[i], w)
		}
	}
	if state.LastSignal().IsZero() {
		t.Error("runner should record the last signal time")
	}
}

func TestRunnerSkipsSignalsWhenGated(t *testing.T) {
	cfg := multiConfig()
	raw := make(chan string, 16)
	coord := &recordingCoordinator{}
	state := gate.NewState()
	state.SetTradingAllowed(false)

	r := NewRunner(cfg, raw, signals.NewParser("USDT"), acceptAll{}, coord, state, nopJournal{}, metricsForTest())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	raw <- signalText("AAA", "START")
	raw <- "chat noise"

	time.Sleep(100 * time.Millisecond)
	coord.mu.Lock()
	defer coord.mu.Unlock()
	if len(coord.triggers) != 0 {
		t.Errorf("triggers = %v, closed gate must skip signals", coord.triggers)
	}
}

func TestRunnerAppliesRankedList(t *testing.T) {
	cfg := multiConfig()
	raw := make(chan string, 16)
	coord := &recordingCoordinator{}
	state := gate.NewState()
	// закрытый гейт не мешает обновлению состава пар
	state.SetTradingAllowed(false)

	r := NewRunner(cfg, raw, signals.NewParser("USDT"), acceptAll{}, coord, state, nopJournal{}, metricsForTest())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	rows := make([]string, 17)
	rows[0] = "SymRank Top 10"
	rows[2] = "1. AAA   2. BBB"
	msg := rows[0]
	for _, row := range rows[1:] {
		msg += "\n" + row
	}
	raw <- msg

	deadline := time.After(2 * time.Second)
	for {
		coord.mu.Lock()
		n := len(coord.ranked)
		coord.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("ranked list was not applied")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if !r.RankedSeen() {
		t.Error("RankedSeen should flip after the first applied list")
	}
}

type failingCoordinator struct {
	recordingCoordinator
	err error
}

func (f *failingCoordinator) Trigger(context.Context, *models.Signal) error { return f.err }

func TestRunnerStopsOnUnrecoverableAPIError(t *testing.T) {
	apiErr := &threecommas.APIError{
		Status: 422, Code: "record_invalid", Msg: "Mandatory attribute missing: account_id",
	}
	coord := &failingCoordinator{err: fmt.Errorf("create bot: %w", apiErr)}

	r := NewRunner(multiConfig(), make(chan string), signals.NewParser("USDT"),
		acceptAll{}, coord, gate.NewState(), nopJournal{}, metricsForTest())

	var fatals []string
	r.fatal = func(format string, args ...interface{}) {
		fatals = append(fatals, fmt.Sprintf(format, args...))
	}

	r.handle(context.Background(), signalText("AAA", "START"))

	if len(fatals) != 1 {
		t.Fatalf("want the mandatory-attribute error to stop the process, got %d fatal call(s)", len(fatals))
	}
}

func TestRunnerKeepsGoingOnTransientError(t *testing.T) {
	coord := &failingCoordinator{err: errors.New("connection reset")}

	r := NewRunner(multiConfig(), make(chan string), signals.NewParser("USDT"),
		acceptAll{}, coord, gate.NewState(), nopJournal{}, metricsForTest())

	fatals := 0
	r.fatal = func(string, ...interface{}) { fatals++ }

	r.handle(context.Background(), signalText("AAA", "START"))
	r.handle(context.Background(), signalText("BBB", "START"))

	if fatals != 0 {
		t.Fatalf("transient errors must not stop the process, got %d fatal call(s)", fatals)
	}
}
