package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"
)

func newTestParser() *Parser {
	p := NewParser("USDT")
	p.now = func() time.Time { return time.Unix(1700000000, 0) }
	return p
}

func TestParseStartSignal(t *testing.T) {
	raw := "New 3CQS Signal\n" +
		"SymRank Top 30\n" +
		"#ABC\n" +
		"BOT_START\n" +
		"Volatility Score 5.0\n" +
		"Price Action Score 3.0\n" +
		"SymRank #12"

	event := newTestParser().Parse(raw)
	if event.Signal == nil {
		t.Fatal("expected a signal event")
	}
	sig := event.Signal

	if sig.Kind != "top30" {
		t.Errorf("Kind = %q, want top30", sig.Kind)
	}
	if sig.Pair != "USDT_ABC" {
		t.Errorf("Pair = %q, want USDT_ABC", sig.Pair)
	}
	if sig.Action != models.ActionStart {
		t.Errorf("Action = %q, want START", sig.Action)
	}
	if sig.Volatility != 5.0 || sig.PriceAction != 3.0 {
		t.Errorf("scores = %f/%f, want 5.0/3.0", sig.Volatility, sig.PriceAction)
	}
	if sig.Rank != 12 {
		t.Errorf("Rank = %d, want 12", sig.Rank)
	}
}

func TestParseUnknownKindKept(t *testing.T) {
	raw := "New 3CQS Signal\n" +
		"Brand New Tracker\n" +
		"#XYZ\n" +
		"BOT_STOP\n" +
		"Volatility Score 1.5\n" +
		"Price Action Score 2.5\n" +
		"SymRank #3"

	event := newTestParser().Parse(raw)
	if event.Signal == nil {
		t.Fatal("expected a signal event")
	}
	if event.Signal.Kind != "Brand New Tracker" {
		t.Errorf("unknown kind should pass through, got %q", event.Signal.Kind)
	}
	if event.Signal.Action != models.ActionStop {
		t.Errorf("Action = %q, want STOP", event.Signal.Action)
	}
}

func TestParseNAScore(t *testing.T) {
	raw := "New 3CQS Signal\n" +
		"Super Volatility\n" +
		"#DEF\n" +
		"BOT_START\n" +
		"Volatility Score 4.2\n" +
		"Price Action Score 1.1\n" +
		"SymRank #N/A"

	event := newTestParser().Parse(raw)
	if event.Signal == nil {
		t.Fatal("expected a signal event")
	}
	if event.Signal.Rank != models.ScoreNA {
		t.Errorf("Rank = %d, want sentinel %d", event.Signal.Rank, models.ScoreNA)
	}
}

func TestParseMalformedScoreDropped(t *testing.T) {
	raw := "New 3CQS Signal\n" +
		"Super Volatility\n" +
		"#DEF\n" +
		"BOT_START\n" +
		"Volatility Score oops\n" +
		"Price Action Score 1.1\n" +
		"SymRank #4"

	if event := newTestParser().Parse(raw); !event.IsZero() {
		t.Error("malformed score should produce a zero event")
	}
}

func TestParseRankedList(t *testing.T) {
	rows := []string{
		"SymRank Top 10",
		"",
		"3. CCC   1. AAA",
		"2. BBB   4. DDD",
	}
	// добиваем до 17 строк пустыми
	for len(rows) < 17 {
		rows = append(rows, "")
	}
	raw := rows[0]
	for _, r := range rows[1:] {
		raw += "\n" + r
	}

	event := newTestParser().Parse(raw)
	if len(event.Ranked) != 4 {
		t.Fatalf("got %d symbols, want 4", len(event.Ranked))
	}
	want := []string{"AAA", "BBB", "CCC", "DDD"}
	for i, s := range want {
		if event.Ranked[i] != s {
			t.Errorf("Ranked[%d] = %q, want %q", i, event.Ranked[i], s)
		}
	}
}

func TestParseRankedBusyResponse(t *testing.T) {
	rows := make([]string, 17)
	rows[0] = "Volatile market, request later"
	rows[2] = "1. AAA"
	raw := rows[0]
	for _, r := range rows[1:] {
		raw += "\n" + r
	}

	if event := newTestParser().Parse(raw); !event.IsZero() {
		t.Error("busy response should be ignored")
	}
}

func TestParseOtherTrafficIgnored(t *testing.T) {
	if event := newTestParser().Parse("hello\nworld"); !event.IsZero() {
		t.Error("chat noise should be ignored")
	}
}
