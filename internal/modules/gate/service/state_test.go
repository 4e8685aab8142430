package service

import (
	"testing"

	"signal_bot/internal/models"
)

func TestComputeAllowedFlags(t *testing.T) {
	cases := []struct {
		name string
		snap models.GateSnapshot
		want bool
	}{
		{"all clear", models.GateSnapshot{SentimentValue: 50}, true},
		{"benchmark downtrend", models.GateSnapshot{BenchmarkDowntrend: true, SentimentValue: 50}, false},
		{"sentiment downtrend", models.GateSnapshot{SentimentDowntrend: true, SentimentValue: 50}, false},
		{"sharp drop", models.GateSnapshot{SentimentSharpDrop: true, SentimentValue: 50}, false},
	}
	for _, c := range cases {
		if got := ComputeAllowed(c.snap, true, 0, 100); got != c.want {
			t.Errorf("%s: ComputeAllowed = %t, want %t", c.name, got, c.want)
		}
	}
}

func TestComputeAllowedSentimentRange(t *testing.T) {
	snap := models.GateSnapshot{SentimentValue: 80}

	if ComputeAllowed(snap, true, 10, 70) {
		t.Error("value 80 outside [10,70] must close the gate")
	}
	if !ComputeAllowed(snap, false, 10, 70) {
		t.Error("range only applies when sentiment gating is on")
	}

	// до первого опроса значение -1, диапазон не применяется
	unknown := models.GateSnapshot{SentimentValue: -1}
	if !ComputeAllowed(unknown, true, 10, 70) {
		t.Error("unknown sentiment value must not close the gate")
	}
}

func TestStateNeutralStart(t *testing.T) {
	s := NewState()
	snap := s.Snapshot()

	if !snap.TradingAllowed {
		t.Error("fresh state should allow trading")
	}
	if snap.ActiveProfile != models.ProfileDefault {
		t.Errorf("ActiveProfile = %q, want default", snap.ActiveProfile)
	}
	if snap.SentimentValue != -1 {
		t.Errorf("SentimentValue = %d, want -1 before first fetch", snap.SentimentValue)
	}
}

func TestStateSnapshotIsolation(t *testing.T) {
	s := NewState()
	before := s.Snapshot()
	s.SetBenchmarkDowntrend(true)

	if before.BenchmarkDowntrend {
		t.Error("snapshot taken earlier must not see later writes")
	}
	if !s.Snapshot().BenchmarkDowntrend {
		t.Error("new snapshot must see the write")
	}
}
