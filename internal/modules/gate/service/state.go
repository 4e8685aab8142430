package service

import (
	"sync"
	"time"

	"signal_bot/internal/models"
)

// State — разделяемое состояние гейта. Писатели мутируют по одному полю,
// читатели получают копию через Snapshot; по ссылке состояние не отдаётся.
type State struct {
	mu sync.RWMutex

	snap models.GateSnapshot

	lastSignalUnix int64
	startedAt      time.Time
}

func NewState() *State {
	return &State{
		// нейтральное разрешающее состояние на старте
		snap: models.GateSnapshot{
			SentimentValue: -1,
			TradingAllowed: true,
			ActiveProfile:  models.ProfileDefault,
		},
		startedAt: time.Now(),
	}
}

func (s *State) Snapshot() models.GateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *State) SetBenchmarkDowntrend(v bool) {
	s.mu.Lock()
	s.snap.BenchmarkDowntrend = v
	s.mu.Unlock()
}

func (s *State) SetSentiment(value int, downtrend, sharpDrop bool) {
	s.mu.Lock()
	s.snap.SentimentValue = value
	s.snap.SentimentDowntrend = downtrend
	s.snap.SentimentSharpDrop = sharpDrop
	s.mu.Unlock()
}

func (s *State) SetProfile(p models.DCAProfile) {
	s.mu.Lock()
	s.snap.ActiveProfile = p
	s.mu.Unlock()
}

func (s *State) SetTradingAllowed(v bool) {
	s.mu.Lock()
	s.snap.TradingAllowed = v
	s.mu.Unlock()
}

func (s *State) TouchSignal(t time.Time) {
	s.mu.Lock()
	s.lastSignalUnix = t.Unix()
	s.mu.Unlock()
}

func (s *State) LastSignal() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastSignalUnix == 0 {
		return time.Time{}
	}
	return time.Unix(s.lastSignalUnix, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

// ComputeAllowed — композиция гейта: любой из трёх флагов запрещает торговлю.
// При включённом sentiment-гейтинге значение индекса дополнительно должно
// попадать в разрешённый диапазон.
func ComputeAllowed(snap models.GateSnapshot, sentimentGated bool, rangeMin, rangeMax int) bool {
	if snap.BenchmarkDowntrend || snap.SentimentDowntrend || snap.SentimentSharpDrop {
		return false
	}
	if sentimentGated && snap.SentimentValue >= 0 {
		if snap.SentimentValue < rangeMin || snap.SentimentValue > rangeMax {
			return false
		}
	}
	return true
}
