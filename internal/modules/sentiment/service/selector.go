package service

import (
	"context"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	"signal_bot/pkg/logger"
)

// Selector выбирает DCA-профиль по текущему значению индекса.
type Selector struct {
	cfg   *config.Config
	state *gate.State
}

func NewSelector(cfg *config.Config, state *gate.State) *Selector {
	return &Selector{cfg: cfg, state: state}
}

// Select: первый из трёх диапазонов, содержащий значение.
// Если хоть один диапазон не настроен — всегда default.
func (s *Selector) Select(value int) models.DCAProfile {
	if !s.cfg.ProfilesConfigured() {
		return models.ProfileDefault
	}

	switch {
	case s.cfg.DCA.DefensiveRange.Contains(value):
		return models.ProfileDefensive
	case s.cfg.DCA.ModerateRange.Contains(value):
		return models.ProfileModerate
	case s.cfg.DCA.AggressiveRange.Contains(value):
		return models.ProfileAggressive
	default:
		// значение вне всех диапазонов, профиль не трогаем
		return s.state.Snapshot().ActiveProfile
	}
}

// Run пересматривает профиль на каждом обновлении трекера.
func (s *Selector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap := s.state.Snapshot()
		if snap.SentimentValue >= 0 {
			next := s.Select(snap.SentimentValue)
			if next != snap.ActiveProfile {
				logger.Info("DCA profile switch: %s -> %s (sentiment %d)", snap.ActiveProfile, next, snap.SentimentValue)
				s.state.SetProfile(next)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
