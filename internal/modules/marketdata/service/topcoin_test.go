package service

import (
	"testing"

	"signal_bot/internal/modules/config"
)

func TestNewTopcoinParsesVolumeSuffix(t *testing.T) {
	cfg := &config.Config{}
	cfg.Filters.TopcoinEnabled = true
	cfg.Filters.TopcoinLimit = 500
	cfg.Filters.TopcoinVolume = "100k"
	cfg.Trading.Market = "USDT"

	if tc := NewTopcoin(cfg, nil); tc.minVolume != 100000 {
		t.Fatalf("minVolume = %v, want 100000", tc.minVolume)
	}

	cfg.Filters.TopcoinVolume = "1.5M"
	if tc := NewTopcoin(cfg, nil); tc.minVolume != 1500000 {
		t.Fatalf("minVolume = %v, want 1500000", tc.minVolume)
	}

	cfg.Filters.TopcoinVolume = ""
	if tc := NewTopcoin(cfg, nil); tc.minVolume != 0 {
		t.Fatalf("empty volume must disable the threshold, got %v", tc.minVolume)
	}
}
