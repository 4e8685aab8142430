package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

func rangeConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Filters.VolatilityMin = 0.1
	cfg.Filters.VolatilityMax = 100
	cfg.Filters.PriceActionMin = 0.1
	cfg.Filters.PriceActionMax = 100
	cfg.Filters.RankMin = 1
	cfg.Filters.RankMax = 10
	return cfg
}

func TestRangeFilterRejectsRankOverMax(t *testing.T) {
	f := &rangeFilter{cfg: rangeConfig()}
	sig := &models.Signal{
		Pair:        "USDT_ABC",
		Action:      models.ActionStart,
		Volatility:  5.0,
		PriceAction: 3.0,
		Rank:        12,
	}

	ok, err := f.Accept(context.Background(), sig)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("rank 12 should be rejected with rank_max 10")
	}
}

func TestRangeFilterAcceptsWithinLimits(t *testing.T) {
	f := &rangeFilter{cfg: rangeConfig()}
	sig := &models.Signal{
		Action:      models.ActionStart,
		Volatility:  5.0,
		PriceAction: 3.0,
		Rank:        7,
	}

	if ok, _ := f.Accept(context.Background(), sig); !ok {
		t.Error("signal within all ranges should pass")
	}
}

func TestRangeFilterSkipsStopAndZeroVolatility(t *testing.T) {
	f := &rangeFilter{cfg: rangeConfig()}

	stop := &models.Signal{Action: models.ActionStop, Rank: 9999}
	if ok, _ := f.Accept(context.Background(), stop); !ok {
		t.Error("STOP signals bypass range checks")
	}

	unscored := &models.Signal{Action: models.ActionStart, Volatility: 0, Rank: 9999}
	if ok, _ := f.Accept(context.Background(), unscored); !ok {
		t.Error("zero volatility means scores are not applicable")
	}
}

func TestKindFilter(t *testing.T) {
	f := &kindFilter{allowed: []string{"top30", "svol"}}

	if ok, _ := f.Accept(context.Background(), &models.Signal{Kind: "top30"}); !ok {
		t.Error("configured kind should pass")
	}
	if ok, _ := f.Accept(context.Background(), &models.Signal{Kind: "xvol"}); ok {
		t.Error("unconfigured kind should be rejected")
	}

	all := &kindFilter{}
	if ok, _ := all.Accept(context.Background(), &models.Signal{Kind: "anything"}); !ok {
		t.Error("empty allow list means all kinds pass")
	}
}

func TestWhitelistAndDenylist(t *testing.T) {
	wl := &whitelistFilter{whitelist: []string{"USDT_AAA"}}
	if ok, _ := wl.Accept(context.Background(), &models.Signal{Pair: "USDT_BBB"}); ok {
		t.Error("pair outside whitelist should be rejected")
	}
	if ok, _ := wl.Accept(context.Background(), &models.Signal{Pair: "USDT_AAA"}); !ok {
		t.Error("whitelisted pair should pass")
	}

	dl := &denylistFilter{denylist: []string{"USDT_BAD"}}
	if ok, _ := dl.Accept(context.Background(), &models.Signal{Pair: "USDT_BAD"}); ok {
		t.Error("denylisted pair should be rejected")
	}
	if ok, _ := dl.Accept(context.Background(), &models.Signal{Pair: "USDT_OK"}); !ok {
		t.Error("other pairs should pass")
	}
}

type failingFilter struct{ err error }

func (f failingFilter) Name() string { return "topcoin" }

func (f failingFilter) Accept(context.Context, *models.Signal) (bool, error) {
	return false, f.err
}

func TestPipelineNamesTheFailingFilter(t *testing.T) {
	p := &Pipeline{filters: []Filter{failingFilter{err: errors.New("http 429")}}}

	_, err := p.Accept(context.Background(), &models.Signal{Pair: "USDT_AAA", Action: models.ActionStart})
	if err == nil || !strings.Contains(err.Error(), "topcoin filter:") {
		t.Fatalf("error should carry the filter name, got %v", err)
	}
}
