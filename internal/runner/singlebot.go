package runner

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	threecommas "signal_bot/internal/modules/threecommas/service"
	"signal_bot/pkg/logger"
)

// SingleBot держит по отдельному single-pair боту на каждую пару.
// Потолки занятости считаются по всем ботам с нашим префиксом имени;
// reserved страхует окно между решением создать бота и моментом,
// когда он виден в листинге, от перебора слотов пачкой сигналов.
type SingleBot struct {
	cfg      *config.Config
	api      TradingAPI
	universe PairUniverse
	topcoin  TopcoinFilter
	gate     GateReader
	notify   Notifier

	reserved atomic.Int64
}

func NewSingleBot(cfg *config.Config, api TradingAPI, universe PairUniverse, topcoin TopcoinFilter, gate GateReader, notify Notifier) *SingleBot {
	return &SingleBot{
		cfg:      cfg,
		api:      api,
		universe: universe,
		topcoin:  topcoin,
		gate:     gate,
		notify:   notify,
	}
}

// Identify в single-режиме лишь валидирует deal_mode профилей,
// боты находятся по имени на каждый сигнал.
func (s *SingleBot) Identify(ctx context.Context) error {
	for _, profile := range []models.DCAProfile{
		models.ProfileDefault, models.ProfileDefensive, models.ProfileModerate, models.ProfileAggressive,
	} {
		if _, err := strategyList(s.cfg.Params(profile).DealMode); err != nil {
			return err
		}
	}
	return nil
}

// ApplyRanked не имеет смысла для single-ботов: состав определяют сигналы.
func (s *SingleBot) ApplyRanked(ctx context.Context, ranked models.RankedPairList) error {
	logger.Debug("ranked list ignored in single-pair mode")
	return nil
}

func (s *SingleBot) Trigger(ctx context.Context, sig *models.Signal) error {
	switch sig.Action {
	case models.ActionStart:
		return s.start(ctx, sig.Pair)
	case models.ActionStop:
		return s.stop(ctx, sig.Pair)
	}
	return nil
}

func (s *SingleBot) start(ctx context.Context, pair string) error {
	name := singleBotName(s.cfg, pair)

	mine, err := s.listMine(ctx)
	if err != nil {
		return err
	}
	if existing, ok := findByName(mine, name); ok {
		return s.reenable(ctx, existing)
	}

	ok, err := s.admitPair(ctx, pair)
	if err != nil || !ok {
		return err
	}

	enabled, deals := occupancy(mine)
	// слот резервируется до создания и отпускается после: следующий
	// сигнал увидит либо резерв, либо уже созданного бота в листинге
	reserved := s.reserved.Add(1)
	defer s.reserved.Add(-1)

	if limit := s.cfg.Trading.SingleBotLimit; limit > 0 && enabled+int(reserved) > limit {
		logger.Info("single bot limit %d reached (%d enabled, %d reserving), %s skipped", limit, enabled, reserved, pair)
		return nil
	}
	params := s.cfg.Params(s.gate.Snapshot().ActiveProfile)
	if ceiling := params.MaxActiveDeals; ceiling > 0 && deals+int(reserved) > ceiling {
		logger.Info("active deal ceiling %d reached (%d open, %d reserving), %s skipped", ceiling, deals, reserved, pair)
		return nil
	}

	payload, err := buildPayload(s.cfg, s.universe.Account().ID, name, []string{pair}, adjustCapacity(1, params.SameDealsPerPair, params.MaxActiveDeals), params)
	if err != nil {
		return err
	}
	created, err := s.api.CreateBot(ctx, payload)
	if err != nil {
		return fmt.Errorf("create single bot %s: %w", name, err)
	}
	logger.Info("created single bot %d (%s)", created.ID, created.Name)
	s.notify.Sendf(ctx, "Created single bot %s", created.Name)

	if s.cfg.Trading.ExtBotSwitch || !s.gate.Snapshot().TradingAllowed {
		return nil
	}
	if _, err := s.api.EnableBot(ctx, created.ID); err != nil {
		return fmt.Errorf("enable single bot %d: %w", created.ID, err)
	}
	if dealModeSignal(params) {
		if err := s.api.StartNewDeal(ctx, created.ID, pair); err != nil {
			return fmt.Errorf("start deal %s: %w", pair, err)
		}
		logger.Info("started new deal on %s", pair)
	}
	return nil
}

// reenable — повторный START по уже существующему боту.
func (s *SingleBot) reenable(ctx context.Context, bot threecommas.Bot) error {
	if bot.IsEnabled {
		logger.Info("single bot %s is already enabled", bot.Name)
		return nil
	}
	if s.cfg.Trading.ExtBotSwitch || !s.gate.Snapshot().TradingAllowed {
		logger.Info("trading is gated off, %s stays disabled", bot.Name)
		return nil
	}
	if _, err := s.api.EnableBot(ctx, bot.ID); err != nil {
		return fmt.Errorf("enable single bot %d: %w", bot.ID, err)
	}
	logger.Info("re-enabled single bot %s", bot.Name)
	return nil
}

// stop: без открытых сделок бот удаляется (если разрешено) либо
// выключается; с открытыми — только выключается, сделки доживают сами.
func (s *SingleBot) stop(ctx context.Context, pair string) error {
	mine, err := s.listMine(ctx)
	if err != nil {
		return err
	}
	bot, ok := findByName(mine, singleBotName(s.cfg, pair))
	if !ok {
		logger.Info("no single bot for %s, STOP ignored", pair)
		return nil
	}

	if bot.ActiveDealsCount == 0 && s.cfg.Trading.DeleteSingle {
		if err := s.api.DeleteBot(ctx, bot.ID); err != nil {
			return fmt.Errorf("delete single bot %d: %w", bot.ID, err)
		}
		logger.Info("deleted single bot %s", bot.Name)
		s.notify.Sendf(ctx, "Deleted single bot %s", bot.Name)
		return nil
	}
	if !bot.IsEnabled {
		logger.Info("single bot %s is already disabled", bot.Name)
		return nil
	}
	if _, err := s.api.DisableBot(ctx, bot.ID); err != nil {
		return fmt.Errorf("disable single bot %d: %w", bot.ID, err)
	}
	logger.Info("disabled single bot %s, open deals keep running", bot.Name)
	return nil
}

// Enable после снятия запрета намеренно ничего не включает обратно:
// какие пары всё ещё актуальны, знают только свежие сигналы.
func (s *SingleBot) Enable(ctx context.Context) error {
	logger.Info("trading allowed again, single bots will be enabled by new signals")
	return nil
}

// Disable выключает все single-боты системы разом.
func (s *SingleBot) Disable(ctx context.Context) error {
	mine, err := s.listMine(ctx)
	if err != nil {
		return err
	}
	for _, b := range mine {
		if !b.IsEnabled {
			continue
		}
		if _, err := s.api.DisableBot(ctx, b.ID); err != nil {
			return fmt.Errorf("disable single bot %d: %w", b.ID, err)
		}
		logger.Info("disabled single bot %s", b.Name)
	}
	return nil
}

func (s *SingleBot) admitPair(ctx context.Context, pair string) (bool, error) {
	ok, err := s.topcoin.Check(ctx, baseOf(pair))
	if err != nil {
		return false, fmt.Errorf("admitPair %s: %w", pair, err)
	}
	if !ok {
		return false, nil
	}
	if !s.universe.Tradable(pair) {
		logger.Info("%s is not traded on account, skipping", pair)
		return false, nil
	}
	return true, nil
}

// listMine — боты аккаунта, созданные этой системой (по префиксу имени).
func (s *SingleBot) listMine(ctx context.Context) ([]threecommas.Bot, error) {
	bots, err := s.api.ListBots(ctx, s.cfg.ThreeCommas.BotLimit)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}
	prefix := singleBotPrefix(s.cfg)
	mine := bots[:0]
	for _, b := range bots {
		if strings.HasPrefix(b.Name, prefix) {
			mine = append(mine, b)
		}
	}
	return mine, nil
}

func findByName(bots []threecommas.Bot, name string) (threecommas.Bot, bool) {
	for _, b := range bots {
		if b.Name == name {
			return b, true
		}
	}
	return threecommas.Bot{}, false
}

// occupancy — сколько ботов включено и сколько сделок открыто.
func occupancy(bots []threecommas.Bot) (enabled, deals int) {
	for _, b := range bots {
		if b.IsEnabled {
			enabled++
		}
		deals += b.ActiveDealsCount
	}
	return enabled, deals
}
