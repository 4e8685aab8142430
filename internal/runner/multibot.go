package runner

import (
	"context"
	"fmt"
	"sync"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	threecommas "signal_bot/internal/modules/threecommas/service"
	"signal_bot/pkg/logger"
)

// PairUniverse — подмножество вселенной пар, нужное координатору.
type PairUniverse interface {
	Tradable(pair string) bool
	Account() threecommas.Account
}

// TopcoinFilter — допуск по капитализации/объёму.
type TopcoinFilter interface {
	Check(ctx context.Context, base string) (bool, error)
	FilterList(ctx context.Context, bases []string) ([]string, error)
}

// GateReader — снимок гейта на момент решения.
type GateReader interface {
	Snapshot() models.GateSnapshot
}

// MultiBot управляет одним multi-pair DCA-ботом. Все операции идут
// через mu: на один удалённый id пишет ровно один владелец, гонок
// read-modify-write по списку пар нет.
type MultiBot struct {
	cfg      *config.Config
	api      TradingAPI
	universe PairUniverse
	topcoin  TopcoinFilter
	gate     GateReader
	notify   Notifier

	mu  sync.Mutex
	bot *models.BotConfig // nil пока бот не найден и не создан
}

func NewMultiBot(cfg *config.Config, api TradingAPI, universe PairUniverse, topcoin TopcoinFilter, gate GateReader, notify Notifier) *MultiBot {
	return &MultiBot{
		cfg:      cfg,
		api:      api,
		universe: universe,
		topcoin:  topcoin,
		gate:     gate,
		notify:   notify,
	}
}

// Identify резолвит бота: по botid если задан, иначе по вычисленному
// имени. Заданный, но не найденный botid — ошибка конфигурации.
// Заодно валидирует deal_mode всех профилей: кривой JSON должен
// убить процесс на старте, а не посреди обработки сигнала.
func (m *MultiBot) Identify(ctx context.Context) error {
	for _, profile := range []models.DCAProfile{
		models.ProfileDefault, models.ProfileDefensive, models.ProfileModerate, models.ProfileAggressive,
	} {
		if _, err := strategyList(m.cfg.Params(profile).DealMode); err != nil {
			return err
		}
	}

	bots, err := m.api.ListBots(ctx, m.cfg.ThreeCommas.BotLimit)
	if err != nil {
		return fmt.Errorf("Identify: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := multiBotName(m.cfg)
	if id := m.cfg.Trading.BotID; id != 0 {
		for _, b := range bots {
			if b.ID != id {
				continue
			}
			found := b.ToConfig()
			// локально держим вычисленное имя, апдейты его закрепят
			found.Name = name
			m.bot = &found
			logger.Info("using existing dca bot %d (%s)", b.ID, b.Name)
			return nil
		}
		return fmt.Errorf("Identify: configured bot id %d not found on account", id)
	}

	for _, b := range bots {
		if b.Name == name {
			found := b.ToConfig()
			m.bot = &found
			logger.Info("found dca bot %d by name %s", b.ID, name)
			return nil
		}
	}

	logger.Info("no dca bot named %s yet, it will be created from the first pair list", name)
	return nil
}

// ApplyRanked пересобирает список пар бота из ранкед-листа.
// Символы идут через topcoin-фильтр, потом через вселенную пар.
func (m *MultiBot) ApplyRanked(ctx context.Context, ranked models.RankedPairList) error {
	bases, err := m.topcoin.FilterList(ctx, ranked)
	if err != nil {
		return fmt.Errorf("ApplyRanked: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pairs := make([]string, 0, len(bases))
	for _, base := range bases {
		pair := m.cfg.Trading.Market + "_" + base
		if !m.universe.Tradable(pair) {
			logger.Info("%s is not traded on account, skipping", pair)
			continue
		}
		pairs = append(pairs, pair)
	}
	if len(pairs) == 0 {
		logger.Info("no tradeable pairs left after filtering, dca bot not touched")
		return nil
	}

	params := m.cfg.Params(m.gate.Snapshot().ActiveProfile)
	if m.cfg.Trading.LimitPairsToMad && params.MaxActiveDeals > 0 && len(pairs) > params.MaxActiveDeals {
		pairs = pairs[:params.MaxActiveDeals]
	}

	return m.applyLocked(ctx, pairs, params, "")
}

// Trigger обрабатывает один START/STOP сигнал.
func (m *MultiBot) Trigger(ctx context.Context, sig *models.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	params := m.cfg.Params(m.gate.Snapshot().ActiveProfile)
	signalMode := dealModeSignal(params)

	if m.bot == nil {
		if sig.Action != models.ActionStart || !signalMode {
			logger.Info("no dca bot yet, ignoring %s for %s", sig.Action, sig.Pair)
			return nil
		}
		ok, err := m.admitPair(ctx, sig.Pair)
		if err != nil || !ok {
			return err
		}
		return m.applyLocked(ctx, []string{sig.Pair}, params, sig.Pair)
	}

	if !m.bot.IsEnabled && !m.cfg.Trading.ContinuousUpdate {
		logger.Info("dca bot is disabled, %s for %s not applied", sig.Action, sig.Pair)
		return nil
	}

	pairs := append([]string(nil), m.bot.Pairs...)
	switch sig.Action {
	case models.ActionStart:
		if m.bot.HasPair(sig.Pair) {
			logger.Info("%s is already included in the pair list", sig.Pair)
		} else {
			ok, err := m.admitPair(ctx, sig.Pair)
			if err != nil || !ok {
				return err
			}
			pairs = append(pairs, sig.Pair)
		}
	case models.ActionStop:
		if signalMode {
			// в signal-режиме пару не убираем: открытая сделка дойдёт
			// до конца, просто новые по ней не стартуем
			logger.Info("STOP for %s ignored in signal deal mode, open deals finish on their own", sig.Pair)
			return nil
		} else if m.bot.HasPair(sig.Pair) {
			pairs = removePair(pairs, sig.Pair)
		} else {
			logger.Info("%s is not in the pair list, nothing to remove", sig.Pair)
			return nil
		}
	}
	if len(pairs) == 0 {
		logger.Info("pair list would become empty, disabling dca bot instead")
		return m.disableLocked(ctx)
	}

	if err := m.applyLocked(ctx, pairs, params, ""); err != nil {
		return err
	}

	if signalMode && sig.Action == models.ActionStart {
		return m.startDealLocked(ctx, sig.Pair)
	}
	return nil
}

func (m *MultiBot) Enable(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableLocked(ctx)
}

func (m *MultiBot) Disable(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disableLocked(ctx)
}

// admitPair — topcoin и торгуемость для одной пары.
func (m *MultiBot) admitPair(ctx context.Context, pair string) (bool, error) {
	base := baseOf(pair)
	ok, err := m.topcoin.Check(ctx, base)
	if err != nil {
		return false, fmt.Errorf("admitPair %s: %w", pair, err)
	}
	if !ok {
		return false, nil
	}
	if !m.universe.Tradable(pair) {
		logger.Info("%s is not traded on account, skipping", pair)
		return false, nil
	}
	return true, nil
}

// applyLocked — создать либо обновить бота под новый список пар.
// triggerPair != "" означает создание из одиночного сигнала.
func (m *MultiBot) applyLocked(ctx context.Context, pairs []string, params models.DCAParams, triggerPair string) error {
	mad := adjustCapacity(len(pairs), params.SameDealsPerPair, params.MaxActiveDeals)

	if m.bot == nil {
		// бот с одной парой и mad=1 не переживает паузу этой пары:
		// добиваем парой-якорем и поднимаем потолок
		if len(pairs) == 1 {
			anchor := m.cfg.Trading.Market + "_BTC"
			if !containsPair(pairs, anchor) && m.universe.Tradable(anchor) {
				pairs = append(pairs, anchor)
			}
			mad = 2
		}
		payload, err := buildPayload(m.cfg, m.universe.Account().ID, multiBotName(m.cfg), pairs, mad, params)
		if err != nil {
			return err
		}
		created, err := m.api.CreateBot(ctx, payload)
		if err != nil {
			return fmt.Errorf("create dca bot: %w", err)
		}
		bot := created.ToConfig()
		m.bot = &bot
		logger.Info("created dca bot %d (%s) with %d pair(s), max %d deal(s)", bot.ID, bot.Name, len(bot.Pairs), bot.MaxActiveDeals)
		m.notify.Sendf(ctx, "Created DCA bot %s with %d pair(s)", bot.Name, len(bot.Pairs))
		m.reportFunds(params, mad)

		if !m.cfg.Trading.ExtBotSwitch && m.gate.Snapshot().TradingAllowed {
			if err := m.enableLocked(ctx); err != nil {
				return err
			}
		}
		if triggerPair != "" && m.bot.IsEnabled {
			return m.startDealLocked(ctx, triggerPair)
		}
		return nil
	}

	payload, err := buildPayload(m.cfg, m.universe.Account().ID, m.bot.Name, pairs, mad, params)
	if err != nil {
		return err
	}
	updated, err := m.api.UpdateBot(ctx, m.bot.ID, payload)
	if err != nil {
		return fmt.Errorf("update dca bot %d: %w", m.bot.ID, err)
	}
	bot := updated.ToConfig()
	bot.Name = m.bot.Name
	m.bot = &bot
	logger.Info("updated dca bot %d: %d pair(s), max %d deal(s)", bot.ID, len(bot.Pairs), bot.MaxActiveDeals)
	m.reportFunds(params, mad)

	if !m.bot.IsEnabled && !m.cfg.Trading.ExtBotSwitch && m.gate.Snapshot().TradingAllowed {
		return m.enableLocked(ctx)
	}
	return nil
}

// startDealLocked стартует сделку в signal-режиме, уважая потолок mad.
func (m *MultiBot) startDealLocked(ctx context.Context, pair string) error {
	deals, err := m.api.ListActiveDeals(ctx, m.bot.ID)
	if err != nil {
		return fmt.Errorf("list active deals: %w", err)
	}
	if len(deals) >= m.bot.MaxActiveDeals {
		logger.Info("max active deals (%d) reached, not starting a deal for %s", m.bot.MaxActiveDeals, pair)
		return nil
	}

	target := pair
	if m.cfg.Trading.RandomPair {
		target = randomPair(m.bot.Pairs)
	}
	if err := m.api.StartNewDeal(ctx, m.bot.ID, target); err != nil {
		return fmt.Errorf("start deal %s: %w", target, err)
	}
	logger.Info("started new deal on %s (%d/%d deals active)", target, len(deals)+1, m.bot.MaxActiveDeals)
	m.reportDeals(deals, target)
	return nil
}

func (m *MultiBot) enableLocked(ctx context.Context) error {
	if m.bot == nil || m.bot.IsEnabled {
		return nil
	}
	updated, err := m.api.EnableBot(ctx, m.bot.ID)
	if err != nil {
		return fmt.Errorf("enable dca bot %d: %w", m.bot.ID, err)
	}
	m.bot.IsEnabled = updated.IsEnabled
	logger.Info("dca bot %d enabled", m.bot.ID)
	m.notify.Sendf(ctx, "DCA bot %s enabled", m.bot.Name)
	return nil
}

func (m *MultiBot) disableLocked(ctx context.Context) error {
	if m.bot == nil || !m.bot.IsEnabled {
		return nil
	}
	updated, err := m.api.DisableBot(ctx, m.bot.ID)
	if err != nil {
		return fmt.Errorf("disable dca bot %d: %w", m.bot.ID, err)
	}
	m.bot.IsEnabled = updated.IsEnabled
	logger.Info("dca bot %d disabled, open deals keep running", m.bot.ID)
	m.notify.Sendf(ctx, "DCA bot %s disabled", m.bot.Name)
	return nil
}

// reportFunds — сколько капитала нужно при полностью заполненной лесенке.
func (m *MultiBot) reportFunds(params models.DCAParams, mad int) {
	funds, deviation := params.FundsNeeded()
	logger.Info("capital needed: %.2f %s per deal, %.2f %s total for %d deal(s), covering %.2f%% price deviation",
		funds, m.cfg.Trading.Market, funds*float64(mad), m.cfg.Trading.Market, mad, deviation)
}

func (m *MultiBot) reportDeals(deals []threecommas.Deal, started string) {
	if len(deals) == 0 {
		return
	}
	open := make([]string, 0, len(deals))
	for _, d := range deals {
		open = append(open, d.Pair)
	}
	logger.Info("active deals: %v, just started: %s", open, started)
}

func baseOf(pair string) string {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '_' {
			return pair[i+1:]
		}
	}
	return pair
}
