package runner

import (
	"context"
	"testing"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	gate "signal_bot/internal/modules/gate/service"
	threecommas "signal_bot/internal/modules/threecommas/service"
)

// fakeAPI — управляемый 3commas: боты держатся в памяти.
type fakeAPI struct {
	bots   []threecommas.Bot
	nextID int64

	deals        map[int64][]threecommas.Deal
	startedDeals []string
	deleted      []int64
}

func newFakeAPI(bots ...threecommas.Bot) *fakeAPI {
	return &fakeAPI{bots: bots, nextID: 100, deals: make(map[int64][]threecommas.Deal)}
}

func (f *fakeAPI) ListBots(_ context.Context, _ int) ([]threecommas.Bot, error) {
	return append([]threecommas.Bot(nil), f.bots...), nil
}

func (f *fakeAPI) CreateBot(_ context.Context, payload threecommas.BotPayload) (threecommas.Bot, error) {
	f.nextID++
	bot := threecommas.Bot{
		ID:             f.nextID,
		Name:           payload.Name,
		Pairs:          payload.Pairs,
		MaxActiveDeals: payload.MaxActiveDeals,
		AccountID:      payload.AccountID,
	}
	f.bots = append(f.bots, bot)
	return bot, nil
}

func (f *fakeAPI) UpdateBot(_ context.Context, id int64, payload threecommas.BotPayload) (threecommas.Bot, error) {
	for i, b := range f.bots {
		if b.ID == id {
			f.bots[i].Pairs = payload.Pairs
			f.bots[i].MaxActiveDeals = payload.MaxActiveDeals
			return f.bots[i], nil
		}
	}
	return threecommas.Bot{}, &threecommas.APIError{Status: 404, Msg: "bot not found"}
}

func (f *fakeAPI) EnableBot(_ context.Context, id int64) (threecommas.Bot, error) {
	return f.setEnabled(id, true)
}

func (f *fakeAPI) DisableBot(_ context.Context, id int64) (threecommas.Bot, error) {
	return f.setEnabled(id, false)
}

func (f *fakeAPI) setEnabled(id int64, v bool) (threecommas.Bot, error) {
	for i, b := range f.bots {
		if b.ID == id {
			f.bots[i].IsEnabled = v
			return f.bots[i], nil
		}
	}
	return threecommas.Bot{}, &threecommas.APIError{Status: 404, Msg: "bot not found"}
}

func (f *fakeAPI) DeleteBot(_ context.Context, id int64) error {
	for i, b := range f.bots {
		if b.ID == id {
			f.bots = append(f.bots[:i], f.bots[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return &threecommas.APIError{Status: 404, Msg: "bot not found"}
}

func (f *fakeAPI) StartNewDeal(_ context.Context, id int64, pair string) error {
	f.deals[id] = append(f.deals[id], threecommas.Deal{Pair: pair})
	f.startedDeals = append(f.startedDeals, pair)
	return nil
}

func (f *fakeAPI) ListActiveDeals(_ context.Context, botID int64) ([]threecommas.Deal, error) {
	return f.deals[botID], nil
}

func (f *fakeAPI) find(name string) (threecommas.Bot, bool) {
	return findByName(f.bots, name)
}

type fakeUniverse struct {
	blocked map[string]bool
}

func (f *fakeUniverse) Tradable(pair string) bool { return !f.blocked[pair] }

func (f *fakeUniverse) Account() threecommas.Account {
	return threecommas.Account{ID: 1, Name: "paper", MarketCode: "binance"}
}

type fakeTopcoin struct {
	rejected map[string]bool
}

func (f *fakeTopcoin) Check(_ context.Context, base string) (bool, error) {
	return !f.rejected[base], nil
}

func (f *fakeTopcoin) FilterList(_ context.Context, bases []string) ([]string, error) {
	out := make([]string, 0, len(bases))
	for _, b := range bases {
		if !f.rejected[b] {
			out = append(out, b)
		}
	}
	return out, nil
}

type nopNotifier struct{}

func (nopNotifier) Sendf(context.Context, string, ...any) {}

func multiConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Trading.Market = "USDT"
	cfg.Trading.Prefix = "3CQSBOT"
	cfg.Trading.Subprefix = "MULTI"
	cfg.Trading.Suffix = "dcabot"
	cfg.ThreeCommas.BotLimit = 300
	cfg.DCA.Default = models.DCAParams{
		BaseOrderVolume:   10,
		SafetyOrderVolume: 20,
		MaxSafetyOrders:   3,
		SameDealsPerPair:  1,
		MaxActiveDeals:    5,
		DealMode:          "signal",
	}
	return cfg
}

func newMulti(cfg *config.Config, api TradingAPI) *MultiBot {
	return NewMultiBot(cfg, api, &fakeUniverse{}, &fakeTopcoin{}, gate.NewState(), nopNotifier{})
}

func TestMultiApplyRankedCreatesBot(t *testing.T) {
	cfg := multiConfig()
	api := newFakeAPI()
	m := newMulti(cfg, api)
	ctx := context.Background()

	if err := m.Identify(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyRanked(ctx, models.RankedPairList{"AAA", "BBB", "CCC"}); err != nil {
		t.Fatal(err)
	}

	bot, ok := api.find("3CQSBOT_MULTI_dcabot")
	if !ok {
		t.Fatal("bot should be created from the ranked list")
	}
	if len(bot.Pairs) != 3 {
		t.Errorf("pairs = %v, want 3", bot.Pairs)
	}
	// инвариант ёмкости: 3 пары * sdsp 1 < настроенных 5
	if bot.MaxActiveDeals != 3 {
		t.Errorf("MaxActiveDeals = %d, want 3", bot.MaxActiveDeals)
	}
	if !bot.IsEnabled {
		t.Error("new bot should be enabled when the gate allows trading")
	}
}

func TestMultiCreateSinglePairPadsAnchor(t *testing.T) {
	cfg := multiConfig()
	api := newFakeAPI()
	m := newMulti(cfg, api)
	ctx := context.Background()

	sig := &models.Signal{Pair: "USDT_AAA", Action: models.ActionStart, Volatility: 1}
	if err := m.Trigger(ctx, sig); err != nil {
		t.Fatal(err)
	}

	bot, ok := api.find("3CQSBOT_MULTI_dcabot")
	if !ok {
		t.Fatal("bot should be created from the first START in signal mode")
	}
	if !containsPair(bot.Pairs, "USDT_BTC") {
		t.Errorf("pairs = %v, want USDT_BTC anchor added", bot.Pairs)
	}
	if bot.MaxActiveDeals != 2 {
		t.Errorf("MaxActiveDeals = %d, want 2 for a padded single-pair bot", bot.MaxActiveDeals)
	}
	if len(api.startedDeals) != 1 || api.startedDeals[0] != "USDT_AAA" {
		t.Errorf("startedDeals = %v, want a deal on USDT_AAA", api.startedDeals)
	}
}

func TestMultiStopKeepsPairInSignalMode(t *testing.T) {
	cfg := multiConfig()
	api := newFakeAPI(threecommas.Bot{
		ID: 7, Name: "3CQSBOT_MULTI_dcabot", IsEnabled: true,
		Pairs: []string{"USDT_AAA", "USDT_BBB"}, MaxActiveDeals: 2,
	})
	m := newMulti(cfg, api)
	ctx := context.Background()

	if err := m.Identify(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Trigger(ctx, &models.Signal{Pair: "USDT_AAA", Action: models.ActionStop}); err != nil {
		t.Fatal(err)
	}

	bot, _ := api.find("3CQSBOT_MULTI_dcabot")
	if !containsPair(bot.Pairs, "USDT_AAA") {
		t.Error("signal mode keeps pairs on STOP, open deals finish on their own")
	}
}

func TestMultiStopRemovesPairInAutoMode(t *testing.T) {
	cfg := multiConfig()
	cfg.DCA.Default.DealMode = `[{"strategy":"nonstop"}]`
	api := newFakeAPI(threecommas.Bot{
		ID: 7, Name: "3CQSBOT_MULTI_dcabot", IsEnabled: true,
		Pairs: []string{"USDT_AAA", "USDT_BBB"}, MaxActiveDeals: 2,
	})
	m := newMulti(cfg, api)
	ctx := context.Background()

	if err := m.Identify(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Trigger(ctx, &models.Signal{Pair: "USDT_AAA", Action: models.ActionStop}); err != nil {
		t.Fatal(err)
	}

	bot, _ := api.find("3CQSBOT_MULTI_dcabot")
	if containsPair(bot.Pairs, "USDT_AAA") {
		t.Errorf("pairs = %v, USDT_AAA should be removed in auto deal mode", bot.Pairs)
	}
}

func TestMultiDealCeilingRespected(t *testing.T) {
	cfg := multiConfig()
	api := newFakeAPI(threecommas.Bot{
		ID: 7, Name: "3CQSBOT_MULTI_dcabot", IsEnabled: true,
		Pairs: []string{"USDT_AAA", "USDT_BBB"}, MaxActiveDeals: 2,
	})
	api.deals[7] = []threecommas.Deal{{Pair: "USDT_AAA"}, {Pair: "USDT_BBB"}}
	m := newMulti(cfg, api)
	ctx := context.Background()

	if err := m.Identify(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.Trigger(ctx, &models.Signal{Pair: "USDT_BBB", Action: models.ActionStart, Volatility: 1}); err != nil {
		t.Fatal(err)
	}
	if len(api.startedDeals) != 0 {
		t.Errorf("startedDeals = %v, want none at the deal ceiling", api.startedDeals)
	}
}

func TestMultiIdentifyMissingBotID(t *testing.T) {
	cfg := multiConfig()
	cfg.Trading.BotID = 999
	m := newMulti(cfg, newFakeAPI())

	if err := m.Identify(context.Background()); err == nil {
		t.Error("configured but missing botid must be a startup error")
	}
}

func TestMultiIdentifyBadDealMode(t *testing.T) {
	cfg := multiConfig()
	cfg.DCA.Aggressive.DealMode = "{not json"
	m := newMulti(cfg, newFakeAPI())

	if err := m.Identify(context.Background()); err == nil {
		t.Error("malformed deal_mode in any profile must fail startup")
	}
}

func TestMultiRankedLimitedToMad(t *testing.T) {
	cfg := multiConfig()
	cfg.Trading.LimitPairsToMad = true
	cfg.DCA.Default.MaxActiveDeals = 2
	api := newFakeAPI()
	m := newMulti(cfg, api)
	ctx := context.Background()

	if err := m.Identify(ctx); err != nil {
		t.Fatal(err)
	}
	if err := m.ApplyRanked(ctx, models.RankedPairList{"AAA", "BBB", "CCC", "DDD"}); err != nil {
		t.Fatal(err)
	}

	bot, _ := api.find("3CQSBOT_MULTI_dcabot")
	if len(bot.Pairs) != 2 {
		t.Errorf("pairs = %v, want list truncated to mad", bot.Pairs)
	}
}
