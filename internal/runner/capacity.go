package runner

import (
	"fmt"
	"math/rand"
	"strings"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	threecommas "signal_bot/internal/modules/threecommas/service"

	"github.com/bytedance/sonic"
)

// adjustCapacity считает эффективный max_active_deals.
// Инвариант: len(pairs)*sdsp < настроенного mad → mad = len(pairs),
// иначе остаётся настроенный. Капитал не переподписывается.
func adjustCapacity(pairCount, sdsp, configured int) int {
	if sdsp < 1 {
		sdsp = 1
	}
	if pairCount*sdsp < configured {
		return pairCount
	}
	return configured
}

// multiBotName: prefix_subprefix_suffix.
func multiBotName(cfg *config.Config) string {
	return cfg.Trading.Prefix + "_" + cfg.Trading.Subprefix + "_" + cfg.Trading.Suffix
}

// singleBotName: prefix_subprefix_pair_suffix, по одному боту на пару.
func singleBotName(cfg *config.Config, pair string) string {
	return cfg.Trading.Prefix + "_" + cfg.Trading.Subprefix + "_" + pair + "_" + cfg.Trading.Suffix
}

// singleBotPrefix — общий префикс всех single-ботов этой системы.
func singleBotPrefix(cfg *config.Config) string {
	return cfg.Trading.Prefix + "_" + cfg.Trading.Subprefix + "_"
}

// strategyList строит strategy_list под deal_mode профиля.
// "signal" → ручной старт сделок, иначе deal_mode это JSON-массив
// стратегий как его понимает 3commas. Кривой JSON — ошибка конфигурации.
func strategyList(dealMode string) ([]threecommas.StrategyItem, error) {
	if dealMode == "" || dealMode == "signal" {
		return []threecommas.StrategyItem{{Strategy: "manual"}}, nil
	}
	var list []threecommas.StrategyItem
	if err := sonic.Unmarshal([]byte(dealMode), &list); err != nil {
		return nil, fmt.Errorf("strategyList: deal_mode %q is not valid strategy json: %w", dealMode, err)
	}
	return list, nil
}

func dealModeSignal(p models.DCAParams) bool {
	return p.DealMode == "" || p.DealMode == "signal"
}

// buildPayload собирает полный payload создания/обновления бота.
// 3commas перетирает не присланные поля, поэтому шлём всё целиком.
func buildPayload(cfg *config.Config, account int64, name string, pairs []string, mad int, p models.DCAParams) (threecommas.BotPayload, error) {
	strategies, err := strategyList(p.DealMode)
	if err != nil {
		return threecommas.BotPayload{}, err
	}
	return threecommas.BotPayload{
		Name:                        name,
		AccountID:                   account,
		Pairs:                       pairs,
		MaxActiveDeals:              mad,
		BaseOrderVolume:             p.BaseOrderVolume,
		TakeProfit:                  p.TakeProfit,
		SafetyOrderVolume:           p.SafetyOrderVolume,
		MartingaleVolumeCoefficient: p.VolumeCoefficient,
		MartingaleStepCoefficient:   p.StepCoefficient,
		MaxSafetyOrders:             p.MaxSafetyOrders,
		SafetyOrderStepPercentage:   p.SafetyOrderStep,
		TakeProfitType:              "total",
		ActiveSafetyOrdersCount:     p.ActiveSafetyCount,
		Cooldown:                    p.Cooldown,
		StrategyList:                strategies,
		TrailingEnabled:             p.TrailingEnabled,
		TrailingDeviation:           p.TrailingDeviation,
		AllowedDealsOnSamePair:      p.SameDealsPerPair,
	}, nil
}

func containsPair(pairs []string, pair string) bool {
	for _, p := range pairs {
		if strings.EqualFold(p, pair) {
			return true
		}
	}
	return false
}

func removePair(pairs []string, pair string) []string {
	out := pairs[:0]
	for _, p := range pairs {
		if !strings.EqualFold(p, pair) {
			out = append(out, p)
		}
	}
	return out
}

// randomPair — случайная пара из списка бота для random-триггера сделок.
func randomPair(pairs []string) string {
	if len(pairs) == 0 {
		return ""
	}
	return pairs[rand.Intn(len(pairs))]
}
