package service

import "signal_bot/internal/models"

type Bot struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Pairs            []string `json:"pairs"`
	MaxActiveDeals   int      `json:"max_active_deals"`
	ActiveDealsCount int      `json:"active_deals_count"`
	IsEnabled        bool     `json:"is_enabled"`
	AccountID        int64    `json:"account_id"`
}

func (b Bot) ToConfig() models.BotConfig {
	return models.BotConfig{
		ID:               b.ID,
		Name:             b.Name,
		Pairs:            b.Pairs,
		MaxActiveDeals:   b.MaxActiveDeals,
		ActiveDealsCount: b.ActiveDealsCount,
		IsEnabled:        b.IsEnabled,
	}
}

type Account struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	MarketCode string `json:"market_code"`
	Exchange   string `json:"exchange_name"`
}

// ExchangeCode — код биржи для запросов пар и проверок торгуемости.
// У бумажного аккаунта собственного рынка нет, он замаплен на binance.
func (a Account) ExchangeCode() string {
	if a.MarketCode == "paper_trading" {
		return "binance"
	}
	return a.MarketCode
}

type Deal struct {
	ID           int64  `json:"id"`
	Pair         string `json:"pair"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	BoughtVolume string `json:"bought_volume"`
}

type StrategyItem struct {
	Strategy string `json:"strategy"`
}

// BotPayload — полный набор параметров create/update. Всегда шлём целиком:
// частичный апдейт оставил бы на той стороне смесь профилей.
type BotPayload struct {
	Name                        string         `json:"name"`
	AccountID                   int64          `json:"account_id"`
	Pairs                       []string       `json:"pairs"`
	MaxActiveDeals              int            `json:"max_active_deals"`
	BaseOrderVolume             float64        `json:"base_order_volume"`
	TakeProfit                  float64        `json:"take_profit"`
	SafetyOrderVolume           float64        `json:"safety_order_volume"`
	MartingaleVolumeCoefficient float64        `json:"martingale_volume_coefficient"`
	MartingaleStepCoefficient   float64        `json:"martingale_step_coefficient"`
	MaxSafetyOrders             int            `json:"max_safety_orders"`
	SafetyOrderStepPercentage   float64        `json:"safety_order_step_percentage"`
	TakeProfitType              string         `json:"take_profit_type"`
	ActiveSafetyOrdersCount     int            `json:"active_safety_orders_count"`
	Cooldown                    int            `json:"cooldown"`
	StrategyList                []StrategyItem `json:"strategy_list"`
	TrailingEnabled             bool           `json:"trailing_enabled"`
	TrailingDeviation           float64        `json:"trailing_deviation"`
	AllowedDealsOnSamePair      int            `json:"allowed_deals_on_same_pair"`
}

type pairsBlacklist struct {
	Pairs []string `json:"pairs"`
}
