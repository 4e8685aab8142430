package models

import "strings"

// DCAProfile — имя набора DCA-параметров, выбранного по индексу настроения.
type DCAProfile string

const (
	ProfileDefault    DCAProfile = "default"
	ProfileDefensive  DCAProfile = "defensive"
	ProfileModerate   DCAProfile = "moderate"
	ProfileAggressive DCAProfile = "aggressive"
)

// DCAParams — параметры DCA-лесенки одного профиля.
type DCAParams struct {
	BaseOrderVolume   float64 `yaml:"bo"`
	TakeProfit        float64 `yaml:"tp"`
	SafetyOrderVolume float64 `yaml:"so"`
	// martingale коэффициенты
	VolumeCoefficient float64 `yaml:"os"`
	StepCoefficient   float64 `yaml:"ss"`
	MaxSafetyOrders   int     `yaml:"mstc"`
	SafetyOrderStep   float64 `yaml:"sos"`
	ActiveSafetyCount int     `yaml:"max"`
	Cooldown          int     `yaml:"cooldown"`
	TrailingEnabled   bool    `yaml:"trailing"`
	TrailingDeviation float64 `yaml:"trailing_deviation"`
	// sdsp: сколько сделок разрешено одновременно на одной паре
	SameDealsPerPair int `yaml:"sdsp"`
	// mad: потолок одновременных сделок бота
	MaxActiveDeals int `yaml:"mad"`
	// "signal" либо JSON-строка со списком стратегий 3commas
	DealMode string `yaml:"deal_mode"`
}

// FundsNeeded считает максимум средств на одну сделку (все SO заполнены)
// и покрываемое отклонение цены в процентах.
func (p DCAParams) FundsNeeded() (funds, priceDeviation float64) {
	funds = p.BaseOrderVolume + p.SafetyOrderVolume
	so := p.SafetyOrderVolume
	priceDeviation = p.SafetyOrderStep
	for i := 0; i < p.MaxSafetyOrders-1; i++ {
		so *= p.VolumeCoefficient
		funds += so
		priceDeviation = priceDeviation*p.StepCoefficient + p.SafetyOrderStep
	}
	return funds, priceDeviation
}

// BotConfig — локальный снимок конфигурации удалённого бота.
type BotConfig struct {
	ID               int64
	Name             string
	Pairs            []string
	MaxActiveDeals   int
	ActiveDealsCount int
	IsEnabled        bool
}

// HasPair — линейный поиск без учёта регистра, списки пар короткие.
func (b *BotConfig) HasPair(pair string) bool {
	for _, p := range b.Pairs {
		if strings.EqualFold(p, pair) {
			return true
		}
	}
	return false
}
