package models

import "time"

// Action — что сигнал просит сделать с парой.
type Action string

const (
	ActionNone  Action = ""
	ActionStart Action = "START"
	ActionStop  Action = "STOP"
)

// ScoreNA — провайдер прислал "N/A" вместо числа.
// Значение специально огромное: такой сигнал не проходит ни один верхний лимит.
const ScoreNA = 9999999

// Signal — разобранное сигнальное сообщение (7 строк).
// После парсинга не мутируется.
type Signal struct {
	Kind        string // короткий код трекера: top30, svol, triple100, ...
	Pair        string // с котируемой валютой: USDT_ABC
	Action      Action
	Volatility  float64
	PriceAction float64
	Rank        int

	ReceivedAt time.Time
}

// RankedPairList — список базовых символов из 17-строчного сообщения,
// отсортированный по возрастанию ранга.
type RankedPairList []string

// Event — результат парсинга одного сырого сообщения.
// Ровно одно из полей заполнено; пустой Event — не сигнал (чужой трафик).
type Event struct {
	Signal *Signal
	Ranked RankedPairList
}

func (e Event) IsZero() bool { return e.Signal == nil && len(e.Ranked) == 0 }
