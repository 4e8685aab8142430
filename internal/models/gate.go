package models

// GateSnapshot — неизменяемый снимок состояния гейта на момент чтения.
// Писатели (trend/sentiment/selector) публикуют поля по одному,
// читатели всегда получают согласованную копию.
type GateSnapshot struct {
	BenchmarkDowntrend bool
	SentimentValue     int // [0,100], -1 пока не было ни одного опроса
	SentimentDowntrend bool
	SentimentSharpDrop bool
	TradingAllowed     bool
	ActiveProfile      DCAProfile
}

// Candle — OHLC свеча бенчмарк-актива.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}
