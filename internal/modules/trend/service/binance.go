package service

import (
	"context"
	"fmt"
	"strconv"

	"signal_bot/internal/models"

	"github.com/adshao/go-binance/v2"
)

// CandleSource — источник свечей бенчмарк-актива.
type CandleSource interface {
	Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource: публичные свечи, ключи не нужны.
func NewBinanceSource() *BinanceSource {
	return &BinanceSource{client: binance.NewClient("", "")}
}

func (b *BinanceSource) Candles(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s %s: %w", symbol, interval, err)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		o, _ := strconv.ParseFloat(k.Open, 64)
		h, _ := strconv.ParseFloat(k.High, 64)
		l, _ := strconv.ParseFloat(k.Low, 64)
		c, _ := strconv.ParseFloat(k.Close, 64)
		candles = append(candles, models.Candle{Open: o, High: h, Low: l, Close: c})
	}
	return candles, nil
}
