package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signal_bot/pkg/cache"

	"golang.org/x/time/rate"
)

const cgBaseURL = "https://api.coingecko.com/api/v3"

// кеш на 3 часа: ранги и объёмы меняются медленно, а лимиты API жёсткие
const cgCacheTTL = 3 * time.Hour

type Market struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

type Ticker struct {
	Base            string `json:"base"`
	Target          string `json:"target"`
	ConvertedVolume struct {
		BTC float64 `json:"btc"`
		USD float64 `json:"usd"`
	} `json:"converted_volume"`
}

type tickersResponse struct {
	Tickers []Ticker `json:"tickers"`
}

// Gecko — клиент CoinGecko с лимитером и TTL-кешами поверх обоих эндпоинтов.
type Gecko struct {
	http    *http.Client
	limiter *rate.Limiter

	markets *cache.Expiring[int, []Market]
	tickers *cache.Expiring[string, []Ticker]
}

func NewGecko() *Gecko {
	return &Gecko{
		http: &http.Client{Timeout: 10 * time.Second},
		// публичный лимит ~10-30 запросов в минуту
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
		markets: cache.NewExpiring[int, []Market](cgCacheTTL),
		tickers: cache.NewExpiring[string, []Ticker](cgCacheTTL),
	}
}

func (g *Gecko) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cgBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("do %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("coingecko %s: http %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// CoinsMarkets возвращает рынки до заданного ранга, страницами по 250.
func (g *Gecko) CoinsMarkets(ctx context.Context, rankLimit int) ([]Market, error) {
	pages := 1
	if rankLimit > 250 {
		pages = (rankLimit + 249) / 250
	}

	return g.markets.GetOrLoad(pages, func() ([]Market, error) {
		var all []Market
		for page := 1; page <= pages; page++ {
			var chunk []Market
			path := fmt.Sprintf("/coins/markets?vs_currency=usd&per_page=250&page=%d", page)
			if err := g.getJSON(ctx, path, &chunk); err != nil {
				return nil, err
			}
			all = append(all, chunk...)
		}
		return all, nil
	})
}

// ExchangeTickers — тикеры монеты на конкретной бирже.
func (g *Gecko) ExchangeTickers(ctx context.Context, exchange, coinID string) ([]Ticker, error) {
	key := exchange + "/" + coinID
	return g.tickers.GetOrLoad(key, func() ([]Ticker, error) {
		var out tickersResponse
		path := fmt.Sprintf("/exchanges/%s/tickers?coin_ids=%s",
			url.PathEscape(exchange), url.QueryEscape(coinID))
		if err := g.getJSON(ctx, path, &out); err != nil {
			return nil, err
		}
		return out.Tickers, nil
	})
}

// ConvertVolume переводит строку объёма с суффиксом в число: "12k" -> 12000.
// Строка без известного суффикса трактуется как готовое число.
func ConvertVolume(volume string) float64 {
	if volume == "" {
		return 0
	}

	mult := 1.0
	switch volume[len(volume)-1] {
	case 'k':
		mult = 1e3
		volume = volume[:len(volume)-1]
	case 'M':
		mult = 1e6
		volume = volume[:len(volume)-1]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(volume), 64)
	if err != nil {
		return 0
	}
	return v * mult
}
