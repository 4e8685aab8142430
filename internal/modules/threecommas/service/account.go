package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetAccount ищет аккаунт по имени из конфига.
// Отсутствие аккаунта — фатально, вызывающий останавливает процесс.
func (c *Client) GetAccount(ctx context.Context, name string) (Account, error) {
	var accounts []Account
	if err := c.do(ctx, http.MethodGet, "/public/api/ver1/accounts", nil, &accounts); err != nil {
		return Account{}, fmt.Errorf("GetAccount: %w", err)
	}

	for _, a := range accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return Account{}, &APIError{Status: http.StatusNotFound, Code: "not_found", Msg: "Account not found: " + name}
}

// MarketPairs — все пары, торгуемые на бирже аккаунта.
func (c *Client) MarketPairs(ctx context.Context, marketCode string) ([]string, error) {
	var pairs []string
	path := "/public/api/ver1/accounts/market_pairs?market_code=" + url.QueryEscape(marketCode)
	if err := c.do(ctx, http.MethodGet, path, nil, &pairs); err != nil {
		return nil, fmt.Errorf("MarketPairs %s: %w", marketCode, err)
	}
	return pairs, nil
}

// BlacklistedPairs — глобальный чёрный список пар на 3commas.
func (c *Client) BlacklistedPairs(ctx context.Context) ([]string, error) {
	var out pairsBlacklist
	if err := c.do(ctx, http.MethodGet, botsPath+"/pairs_black_list", nil, &out); err != nil {
		return nil, fmt.Errorf("BlacklistedPairs: %w", err)
	}
	return out.Pairs, nil
}
