package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

const botsPath = "/public/api/ver1/bots"

// ListBots собирает список ботов постранично, по 100 за запрос.
func (c *Client) ListBots(ctx context.Context, limit int) ([]Bot, error) {
	if limit <= 0 {
		limit = 300
	}

	var bots []Bot
	for offset := 0; offset < limit; offset += 100 {
		var page []Bot
		path := fmt.Sprintf("%s?limit=100&offset=%d", botsPath, offset)
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("ListBots: %w", err)
		}
		if len(page) == 0 {
			break
		}
		bots = append(bots, page...)
	}
	return bots, nil
}

func (c *Client) CreateBot(ctx context.Context, payload BotPayload) (Bot, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return Bot{}, fmt.Errorf("CreateBot marshal: %w", err)
	}

	var bot Bot
	if err := c.do(ctx, http.MethodPost, botsPath+"/create_bot", body, &bot); err != nil {
		return Bot{}, fmt.Errorf("CreateBot: %w", err)
	}
	return bot, nil
}

func (c *Client) UpdateBot(ctx context.Context, id int64, payload BotPayload) (Bot, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return Bot{}, fmt.Errorf("UpdateBot marshal: %w", err)
	}

	var bot Bot
	path := fmt.Sprintf("%s/%d/update", botsPath, id)
	if err := c.do(ctx, http.MethodPatch, path, body, &bot); err != nil {
		return Bot{}, fmt.Errorf("UpdateBot %d: %w", id, err)
	}
	return bot, nil
}

func (c *Client) EnableBot(ctx context.Context, id int64) (Bot, error) {
	var bot Bot
	path := fmt.Sprintf("%s/%d/enable", botsPath, id)
	if err := c.do(ctx, http.MethodPost, path, nil, &bot); err != nil {
		return Bot{}, fmt.Errorf("EnableBot %d: %w", id, err)
	}
	return bot, nil
}

func (c *Client) DisableBot(ctx context.Context, id int64) (Bot, error) {
	var bot Bot
	path := fmt.Sprintf("%s/%d/disable", botsPath, id)
	if err := c.do(ctx, http.MethodPost, path, nil, &bot); err != nil {
		return Bot{}, fmt.Errorf("DisableBot %d: %w", id, err)
	}
	return bot, nil
}

func (c *Client) DeleteBot(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/delete", botsPath, id)
	if err := c.do(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("DeleteBot %d: %w", id, err)
	}
	return nil
}

// StartNewDeal запускает сделку на паре. Типовая бизнес-ошибка
// "deal already open" возвращается как *APIError.
func (c *Client) StartNewDeal(ctx context.Context, id int64, pair string) error {
	body, err := sonic.Marshal(map[string]string{"pair": pair})
	if err != nil {
		return fmt.Errorf("StartNewDeal marshal: %w", err)
	}

	path := fmt.Sprintf("%s/%d/start_new_deal", botsPath, id)
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("StartNewDeal %d %s: %w", id, pair, err)
	}
	return nil
}

func (c *Client) ListActiveDeals(ctx context.Context, botID int64) ([]Deal, error) {
	var deals []Deal
	path := fmt.Sprintf("/public/api/ver1/deals?limit=100&bot_id=%d&scope=active", botID)
	if err := c.do(ctx, http.MethodGet, path, nil, &deals); err != nil {
		return nil, fmt.Errorf("ListActiveDeals %d: %w", botID, err)
	}
	return deals, nil
}
