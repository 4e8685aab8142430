package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/retry"
)

const baseURL = "https://api.3commas.io"

// Client — REST-клиент 3commas. Все подписи HMAC-SHA256 по path+query+body.
type Client struct {
	http      *http.Client
	key       string
	secret    string
	tradeMode string // проставляется в Forced-Mode на каждый запрос

	// транспортные повторы для сетевых ошибок; бизнес-ошибки не повторяются
	policy retry.Policy
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http: &http.Client{
			Timeout: time.Duration(cfg.ThreeCommas.Timeout * float64(time.Second)),
		},
		key:       cfg.ThreeCommas.Key,
		secret:    cfg.ThreeCommas.Secret,
		tradeMode: cfg.ThreeCommas.TradeMode,
		policy: retry.Policy{
			Delay:   time.Duration(cfg.ThreeCommas.RetryDelay * float64(time.Second)),
			MaxWait: time.Duration(cfg.ThreeCommas.Retries) * time.Duration(cfg.ThreeCommas.RetryDelay*float64(time.Second)),
		},
	}
}

// APIError — бизнес-ошибка удалённого API, различается по коду.
type APIError struct {
	Status int
	Code   string `json:"error"`
	Msg    string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("3commas %d: %s (%s)", e.Status, e.Msg, e.Code)
}

// Два фатальных кода: с ними процесс останавливается, см. validate/коды 3commas.
// Ошибки приходят обёрнутыми, поэтому errors.As, а не type assertion.
func IsAccountNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == "record_invalid" && strings.Contains(apiErr.Msg, "Account not found") ||
		apiErr.Code == "not_found"
}

func IsMandatoryMissing(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Msg, "Mandatory attribute")
}

func (c *Client) sign(path string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(path))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// do выполняет подписанный запрос. Сетевые ошибки повторяются только для GET:
// мутации после обрыва могли примениться на той стороне.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, out interface{}) error {
	attempt := func() error {
		var body io.Reader
		if payload != nil {
			body = strings.NewReader(string(payload))
		}

		req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
		if err != nil {
			return fmt.Errorf("new request %s: %w", path, err)
		}

		req.Header.Set("APIKEY", c.key)
		req.Header.Set("Signature", c.sign(path, payload))
		req.Header.Set("Forced-Mode", c.tradeMode)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("do %s: %w", path, err)
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)

		if resp.StatusCode/100 != 2 {
			apiErr := &APIError{Status: resp.StatusCode}
			if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil {
				apiErr.Msg = string(data)
			}
			return apiErr
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("decode %s: %w; body=%s", path, err, string(data))
			}
		}
		return nil
	}

	if method != http.MethodGet {
		return attempt()
	}

	var lastErr error
	retryErr := c.policy.Do(ctx, func() error {
		lastErr = attempt()
		if _, business := lastErr.(*APIError); business {
			// бизнес-ошибку повторять бессмысленно, вернём её вызывающему
			return nil
		}
		return lastErr
	})
	if retryErr != nil {
		return retryErr
	}
	return lastErr
}
