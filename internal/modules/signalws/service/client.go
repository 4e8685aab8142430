package service

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// Client — websocket-источник сигналов. Каждое текстовое сообщение
// уходит в тот же сырой канал, что и телеграм-фид: раннеру всё равно,
// откуда пришёл текст.
type Client struct {
	cfg *config.Config
	out chan<- string

	dialer *websocket.Dialer
}

func NewClient(cfg *config.Config, out chan<- string) *Client {
	return &Client{
		cfg:    cfg,
		out:    out,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Run держит соединение живым: читает до ошибки, переподключается
// с экспоненциальной задержкой, сбрасывает её после удачного коннекта.
func (c *Client) Run(ctx context.Context) {
	b := &backoff.Backoff{
		Min:    time.Second,
		Max:    time.Minute,
		Factor: 2,
		Jitter: true,
	}

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := c.dialer.DialContext(ctx, c.cfg.SignalWS.URL, nil)
		if err != nil {
			d := b.Duration()
			logger.Error("websocket dial %s: %s, retrying in %s", c.cfg.SignalWS.URL, err, d)
			select {
			case <-ctx.Done():
				return
			case <-time.After(d):
			}
			continue
		}

		logger.Info("connected to signal feed %s", c.cfg.SignalWS.URL)
		b.Reset()
		c.readLoop(ctx, conn)
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	// закрытие по отмене контекста будит заблокированный ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("websocket read: %s, reconnecting", err)
			}
			return
		}
		if kind != websocket.TextMessage || len(data) == 0 {
			continue
		}
		select {
		case c.out <- string(data):
		default:
			logger.Warn("raw signal channel is full, dropping a message")
		}
	}
}
