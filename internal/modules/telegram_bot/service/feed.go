package service

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// Feed читает сырые сообщения сигнального чата и отдаёт их в канал.
// Он же шлёт уведомления и запросы ранкед-листа. Без токена работает
// вхолостую: уведомления уходят в лог.
type Feed struct {
	bot *tgbot.BotAPI // nil когда telegram не сконфигурирован
	cfg *config.Config
	out chan<- string
}

func NewFeed(cfg *config.Config, out chan<- string) (*Feed, error) {
	f := &Feed{cfg: cfg, out: out}
	if cfg.Telegram.Token == "" {
		if cfg.SignalSource == "telegram" {
			return nil, fmt.Errorf("NewFeed: telegram signal source requires telegram.token")
		}
		return f, nil
	}

	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("NewFeed: %w", err)
	}
	b.Debug = cfg.Debug
	f.bot = b
	logger.Info("telegram authorized as @%s", b.Self.UserName)
	return f, nil
}

// Start запускает long-poll цикл. Сообщения не из сигнального чата
// отбрасываются: фид слушает ровно один источник. Цикл живёт до Stop:
// StopReceivingUpdates закрывает канал апдейтов.
func (f *Feed) Start() {
	u := tgbot.NewUpdate(0)
	u.Timeout = 60
	updates := f.bot.GetUpdatesChan(u)

	go func() {
		for update := range updates {
			if update.Message == nil || update.Message.Chat == nil {
				continue
			}
			if update.Message.Chat.ID != f.cfg.Telegram.SignalChat {
				continue
			}
			if update.Message.Text == "" {
				continue
			}
			select {
			case f.out <- update.Message.Text:
			default:
				// переполнение буфера: раннер отстал, сообщение теряем
				logger.Warn("raw signal channel is full, dropping a message")
			}
		}
	}()
}

func (f *Feed) Stop() {
	if f.bot != nil {
		f.bot.StopReceivingUpdates()
	}
}

// Sendf — уведомление в notify-чат, либо в лог когда чат не задан.
func (f *Feed) Sendf(ctx context.Context, format string, args ...any) {
	if f.bot == nil || f.cfg.Telegram.NotifyChat == 0 {
		logger.Info("notify: "+format, args...)
		return
	}
	msg := tgbot.NewMessage(f.cfg.Telegram.NotifyChat, fmt.Sprintf(format, args...))
	if _, err := f.bot.Send(msg); err != nil {
		logger.Error("sending telegram notification: %s", err)
	}
}

// RequestRanked отправляет команду запроса ранкед-листа в сигнальный чат.
func (f *Feed) RequestRanked(ctx context.Context) error {
	if f.bot == nil || f.cfg.Telegram.SignalChat == 0 {
		logger.Debug("telegram is not configured, ranked list request skipped")
		return nil
	}
	msg := tgbot.NewMessage(f.cfg.Telegram.SignalChat, f.cfg.Telegram.RankedCmd)
	if _, err := f.bot.Send(msg); err != nil {
		return fmt.Errorf("RequestRanked: %w", err)
	}
	logger.Info("requested ranked list with %s", f.cfg.Telegram.RankedCmd)
	return nil
}
