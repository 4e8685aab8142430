package signals

import (
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/signals/service"

	"go.uber.org/fx"
)

// канал сырых сообщений фида; пишут telegram/websocket источники,
// читает runner строго по одному
func newRawChan() chan string { return make(chan string, 256) }

func asSendOnlyRaw(ch chan string) chan<- string { return ch }

func asReceiveOnlyRaw(ch chan string) <-chan string { return ch }

func Module() fx.Option {
	return fx.Module("signals",
		fx.Provide(
			newRawChan,
			asSendOnlyRaw,
			asReceiveOnlyRaw,
			func(cfg *config.Config) *service.Parser {
				return service.NewParser(cfg.Trading.Market)
			},
			service.NewPipeline, // *service.Pipeline
		),
	)
}
