package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/gate"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/journal"
	"signal_bot/internal/modules/marketdata"
	"signal_bot/internal/modules/pairs"
	"signal_bot/internal/modules/sentiment"
	"signal_bot/internal/modules/signals"
	"signal_bot/internal/modules/signalws"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/internal/modules/threecommas"
	"signal_bot/internal/modules/trend"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

func main() {
	// секреты удобно держать в .env рядом с бинарём; файла может не быть
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Invoke(setup),
		threecommas.Module(),
		marketdata.Module(),
		pairs.Module(),
		gate.Module(),
		trend.Module(),
		sentiment.Module(),
		signals.Module(),
		journal.Module(),
		telegram.Module(),
		signalws.Module(),
		health.Module(),
		runner.Module(),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}

// setup — логгер и трейсер до запуска остальных модулей.
func setup(lc fx.Lifecycle, cfg *config.Config) error {
	logger.Init(cfg.Debug)

	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}
