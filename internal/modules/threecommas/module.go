package threecommas

import (
	"signal_bot/internal/modules/threecommas/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("threecommas",
		fx.Provide(
			service.NewClient, // *service.Client
		),
	)
}
