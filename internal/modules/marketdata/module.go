package marketdata

import (
	"signal_bot/internal/modules/marketdata/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(
			service.NewGecko,   // *service.Gecko
			service.NewTopcoin, // *service.Topcoin
		),
	)
}
