package gate

import (
	"signal_bot/internal/modules/gate/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("gate",
		fx.Provide(
			service.NewState, // *service.State
		),
	)
}
