package order

import (
	"go.uber.org/fx"
)

var Module = fx.Module("order.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("order.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
