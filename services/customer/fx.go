package customer

import (
	"go.uber.org/fx"
)

var Module = fx.Module("customer.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("customer.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
