package payment

import (
	"go.uber.org/fx"
)

var Module = fx.Module("payment.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("payment.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
