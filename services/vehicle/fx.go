package vehicle

import (
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("vehicle.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
