package catalog

import (
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("catalog.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
