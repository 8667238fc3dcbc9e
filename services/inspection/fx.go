package inspection

import (
	"go.uber.org/fx"
)

var Module = fx.Module("inspection.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("inspection.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
