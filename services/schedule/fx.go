package schedule

import (
	"go.uber.org/fx"
)

var Module = fx.Module("schedule.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("schedule.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
