package auth

import (
	"go.uber.org/fx"
)

var Module = fx.Module("auth.module",
	fx.Provide(
		NewService,
	),
)

var Server = fx.Module("auth.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
