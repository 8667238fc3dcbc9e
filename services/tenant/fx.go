package tenant

import (
	"autocare-controlplane/services/authz"

	"go.uber.org/fx"
)

var Module = fx.Module("tenant.module",
	fx.Provide(
		NewService,
		func(s *Service) authz.TenantStateGuard { return s },
	),
)

var Server = fx.Module("tenant.server",
	Module,
	fx.Invoke(RegisterRoutes),
)
