package httpapi

import (
	"autocare-controlplane/pkg/health"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	health.Module,
	fx.Invoke(registerHealthEndpoints),
)

func registerHealthEndpoints(engine *gin.Engine, h health.HealthService) {
	engine.GET("/healthz", h.Liveness)
	engine.GET("/readyz", h.Readiness)
}
