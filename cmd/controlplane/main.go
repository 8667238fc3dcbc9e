package main

import (
	"context"
	"log"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"autocare-controlplane/pkg/config"
	"autocare-controlplane/pkg/db"
	"autocare-controlplane/pkg/hashistack/secretmanager"
	"autocare-controlplane/pkg/httpapi"
	"autocare-controlplane/pkg/logger"
	"autocare-controlplane/pkg/otelcol"
	"autocare-controlplane/pkg/otelcol/exporters"
	"autocare-controlplane/pkg/profiling"
	"autocare-controlplane/pkg/redis"
	"autocare-controlplane/pkg/sequence"
	"autocare-controlplane/pkg/server"
	"autocare-controlplane/pkg/session"
	"autocare-controlplane/pkg/task"
	"autocare-controlplane/services/apikey"
	"autocare-controlplane/services/auth"
	"autocare-controlplane/services/authz"
	"autocare-controlplane/services/bootstrap"
	"autocare-controlplane/services/catalog"
	"autocare-controlplane/services/customer"
	"autocare-controlplane/services/inspection"
	"autocare-controlplane/services/order"
	"autocare-controlplane/services/payment"
	"autocare-controlplane/services/schedule"
	"autocare-controlplane/services/tenant"
	"autocare-controlplane/services/user"
	"autocare-controlplane/services/vehicle"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		sequence.Module,
		session.Module,
		task.Client,
		fx.Provide(
			provideSnowflakeNode,
			provideTracerProvider,
			provideMeterProvider,
		),
		fx.Invoke(registerTelemetry),
		profiling.Module,
		authz.Module,
		bootstrap.Module,
		auth.Server,
		tenant.Server,
		user.Server,
		apikey.Server,
		customer.Server,
		vehicle.Server,
		catalog.Server,
		order.Server,
		inspection.Server,
		payment.Server,
		schedule.Server,
		httpapi.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})

func provideSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func provideTracerProvider() trace.TracerProvider {
	return otel.GetTracerProvider()
}

func provideMeterProvider() metric.MeterProvider {
	return otel.GetMeterProvider()
}

// registerTelemetry installs the OTLP trace pipeline and the gorm telemetry
// plugins. Tracing is skipped when no collector address is configured.
func registerTelemetry(lc fx.Lifecycle, cfg *config.Config, gormDB *gorm.DB) error {
	if err := db.Otel(gormDB); err != nil {
		return err
	}

	if err := db.Metric(cfg, gormDB); err != nil {
		return err
	}

	if cfg.Otel.Addr == "" {
		return nil
	}

	exporter, err := exporters.ProvideGrpc(cfg)
	if err != nil {
		return err
	}

	tp := otelcol.ProvideTrace(exporter)
	otel.SetTracerProvider(tp)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return nil
}
