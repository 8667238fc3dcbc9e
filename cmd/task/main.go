package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"autocare-controlplane/pkg/config"
	"autocare-controlplane/pkg/db"
	"autocare-controlplane/pkg/hashistack/secretmanager"
	"autocare-controlplane/pkg/logger"
	"autocare-controlplane/pkg/redis"
	"autocare-controlplane/pkg/task"
	"autocare-controlplane/services/provisioning"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		task.Server,
		fx.Provide(
			provideSnowflakeNode,
		),
		provisioning.Worker,
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
