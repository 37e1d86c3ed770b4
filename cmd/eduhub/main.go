package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/eduhub/api/internal/clock"
	"github.com/eduhub/api/internal/config"
	"github.com/eduhub/api/internal/course"
	"github.com/eduhub/api/internal/enrollment"
	"github.com/eduhub/api/internal/logger"
	"github.com/eduhub/api/internal/migration"
	"github.com/eduhub/api/internal/providers"
	"github.com/eduhub/api/internal/ratelimit"
	"github.com/eduhub/api/internal/server"
	"github.com/eduhub/api/internal/user"
	"github.com/eduhub/api/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		user.Module,
		course.Module,
		enrollment.Module,
		providers.Module,
		ratelimit.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
