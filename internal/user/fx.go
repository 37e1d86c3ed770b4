package user

import (
	"github.com/eduhub/api/internal/user/repository"
	"github.com/eduhub/api/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
