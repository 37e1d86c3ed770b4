package course

import (
	"github.com/eduhub/api/internal/course/repository"
	"github.com/eduhub/api/internal/course/service"
	"go.uber.org/fx"
)

var Module = fx.Module("course.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
