package enrollment

import (
	"github.com/eduhub/api/internal/enrollment/repository"
	"github.com/eduhub/api/internal/enrollment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enrollment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
