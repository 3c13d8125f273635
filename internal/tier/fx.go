package tier

import (
	"go.uber.org/fx"

	"github.com/appoetlabs/appoet/internal/tier/repository"
	"github.com/appoetlabs/appoet/internal/tier/service"
)

var Module = fx.Module("tier.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
