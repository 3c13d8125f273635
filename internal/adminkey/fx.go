package adminkey

import (
	"go.uber.org/fx"

	"github.com/appoetlabs/appoet/internal/adminkey/repository"
	"github.com/appoetlabs/appoet/internal/adminkey/service"
)

var Module = fx.Module("adminkey.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
