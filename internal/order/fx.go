package order

import (
	"go.uber.org/fx"

	"github.com/appoetlabs/appoet/internal/order/repository"
	"github.com/appoetlabs/appoet/internal/order/service"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
