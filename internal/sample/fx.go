package sample

import (
	"go.uber.org/fx"

	"github.com/appoetlabs/appoet/internal/sample/repository"
	"github.com/appoetlabs/appoet/internal/sample/service"
)

var Module = fx.Module("sample.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
